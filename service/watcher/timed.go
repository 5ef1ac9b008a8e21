package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/config"
	"github.com/baseera/fw-go/service/lgr"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type timedService struct {
	CanxCtx      context.Context
	SubsCtx      context.Context
	SubsCancel   context.CancelFunc
	ImageChannel chan []model.ImageInput
	CfgSvc       config.IService
	Seen         map[string]bool
}

// This implementation provides a timed watcher service where the service
// delivers on its subscribed channel the images that arrived in the watch
// folder since the previous scan.
func NewTimed(canxCtx context.Context, cfgSvc config.IService) IService {
	return &timedService{
		CfgSvc:  cfgSvc,
		CanxCtx: canxCtx,
		Seen:    map[string]bool{},
	}
}

func (svc *timedService) Subscribe() (<-chan []model.ImageInput, error) {
	if svc.SubsCtx != nil {
		lgr.Logger.Error(
			"watcher timed service. Already subscribed to images. Unsubscribe first",
		)
		return nil, xerrors.New("watcher timed service. child context is not nil. Unsubscribe first")
	}

	// Created the first time we subscribe. Regardless of how many times we
	// subscribe/unsubscribe, there is only one channel delivering images.
	if svc.ImageChannel == nil {
		svc.ImageChannel = make(chan []model.ImageInput)
	}

	subsContext, subsCancel := context.WithCancel(svc.CanxCtx)
	svc.SubsCtx = subsContext
	svc.SubsCancel = subsCancel

	go func() {
		defer svc.cleanup()

		period := time.Duration(svc.CfgSvc.GetWatchPeriodicTimeout()) * time.Second

		for {
			select {
			case <-svc.CanxCtx.Done():
				lgr.Logger.Info(
					"watcher timed service context cancelled",
				)
				return
			case <-svc.SubsCtx.Done():
				lgr.Logger.Info(
					"watcher timed service subscription cancelled",
				)
				return
			case <-time.After(period):
				fresh := svc.scan()
				if len(fresh) == 0 {
					continue
				}

				select {
				case svc.ImageChannel <- fresh:
				case <-svc.SubsCtx.Done():
					return
				}
			}
		}
	}()

	return svc.ImageChannel, nil
}

func (svc *timedService) Unsubscribe() error {
	if svc.SubsCtx == nil {
		return xerrors.New("not subscribed yet. Subscribe first")
	}

	svc.cleanup()
	return nil
}

func (svc *timedService) scan() []model.ImageInput {
	folder := svc.CfgSvc.GetWatchFolder()
	entries, err := os.ReadDir(folder)
	if err != nil {
		lgr.Logger.Warn(
			"watcher timed service cannot read watch folder",
			slog.String("folder", folder),
			slog.Any("error", err),
		)
		return nil
	}

	var fresh []model.ImageInput
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		if svc.Seen[path] {
			continue
		}

		svc.Seen[path] = true
		fresh = append(fresh, model.ImageInput{Path: path})
	}

	return fresh
}

func (svc *timedService) cleanup() {
	if svc.SubsCancel != nil {
		svc.SubsCancel()
		svc.SubsCtx = nil
		svc.SubsCancel = nil
	}
}
