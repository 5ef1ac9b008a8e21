package mode

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/baseera/fw-go/pipeline"
	"github.com/baseera/fw-go/service/lgr"
)

// Watch polls the configured drop folder through the watcher service and
// feeds newly arrived images into the same pipeline batch mode uses. Runs
// until cancelled.
func Watch(canxCtx context.Context, _ []string, svcs pipeline.ServicesFactory, classifier pipeline.Classifier, reporter pipeline.Reporter) error {
	errorStream := make(chan interface{})
	statsStream := make(chan interface{})

	startTime := time.Now()
	dish := svcs.CfgSvc.GetDefaultDish()

	resultStream, done := reporter(canxCtx, svcs, errorStream, statsStream)
	jobs := classifier(canxCtx, svcs, errorStream, statsStream, resultStream)

	imageStream, err := svcs.WatcherSvc.Subscribe()
	if err != nil {
		close(jobs)
		return err
	}

	lgr.Logger.Info(
		"watch mode started",
		slog.String("folder", svcs.CfgSvc.GetWatchFolder()),
		slog.Int("periodSecs", svcs.CfgSvc.GetWatchPeriodicTimeout()),
	)

	// Feed the pipeline from its own goroutine so the select below stays
	// free to drain errors and stats while a scan batch is being queued
	var images atomic.Int64
	go func() {
		defer close(jobs)

		for {
			select {
			case <-canxCtx.Done():
				return

			case fresh := <-imageStream:
				for _, input := range fresh {
					select {
					case <-canxCtx.Done():
						return
					case jobs <- pipeline.ImageJob{
						Input:     input,
						Dish:      dish,
						Timestamp: time.Now(),
					}:
						images.Add(1)
					}
				}
			}
		}
	}()

	skipped := 0
	failed := 0

	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"watch mode context cancelled",
			)
			goto resume

		case e := <-errorStream:
			if isReporterError(e) {
				failed++
			} else {
				skipped++
			}
			procError(svcs.DataSvc, e)

		case s := <-statsStream:
			procStats(svcs.DataSvc, s)
		}
	}

	// Wait in a non-blocking way for the shutdown grace period so that
	// pipeline go routines can still report errors and stats as they exit
resume:
	// The watcher may have already cleaned up on cancellation
	if err := svcs.WatcherSvc.Unsubscribe(); err != nil {
		lgr.Logger.Debug("watcher already unsubscribed", slog.Any("error", err))
	}

	total := int(images.Load())
	procStats(svcs.DataSvc, runStats("watch", total, total-skipped-failed, skipped, failed, startTime))

	timer := time.NewTimer(time.Duration(svcs.CfgSvc.GetModeMaxShutdownTime()) * time.Second)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			lgr.Logger.Info(
				"watch mode shutdown waiting period expired. Exiting now",
				slog.Duration("period", time.Duration(svcs.CfgSvc.GetModeMaxShutdownTime())*time.Second),
			)
			return nil

		case <-done:
			return nil

		case e := <-errorStream:
			procError(svcs.DataSvc, e)

		case s := <-statsStream:
			procStats(svcs.DataSvc, s)
		}
	}
}
