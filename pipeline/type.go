package pipeline

import (
	"context"
	"time"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/classifier"
	"github.com/baseera/fw-go/service/config"
	"github.com/baseera/fw-go/service/data"
	"github.com/baseera/fw-go/service/storage"
	"github.com/baseera/fw-go/service/watcher"
	"github.com/baseera/fw-go/service/webhook"
)

type ServicesFactory struct {
	CfgSvc        config.IService
	DataSvc       data.IService
	ClassifierSvc classifier.IService
	StorageSvc    storage.IService
	WatcherSvc    watcher.IService
	WebhookSvc    webhook.IService
}

type ImageJob struct {
	Input     model.ImageInput
	Dish      string
	Timestamp time.Time
}

type ResultData struct {
	Input          model.ImageInput
	Dish           string
	Classification model.Classification
	Timestamp      time.Time
}

// Signature of classifier stage function. The caller owns the returned jobs
// channel and closes it when there is nothing left to feed; the stage
// closes resultStream once all workers have drained.
type Classifier func(canx context.Context, svcs ServicesFactory, errorStream chan interface{}, statsStream chan interface{}, resultStream chan ResultData) chan ImageJob

// Signature of reporter stage function. Returns its input channel and a
// done channel that is closed after the stage has flushed.
type Reporter func(canx context.Context, svcs ServicesFactory, errorStream chan interface{}, statsStream chan interface{}) (chan ResultData, <-chan struct{})
