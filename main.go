package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/baseera/fw-go/mode"
	"github.com/baseera/fw-go/pipeline"
	"github.com/baseera/fw-go/service/classifier"
	"github.com/baseera/fw-go/service/config"
	"github.com/baseera/fw-go/service/data"
	"github.com/baseera/fw-go/service/lgr"
	"github.com/baseera/fw-go/service/storage"
	"github.com/baseera/fw-go/service/watcher"
	"github.com/baseera/fw-go/service/webhook"
)

const (
	// WARNING: this has to be bigger than the mode processor shutdown time
	waitOnShutdown = 8 * time.Second
)

var modeProcessors = map[string]mode.Processor{
	"batch":  mode.Batch,
	"watch":  mode.Watch,
	"export": mode.Export,
	"clear":  mode.Clear,
}

func main() {
	rootCtx := context.Background()
	canxCtx, canxFn := context.WithCancel(rootCtx)

	// Hook up a signal handler to cancel the context
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		lgr.Logger.Info(
			"received kill signal",
			slog.Any("signal", sig),
		)
		canxFn()
	}()

	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		lgr.Logger.Info("loading env vars from .env file")
		err := godotenv.Load()
		if err != nil {
			lgr.Logger.Warn("no .env file loaded", slog.Any("error", xerrors.New(err.Error())))
		}
	}

	modeType := "batch"
	args := os.Args[1:]
	if len(args) > 0 {
		modeType = args[0]
		args = args[1:]
	}

	modeProc, ok := modeProcessors[modeType]
	if !ok {
		lgr.Logger.Error("invalid mode", slog.String("mode", modeType))
		panic("invalid mode")
	}

	// Create the services needed for the mode processor
	// Config service
	cfgSvc := config.NewEnvVars()
	// Data service
	dataSvc := data.NewFilesDB(cfgSvc)
	// Classifier service. This is the one-time model load: a failure here
	// is fatal since there is no fallback model.
	classifierSvc, err := classifier.NewYolo8(cfgSvc)
	if err != nil {
		lgr.Logger.Error("failed to load classification model", slog.Any("error", err))
		panic("failed to load classification model")
	}
	defer classifierSvc.Close()
	lgr.Logger.Info("classification model loaded", slog.Any("labels", classifierSvc.Labels()))
	// Storage service
	storageSvc := storage.NewFiles(cfgSvc)
	// Watcher service
	watcherSvc := watcher.NewTimed(canxCtx, cfgSvc)
	// Webhook service
	webhookSvc := webhook.NewHTTP(cfgSvc)

	svcs := pipeline.ServicesFactory{
		CfgSvc:        cfgSvc,
		DataSvc:       dataSvc,
		ClassifierSvc: classifierSvc,
		StorageSvc:    storageSvc,
		WatcherSvc:    watcherSvc,
		WebhookSvc:    webhookSvc,
	}

	// Create mode processor result. Never closed: a mode processor that
	// outlives the shutdown wait must still be able to send its result.
	modeProcResult := make(chan error, 1)

	// Start the mode processor
	go func() {
		modeProcResult <- modeProc(canxCtx, args, svcs, pipeline.PlateClassifier, pipeline.RecordingReporter)
	}()

	// Wait for cancellation or the mode processor
	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"main context cancelled",
			)
			goto resume

		case err := <-modeProcResult:
			if err != nil {
				lgr.Logger.Error(
					"mode processor exited",
					slog.Any("error", xerrors.New(err.Error())),
				)
				goto resume
			}
			// Clean exit, nothing to drain
			return
		}
	}

	// Wait in a non-blocking way for `waitOnShutdown` for all the go routines to exit
	// This is needed because the go routines may need to report errors as they are exiting
resume:
	// Cancel the context if not already cancelled
	if canxCtx.Err() == nil {
		canxFn()
	}

	lgr.Logger.Info(
		"waiting for all go routines to exit",
	)

	timer := time.NewTimer(waitOnShutdown)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			lgr.Logger.Info(
				"shutdown waiting period expired. Exiting now",
				slog.Duration("period", waitOnShutdown),
			)

			return

		case err := <-modeProcResult:
			if err != nil {
				lgr.Logger.Error(
					"mode processor exited",
					slog.Any("error", xerrors.New(err.Error())),
				)
			}
		}
	}
}
