package mode

import (
	"context"
	"log/slog"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/pipeline"
	"github.com/baseera/fw-go/service/data"
	"github.com/baseera/fw-go/service/lgr"
)

type Processor func(canxCtx context.Context,
	args []string,
	svcs pipeline.ServicesFactory,
	classifier pipeline.Classifier,
	reporter pipeline.Reporter) error

func procStats(datasvc data.IService, stats interface{}) {
	switch stats := stats.(type) {
	case model.ClassifierStats:
		procClassifierStats(datasvc, stats)
	case model.RunStats:
		procRunStats(datasvc, stats)
	default:
		lgr.Logger.Error(
			"unknown stats type",
			slog.Any("stats", stats),
		)
	}
}

func procClassifierStats(datasvc data.IService, stats model.ClassifierStats) {
	err := datasvc.NewClassifierStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store classifier stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procRunStats(datasvc data.IService, stats model.RunStats) {
	err := datasvc.NewRunStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store run stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

// isReporterError distinguishes images that failed after classification
// (store/record) from images the classifier skipped.
func isReporterError(e interface{}) bool {
	custom, ok := e.(model.CustomError)
	return ok && custom.Processor == pipeline.ReporterProcessor
}

func procError(datasvc data.IService, err interface{}) {
	errTemp := datasvc.NewError(err)
	if errTemp != nil {
		lgr.Logger.Error(
			"failed to store error",
			slog.Any("error", errTemp),
		)
	}
}
