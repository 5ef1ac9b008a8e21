package mode

import (
	"context"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"golang.org/x/xerrors"

	"github.com/baseera/fw-go/pipeline"
	"github.com/baseera/fw-go/service/lgr"
)

// Batch classifies an explicit list of image files and directories once and
// exits. Per-image failures are reported and skipped; only startup failures
// abort the run.
func Batch(canxCtx context.Context, args []string, svcs pipeline.ServicesFactory, classifier pipeline.Classifier, reporter pipeline.Reporter) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return xerrors.New("no image files to classify")
	}

	errorStream := make(chan interface{})
	statsStream := make(chan interface{})

	startTime := time.Now()
	dish := svcs.CfgSvc.GetDefaultDish()

	resultStream, done := reporter(canxCtx, svcs, errorStream, statsStream)
	jobs := classifier(canxCtx, svcs, errorStream, statsStream, resultStream)

	// Feed the pipeline and signal end of input by closing the jobs channel
	go func() {
		defer close(jobs)

		for _, input := range inputs {
			select {
			case <-canxCtx.Done():
				return
			case jobs <- pipeline.ImageJob{
				Input:     input,
				Dish:      dish,
				Timestamp: time.Now(),
			}:
			}
		}
	}()

	skipped := 0
	failed := 0

	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"batch mode context cancelled",
			)
			goto resume

		case <-done:
			goto finished

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

finished:
	{
		records := len(inputs) - skipped - failed

		procStats(svcs.DataSvc, runStats("batch", len(inputs), records, skipped, failed, startTime))

		color.Green("classified %d of %d images", records, len(inputs))
		if skipped > 0 {
			color.Yellow("skipped %d images (see %s/errors.json)", skipped, svcs.CfgSvc.GetDataFolder())
		}
		if failed > 0 {
			color.Yellow("failed to record %d classified images", failed)
		}
		if dishRecords, err := svcs.DataSvc.RetrieveRecordsByDish(dish); err == nil {
			color.Cyan("total %s analyses: %d", dish, len(dishRecords))
		}
		color.Cyan("dataset: %s", svcs.CfgSvc.GetDatasetFile())

		return nil
	}

	// Wait in a non-blocking way for the shutdown grace period so that
	// pipeline go routines can still report errors and stats as they exit
resume:
	timer := time.NewTimer(time.Duration(svcs.CfgSvc.GetModeMaxShutdownTime()) * time.Second)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			lgr.Logger.Info(
				"batch mode shutdown waiting period expired. Exiting now",
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
