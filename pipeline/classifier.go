package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/lgr"
)

// PlateClassifier fans image jobs across a bounded worker pool. All workers
// share the one classifier handle loaded at startup; the handle serializes
// its own forward passes, so no locking happens here.
func PlateClassifier(canx context.Context, svcs ServicesFactory, errorStream chan interface{}, statsStream chan interface{}, resultStream chan ResultData) chan ImageJob {
	in := make(chan ImageJob, 100)

	go func() {
		defer close(resultStream)

		lgr.Logger.Info("plate classifier starting...",
			slog.String("model", svcs.CfgSvc.GetModelPath()),
			slog.Int("workers", svcs.CfgSvc.GetClassifierMaxWorkers()),
		)

		timeout := time.Duration(svcs.CfgSvc.GetClassifyTimeout()) * time.Second
		threshold := svcs.CfgSvc.GetConfidenceThreshold()

		var wg sync.WaitGroup
		for i := 0; i < svcs.CfgSvc.GetClassifierMaxWorkers(); i++ {
			worker := i
			wg.Add(1)

			go func(worker int, in chan ImageJob) {
				defer wg.Done()

				images := 0
				errors := 0
				beginTime := time.Now().Unix()
				var totalInferenceTime time.Duration

				defer func() {
					uptime := time.Now().Unix() - beginTime
					var avgProcTime float64
					if images > 0 {
						avgProcTime = totalInferenceTime.Seconds() / float64(images)
					}
					statsStream <- model.ClassifierStats{
						Name:        "plateClassifier",
						Worker:      worker,
						Images:      images,
						Errors:      errors,
						Uptime:      uptime,
						AvgProcTime: avgProcTime,
					}
				}()

				for job := range in {
					select {
					case <-canx.Done():
						lgr.Logger.Info(
							"plate classifier worker context cancelled",
							slog.Int("worker", worker),
						)
						return
					default:
						startInference := time.Now()
						classification, err := classify(canx, svcs, timeout, job)
						totalInferenceTime += time.Since(startInference)
						images++

						if err != nil {
							errors++
							errorStream <- asCustomError(err, job)
							continue
						}

						if classification.Confidence < threshold {
							lgr.Logger.Warn("low confidence classification",
								slog.String("source", classification.Source),
								slog.String("category", string(classification.Category)),
								slog.Float64("confidence", float64(classification.Confidence)),
							)
						}

						select {
						case resultStream <- ResultData{
							Input:          job.Input,
							Dish:           job.Dish,
							Classification: classification,
							Timestamp:      time.Now(),
						}:
						case <-canx.Done():
							return
						}
					}
				}
			}(worker, in)
		}

		wg.Wait()
		lgr.Logger.Info("plate classifier workers drained")
	}()

	return in
}

func classify(canx context.Context, svcs ServicesFactory, timeout time.Duration, job ImageJob) (model.Classification, error) {
	// Bounded per-call timeout as an operational safeguard
	callCtx, cancel := context.WithTimeout(canx, timeout)
	defer cancel()

	return svcs.ClassifierSvc.Classify(callCtx, job.Input)
}

func asCustomError(err error, job ImageJob) model.CustomError {
	if custom, ok := err.(model.CustomError); ok {
		return custom
	}
	return model.GenError("plate_classifier", model.InferenceError,
		err,
		map[string]interface{}{"source": job.Input.Source()},
		"classification failed")
}
