package pipeline

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/lgr"
)

// ReporterProcessor tags errors raised past classification, where the
// image was classified but could not be stored or recorded.
const ReporterProcessor = "reporter"

// RecordingReporter consumes classification results, stores a copy of each
// image, appends a record to the dataset and fires the waste webhook for
// uneaten plates.
func RecordingReporter(canx context.Context, svcs ServicesFactory, errorStream chan interface{}, statsStream chan interface{}) (chan ResultData, <-chan struct{}) {
	in := make(chan ResultData, 100)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			select {
			case <-canx.Done():
				lgr.Logger.Info(
					"reporter context cancelled",
				)
				return

			case result, ok := <-in:
				if !ok {
					lgr.Logger.Info(
						"reporter input stream closed",
					)
					return
				}

				report(svcs, errorStream, result)
			}
		}
	}()

	return in, done
}

func report(svcs ServicesFactory, errorStream chan interface{}, result ResultData) {
	recordID := uuid.NewString()

	imagePath, err := svcs.StorageSvc.StoreImage(recordID, result.Input)
	if err != nil {
		errorStream <- model.GenError(ReporterProcessor,
			model.InferenceError,
			err,
			map[string]interface{}{"source": result.Input.Source()},
			"error storing analyzed image")
		return
	}

	record := model.Record{
		ID:         recordID,
		Date:       result.Timestamp.Format("2006-01-02"),
		Time:       result.Timestamp.Format("15:04:05"),
		Dish:       result.Dish,
		Image:      imagePath,
		Result:     string(result.Classification.Category),
		Confidence: round2(result.Classification.Confidence),
	}

	if err := svcs.DataSvc.NewRecord(record); err != nil {
		errorStream <- model.GenError(ReporterProcessor,
			model.InferenceError,
			err,
			map[string]interface{}{"record": record.ID},
			"error persisting record")
		return
	}

	lgr.Logger.Info(
		"plate classified",
		slog.String("source", result.Input.Source()),
		slog.String("dish", result.Dish),
		slog.String("category", string(result.Classification.Category)),
		slog.Float64("confidence", float64(result.Classification.Confidence)),
		slog.String("record", record.ID),
	)

	if result.Classification.Category != model.CategoryUneaten {
		return
	}

	payload := map[string]interface{}{
		"record":     record.ID,
		"dish":       result.Dish,
		"source":     result.Input.Source(),
		"category":   string(result.Classification.Category),
		"confidence": result.Classification.Confidence,
		"image":      imagePath,
		"timestamp":  time.Now().Format(time.RFC3339),
	}

	if err := svcs.WebhookSvc.Post(payload); err != nil {
		lgr.Logger.Error(
			"error posting waste webhook",
			slog.String("record", record.ID),
			slog.Any("error", err),
		)
	}
}

func round2(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}
