package mode

import (
	"context"

	"github.com/fatih/color"

	"github.com/baseera/fw-go/pipeline"
)

// Clear empties the analysis history. Stored images stay on disk.
func Clear(_ context.Context, _ []string, svcs pipeline.ServicesFactory, _ pipeline.Classifier, _ pipeline.Reporter) error {
	if err := svcs.DataSvc.ClearRecords(); err != nil {
		return err
	}

	color.Green("cleared dataset %s", svcs.CfgSvc.GetDatasetFile())
	return nil
}
