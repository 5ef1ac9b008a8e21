package mode

import (
	"context"

	"github.com/fatih/color"

	"github.com/baseera/fw-go/pipeline"
)

// Export dumps the dataset to CSV. The optional first argument overrides
// the configured export path.
func Export(_ context.Context, args []string, svcs pipeline.ServicesFactory, _ pipeline.Classifier, _ pipeline.Reporter) error {
	path := svcs.CfgSvc.GetExportFile()
	if len(args) > 0 {
		path = args[0]
	}

	if err := svcs.DataSvc.ExportRecordsCSV(path); err != nil {
		return err
	}

	records, err := svcs.DataSvc.RetrieveRecords()
	if err != nil {
		return err
	}

	color.Green("exported %d records to %s", len(records), path)
	return nil
}
