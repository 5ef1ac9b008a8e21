package mode

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baseera/fw-go/model"
)

var batchImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// expandInputs turns the argument list into one ImageInput per image file,
// walking directories one level deep the way a drop folder is laid out.
func expandInputs(args []string) ([]model.ImageInput, error) {
	var inputs []model.ImageInput

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			inputs = append(inputs, model.ImageInput{Path: arg})
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if !batchImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			inputs = append(inputs, model.ImageInput{Path: filepath.Join(arg, entry.Name())})
		}
	}

	return inputs, nil
}

func runStats(mode string, images, records, skipped, failed int, startTime time.Time) model.RunStats {
	return model.RunStats{
		Mode:         mode,
		TotalImages:  images,
		TotalRecords: records,
		TotalSkipped: skipped,
		TotalFailed:  failed,
		Uptime:       int64(time.Since(startTime).Seconds()),
	}
}
