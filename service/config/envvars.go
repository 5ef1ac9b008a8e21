package config

import (
	"fmt"
	"os"
	"strconv"
)

type envVarsService struct {
}

// NewEnvVars returns a config service backed by environment variables with
// hardcoded fallbacks. In dev mode main loads the .env file before any of
// these are read.
func NewEnvVars() IService {
	return &envVarsService{}
}

func (svc *envVarsService) GetModeMaxShutdownTime() int {
	return getInt("FWGO_MODE_MAX_SHUTDOWN_TIME", 5)
}

func (svc *envVarsService) GetModelPath() string {
	return getString("FWGO_MODEL_PATH", "./models/plate_cls.onnx")
}

func (svc *envVarsService) GetLabelsPath() string {
	return getString("FWGO_LABELS_PATH", "./models/plate.names")
}

func (svc *envVarsService) GetModelInputSize() int {
	// YOLOv8 classification export default
	return getInt("FWGO_MODEL_INPUT_SIZE", 224)
}

func (svc *envVarsService) GetConfidenceThreshold() float32 {
	return getFloat("FWGO_CONFIDENCE_THRESHOLD", 0.5)
}

func (svc *envVarsService) GetClassifierMaxWorkers() int {
	return getInt("FWGO_CLASSIFIER_MAX_WORKERS", 3)
}

func (svc *envVarsService) GetClassifyTimeout() int {
	return getInt("FWGO_CLASSIFY_TIMEOUT", 30)
}

func (svc *envVarsService) GetDataFolder() string {
	return getString("FWGO_DATA_FOLDER", "./food_data")
}

func (svc *envVarsService) GetDatasetFile() string {
	return getString("FWGO_DATASET_FILE", fmt.Sprintf("%s/dataset.json", svc.GetDataFolder()))
}

func (svc *envVarsService) GetImagesFolder() string {
	return getString("FWGO_IMAGES_FOLDER", fmt.Sprintf("%s/images", svc.GetDataFolder()))
}

func (svc *envVarsService) GetExportFile() string {
	return getString("FWGO_EXPORT_FILE", fmt.Sprintf("%s/dataset.csv", svc.GetDataFolder()))
}

func (svc *envVarsService) GetWatchFolder() string {
	return getString("FWGO_WATCH_FOLDER", "./incoming")
}

func (svc *envVarsService) GetWatchPeriodicTimeout() int {
	return getInt("FWGO_WATCH_PERIODIC_TIMEOUT", 30)
}

func (svc *envVarsService) GetDefaultDish() string {
	return getString("FWGO_DEFAULT_DISH", "unknown")
}

func (svc *envVarsService) GetWasteWebhookURL() string {
	return getString("FWGO_WASTE_WEBHOOK_URL", "")
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
