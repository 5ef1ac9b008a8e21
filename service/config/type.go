package config

type IService interface {
	GetModeMaxShutdownTime() int
	GetModelPath() string
	GetLabelsPath() string
	GetModelInputSize() int
	GetConfidenceThreshold() float32
	GetClassifierMaxWorkers() int
	GetClassifyTimeout() int
	GetDataFolder() string
	GetDatasetFile() string
	GetImagesFolder() string
	GetExportFile() string
	GetWatchFolder() string
	GetWatchPeriodicTimeout() int
	GetDefaultDish() string
	GetWasteWebhookURL() string
}
