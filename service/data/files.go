package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/config"
)

type filesDBService struct {
	CfgSvc config.IService
}

func NewFilesDB(cfgsvc config.IService) IService {
	return &filesDBService{
		CfgSvc: cfgsvc,
	}
}

func (svc *filesDBService) RetrieveRecords() ([]model.Record, error) {
	records := []model.Record{}

	data, err := os.ReadFile(svc.CfgSvc.GetDatasetFile())
	if err != nil {
		if os.IsNotExist(err) {
			// No dataset yet
			return records, nil
		}
		return records, err
	}

	err = json.Unmarshal(data, &records)
	if err != nil {
		return records, err
	}

	return records, nil
}

func (svc *filesDBService) RetrieveRecordsByDish(dish string) ([]model.Record, error) {
	records, err := svc.RetrieveRecords()
	if err != nil {
		return nil, err
	}

	var result []model.Record
	for _, record := range records {
		if strings.EqualFold(record.Dish, dish) {
			result = append(result, record)
		}
	}

	return result, nil
}

func (svc *filesDBService) NewRecord(record model.Record) error {
	records, err := svc.RetrieveRecords()
	if err != nil {
		return err
	}

	// Newest first, matching how the dashboard consumes the dataset
	records = append([]model.Record{record}, records...)

	return svc.writeRecords(records)
}

func (svc *filesDBService) ClearRecords() error {
	return svc.writeRecords([]model.Record{})
}

func (svc *filesDBService) ExportRecordsCSV(path string) error {
	records, err := svc.RetrieveRecords()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "date", "time", "dish", "image", "result", "confidence"}); err != nil {
		return err
	}

	for _, record := range records {
		row := []string{
			record.ID,
			record.Date,
			record.Time,
			record.Dish,
			record.Image,
			record.Result,
			fmt.Sprintf("%.2f", record.Confidence),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func (svc *filesDBService) NewError(err interface{}) error {
	// Determine if the error is custom
	var customErr model.CustomError
	if custom, ok := err.(model.CustomError); ok {
		customErr = custom
	} else {
		customErr.Processor = "N/A"
		customErr.Inner = err.(error)
		customErr.Message = err.(error).Error()
		customErr.StackTrace = "N/A"
		customErr.Misc = nil
	}

	// Create an error object to persist
	errorData := struct {
		Timestamp  int64                  `json:"timestamp"`
		Processor  string                 `json:"processor"`
		Kind       string                 `json:"kind"`
		Inner      string                 `json:"innerError"`
		Message    string                 `json:"message"`
		StackTrace string                 `json:"stackTrace"`
		Misc       map[string]interface{} `json:"misc"`
	}{
		Timestamp:  time.Now().Unix(),
		Processor:  customErr.Processor,
		Kind:       string(customErr.Kind),
		Inner:      customErr.Inner.Error(),
		Message:    customErr.Message,
		StackTrace: customErr.StackTrace,
		Misc:       customErr.Misc,
	}
	return newEntity(errorData, "errors", svc.CfgSvc)
}

func (svc *filesDBService) NewClassifierStats(stats model.ClassifierStats) error {
	stats.Timestamp = time.Now().Unix()
	return newEntity(stats, "classifier-stats", svc.CfgSvc)
}

func (svc *filesDBService) NewRunStats(stats model.RunStats) error {
	stats.Timestamp = time.Now().Unix()
	return newEntity(stats, "run-stats", svc.CfgSvc)
}

func (svc *filesDBService) writeRecords(records []model.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	output := svc.CfgSvc.GetDatasetFile()
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}

	// Write the JSON data to the file (with truncation)
	return os.WriteFile(output, data, 0644)
}

func newEntity[T any](entity T, filename string, cfgsvc config.IService) error {
	entities, err := retrieveEntities[T](filename, cfgsvc)
	if err != nil {
		return err
	}

	entities = append(entities, entity)

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgsvc.GetDataFolder(), 0755); err != nil {
		return err
	}

	// Write the JSON data to the file (with truncation)
	output := fmt.Sprintf("%s/%s.json", cfgsvc.GetDataFolder(), filename)
	return os.WriteFile(output, data, 0644)
}

func retrieveEntities[T any](filename string, cfgsvc config.IService) ([]T, error) {
	entities := []T{}

	data, err := os.ReadFile(fmt.Sprintf("%s/%s.json", cfgsvc.GetDataFolder(), filename))
	if err != nil {
		// WARNING: file not found, return empty slice
		return entities, nil
	}

	err = json.Unmarshal(data, &entities)
	if err != nil {
		return nil, err
	}

	return entities, nil
}
