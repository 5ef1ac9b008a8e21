package data

import "github.com/baseera/fw-go/model"

type IService interface {
	RetrieveRecords() ([]model.Record, error)
	RetrieveRecordsByDish(dish string) ([]model.Record, error)
	NewRecord(record model.Record) error
	ClearRecords() error
	ExportRecordsCSV(path string) error

	NewError(err interface{}) error
	NewClassifierStats(stats model.ClassifierStats) error
	NewRunStats(stats model.RunStats) error
}
