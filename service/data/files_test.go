package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/config"
)

func newTestService(t *testing.T) IService {
	t.Helper()
	t.Setenv("FWGO_DATA_FOLDER", t.TempDir())
	return NewFilesDB(config.NewEnvVars())
}

func testRecord(id string) model.Record {
	return model.Record{
		ID:         id,
		Date:       "2026-08-23",
		Time:       "12:30:00",
		Dish:       "pizza",
		Image:      fmt.Sprintf("images/%s.jpg", id),
		Result:     "uneaten",
		Confidence: 0.87,
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	svc := newTestService(t)

	records, err := svc.RetrieveRecords()
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, svc.NewRecord(testRecord("a")))
	require.NoError(t, svc.NewRecord(testRecord("b")))

	records, err = svc.RetrieveRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.Equal(t, "pizza", records[0].Dish)
	assert.InDelta(t, 0.87, records[0].Confidence, 0.0001)
}

func TestRetrieveRecordsByDish(t *testing.T) {
	svc := newTestService(t)

	pizza := testRecord("a")
	salad := testRecord("b")
	salad.Dish = "salad"

	require.NoError(t, svc.NewRecord(pizza))
	require.NoError(t, svc.NewRecord(salad))

	records, err := svc.RetrieveRecordsByDish("Pizza")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
}

func TestClearRecords(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.NewRecord(testRecord("a")))
	require.NoError(t, svc.ClearRecords())

	records, err := svc.RetrieveRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportRecordsCSV(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FWGO_DATA_FOLDER", dir)
	svc := NewFilesDB(config.NewEnvVars())

	require.NoError(t, svc.NewRecord(testRecord("a")))

	path := filepath.Join(dir, "export", "dataset.csv")
	require.NoError(t, svc.ExportRecordsCSV(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"id", "date", "time", "dish", "image", "result", "confidence"}, rows[0])
	assert.Equal(t, "a", rows[1][0])
	assert.Equal(t, "uneaten", rows[1][5])
	assert.Equal(t, "0.87", rows[1][6])
}

func TestNewErrorPersistsCustomAndPlainErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FWGO_DATA_FOLDER", dir)
	svc := NewFilesDB(config.NewEnvVars())

	custom := model.GenError("classifier_yolo8", model.DecodeError,
		fmt.Errorf("bad bytes"), map[string]interface{}{"source": "x.jpg"}, "error decoding image buffer")
	require.NoError(t, svc.NewError(custom))
	require.NoError(t, svc.NewError(fmt.Errorf("plain failure")))

	data, err := os.ReadFile(filepath.Join(dir, "errors.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "error decoding image buffer")
	assert.Contains(t, string(data), "decode")
	assert.Contains(t, string(data), "plain failure")
}

func TestStatsPersistence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FWGO_DATA_FOLDER", dir)
	svc := NewFilesDB(config.NewEnvVars())

	require.NoError(t, svc.NewClassifierStats(model.ClassifierStats{Name: "plateClassifier", Worker: 0, Images: 4}))
	require.NoError(t, svc.NewClassifierStats(model.ClassifierStats{Name: "plateClassifier", Worker: 1, Images: 2}))
	require.NoError(t, svc.NewRunStats(model.RunStats{Mode: "batch", TotalImages: 6}))

	stats, err := os.ReadFile(filepath.Join(dir, "classifier-stats.json"))
	require.NoError(t, err)
	assert.Contains(t, string(stats), "plateClassifier")

	run, err := os.ReadFile(filepath.Join(dir, "run-stats.json"))
	require.NoError(t, err)
	assert.Contains(t, string(run), "batch")
}
