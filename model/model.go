package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// ErrorKind partitions failures the way the serving shell reacts to them:
// load errors are fatal at startup, decode and inference errors skip the
// offending image and processing continues.
type ErrorKind string

const (
	LoadError      ErrorKind = "load"
	DecodeError    ErrorKind = "decode"
	InferenceError ErrorKind = "inference"
)

type CustomError struct {
	Processor  string                 `json:"processor"`
	Kind       ErrorKind              `json:"kind"`
	Inner      error                  `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func (e CustomError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s: %v", e.Processor, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Processor, e.Message)
}

func (e CustomError) Unwrap() error {
	return e.Inner
}

func GenError(proc string, kind ErrorKind, err error, misc map[string]interface{}, messagef string, args ...interface{}) CustomError {
	return CustomError{
		Processor:  proc,
		Kind:       kind,
		Inner:      err,
		Message:    fmt.Sprintf(messagef, args...),
		StackTrace: string(debug.Stack()),
		Misc:       misc,
	}
}

// KindOf reports the ErrorKind carried by err, or "" when err was not
// produced by GenError.
func KindOf(err error) ErrorKind {
	var custom CustomError
	if errors.As(err, &custom) {
		return custom.Kind
	}
	return ""
}

// Category is the closed set of plate conditions the model was trained on.
// Anything else the framework emits is rejected at the boundary.
type Category string

const (
	CategoryClean   Category = "clean"
	CategoryPartial Category = "partial"
	CategoryUneaten Category = "uneaten"
)

func Categories() []Category {
	return []Category{CategoryClean, CategoryPartial, CategoryUneaten}
}

func ParseCategory(label string) (Category, error) {
	normalized := Category(strings.ToLower(strings.TrimSpace(label)))
	for _, c := range Categories() {
		if normalized == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category label %q", label)
}

// ImageInput is one food photo, either a path on disk or an in-memory
// buffer. Owned by the caller for the duration of a single classify call.
type ImageInput struct {
	Path  string `json:"path"`
	Bytes []byte `json:"-"`
}

func (i ImageInput) InMemory() bool {
	return len(i.Bytes) > 0
}

// Source identifies the input in logs and records.
func (i ImageInput) Source() string {
	if i.Path != "" {
		return filepath.Base(i.Path)
	}
	return fmt.Sprintf("buffer(%d bytes)", len(i.Bytes))
}

type Classification struct {
	Category   Category `json:"category"`
	RawLabel   string   `json:"rawLabel"`
	Confidence float32  `json:"confidence"` // [0,1]
	Source     string   `json:"source"`
	Timestamp  int64    `json:"timestamp"`
}

// Record is one persisted analysis, mirroring what the dashboard consumes.
type Record struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Dish       string  `json:"dish"`
	Image      string  `json:"image"`
	Result     string  `json:"result"`
	Confidence float32 `json:"confidence"`
}

type ClassifierStats struct {
	Name        string  `json:"name"`
	Worker      int     `json:"worker"`
	Images      int     `json:"images"`
	Errors      int     `json:"errors"`
	Uptime      int64   `json:"uptime"`
	AvgProcTime float64 `json:"avgProcTime"`
	Timestamp   int64   `json:"timestamp"`
}

type RunStats struct {
	Mode         string `json:"mode"`
	TotalImages  int    `json:"totalImages"`
	TotalRecords int    `json:"totalRecords"`
	TotalSkipped int    `json:"totalSkipped"`
	TotalFailed  int    `json:"totalFailed"`
	Uptime       int64  `json:"uptime"`
	Timestamp    int64  `json:"timestamp"`
}
