package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		label    string
		expected Category
	}{
		{"clean", CategoryClean},
		{"Clean", CategoryClean},
		{"  PARTIAL ", CategoryPartial},
		{"uneaten", CategoryUneaten},
	}

	for _, test := range tests {
		category, err := ParseCategory(test.label)
		require.NoError(t, err, test.label)
		assert.Equal(t, test.expected, category)
	}
}

func TestParseCategoryRejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "half", "dirty", "clean plate"} {
		_, err := ParseCategory(label)
		assert.Error(t, err, label)
	}
}

func TestCategoriesAreClosed(t *testing.T) {
	categories := Categories()
	require.Len(t, categories, 3)

	for _, c := range categories {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestGenError(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := GenError("classifier_yolo8", DecodeError, inner, map[string]interface{}{"source": "a.jpg"}, "error decoding %s", "a.jpg")

	assert.Equal(t, "classifier_yolo8", err.Processor)
	assert.Equal(t, DecodeError, err.Kind)
	assert.Equal(t, "error decoding a.jpg", err.Message)
	assert.NotEmpty(t, err.StackTrace)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "boom")
}

func TestKindOf(t *testing.T) {
	err := GenError("p", LoadError, fmt.Errorf("missing"), nil, "no model")
	assert.Equal(t, LoadError, KindOf(err))

	wrapped := fmt.Errorf("wrapped: %w", err)
	assert.Equal(t, LoadError, KindOf(wrapped))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestImageInputSource(t *testing.T) {
	assert.Equal(t, "plate.jpg", ImageInput{Path: "/tmp/photos/plate.jpg"}.Source())
	assert.Equal(t, "buffer(3 bytes)", ImageInput{Bytes: []byte{1, 2, 3}}.Source())

	assert.True(t, ImageInput{Bytes: []byte{1}}.InMemory())
	assert.False(t, ImageInput{Path: "a.jpg"}.InMemory())
}
