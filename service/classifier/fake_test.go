package classifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseera/fw-go/model"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0}

func writeImage(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestFakeCategoryFromSource(t *testing.T) {
	svc := NewFake()
	defer svc.Close()
	dir := t.TempDir()

	tests := []struct {
		name     string
		expected model.Category
	}{
		{"uneaten_plate.jpg", model.CategoryUneaten},
		{"partial_3.png", model.CategoryPartial},
		{"clean.jpg", model.CategoryClean},
		{"lunch.jpg", model.CategoryClean},
	}

	for _, test := range tests {
		path := writeImage(t, dir, test.name, jpegMagic)
		result, err := svc.Classify(context.Background(), model.ImageInput{Path: path})
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expected, result.Category)
		assert.GreaterOrEqual(t, result.Confidence, float32(0))
		assert.LessOrEqual(t, result.Confidence, float32(1))
	}
}

func TestFakeIsDeterministic(t *testing.T) {
	svc := NewFake()
	defer svc.Close()

	path := writeImage(t, t.TempDir(), "partial_plate.jpg", jpegMagic)
	input := model.ImageInput{Path: path}

	first, err := svc.Classify(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.Classify(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestFakeDecodeErrorOnCorruptBuffer(t *testing.T) {
	svc := NewFake()
	defer svc.Close()

	_, err := svc.Classify(context.Background(), model.ImageInput{Bytes: []byte("not an image")})
	require.Error(t, err)
	assert.Equal(t, model.DecodeError, model.KindOf(err))
}

func TestFakeDecodeErrorOnCorruptFile(t *testing.T) {
	svc := NewFake()
	defer svc.Close()

	path := writeImage(t, t.TempDir(), "clean_garbage.jpg", []byte("not an image"))

	_, err := svc.Classify(context.Background(), model.ImageInput{Path: path})
	require.Error(t, err)
	assert.Equal(t, model.DecodeError, model.KindOf(err))
}

func TestFakeDecodeErrorOnMissingFile(t *testing.T) {
	svc := NewFake()
	defer svc.Close()

	_, err := svc.Classify(context.Background(), model.ImageInput{Path: filepath.Join(t.TempDir(), "nope.jpg")})
	require.Error(t, err)
	assert.Equal(t, model.DecodeError, model.KindOf(err))
}

func TestFakeHonorsCancelledContext(t *testing.T) {
	svc := NewFake()
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Classify(ctx, model.ImageInput{Path: "clean.jpg"})
	assert.Error(t, err)
}

func TestFakeLabelsAreClosedSet(t *testing.T) {
	svc := NewFake()
	defer svc.Close()

	assert.Equal(t, model.Categories(), svc.Labels())
}
