package classifier

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/baseera/fw-go/model"
)

const fakeProcessor = "classifier_fake"

// jpeg/png magic numbers; anything else in a buffer is treated as corrupt.
var fakeMagics = [][]byte{
	{0xFF, 0xD8, 0xFF},
	{0x89, 0x50, 0x4E, 0x47},
}

type fakeService struct {
}

// NewFake returns a deterministic classifier for wiring and tests: the
// category is inferred from the input source name (falling back to clean),
// and inputs that do not start with a known image magic fail with a
// decode error.
func NewFake() IService {
	return &fakeService{}
}

func (svc *fakeService) Classify(ctx context.Context, input model.ImageInput) (model.Classification, error) {
	if err := ctx.Err(); err != nil {
		return model.Classification{}, err
	}

	buf := input.Bytes
	if !input.InMemory() {
		var err error
		buf, err = os.ReadFile(input.Path)
		if err != nil {
			return model.Classification{}, model.GenError(fakeProcessor, model.DecodeError,
				err,
				map[string]interface{}{"source": input.Source()},
				"error reading image file %s", input.Path)
		}
	}

	if !decodable(buf) {
		return model.Classification{}, model.GenError(fakeProcessor, model.DecodeError,
			fmt.Errorf("input is not a decodable image"),
			map[string]interface{}{"source": input.Source()},
			"error decoding image %s", input.Source())
	}

	category := model.CategoryClean
	source := strings.ToLower(input.Source())
	for _, c := range model.Categories() {
		if strings.Contains(source, string(c)) {
			category = c
			break
		}
	}

	return model.Classification{
		Category:   category,
		RawLabel:   string(category),
		Confidence: 0.9,
		Source:     input.Source(),
		Timestamp:  time.Now().Unix(),
	}, nil
}

func (svc *fakeService) Labels() []model.Category {
	return model.Categories()
}

func (svc *fakeService) Close() {
}

func decodable(buf []byte) bool {
	for _, magic := range fakeMagics {
		if bytes.HasPrefix(buf, magic) {
			return true
		}
	}
	return false
}
