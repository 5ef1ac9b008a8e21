package classifier

import (
	"context"

	"github.com/baseera/fw-go/model"
)

type IService interface {
	Classify(ctx context.Context, input model.ImageInput) (model.Classification, error)
	Labels() []model.Category
	Close()
}
