package storage

import "github.com/baseera/fw-go/model"

type IService interface {
	StoreImage(recordID string, input model.ImageInput) (string, error)
}
