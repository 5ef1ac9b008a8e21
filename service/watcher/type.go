package watcher

import "github.com/baseera/fw-go/model"

type IService interface {
	Subscribe() (<-chan []model.ImageInput, error)
	Unsubscribe() error
}
