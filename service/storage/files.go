package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/config"
)

type filesService struct {
	CfgSvc config.IService
}

// NewFiles stores a copy of every analyzed image under the images folder,
// keyed by record ID, so the dataset records always point at a path this
// process owns.
func NewFiles(cfgsvc config.IService) IService {
	return &filesService{
		CfgSvc: cfgsvc,
	}
}

func (svc *filesService) StoreImage(recordID string, input model.ImageInput) (string, error) {
	folder := svc.CfgSvc.GetImagesFolder()
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}

	target := filepath.Join(folder, fmt.Sprintf("%s.jpg", recordID))

	if input.InMemory() {
		if err := os.WriteFile(target, input.Bytes, 0644); err != nil {
			return "", err
		}
		return target, nil
	}

	source, err := os.Open(input.Path)
	if err != nil {
		return "", err
	}
	defer source.Close()

	file, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, source); err != nil {
		return "", err
	}

	return target, nil
}
