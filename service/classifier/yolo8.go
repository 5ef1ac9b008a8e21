package classifier

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/baseera/fw-go/model"
	"github.com/baseera/fw-go/service/config"
	"github.com/baseera/fw-go/service/lgr"
)

const yolo8Processor = "classifier_yolo8"

// yolo8Service wraps a YOLOv8 classification model exported to ONNX. The
// net is loaded once at construction and never mutated afterwards.
// WARNING: gocv nets are not thread-safe, so forward passes are serialized
// behind a mutex and the service stays safe to share across workers.
type yolo8Service struct {
	cfgSvc config.IService
	labels []model.Category
	size   int

	mu  sync.Mutex
	net gocv.Net
}

// NewYolo8 is the model loader. It returns only after the artifact and its
// label set are fully loaded and validated, so callers may treat it as the
// initialization barrier before any inference. A failure here carries
// model.LoadError and is fatal to the process.
func NewYolo8(cfgsvc config.IService) (IService, error) {
	modelPath := cfgsvc.GetModelPath()
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, model.GenError(yolo8Processor, model.LoadError,
			err,
			map[string]interface{}{"modelPath": modelPath},
			"model artifact does not exist")
	}

	labels, err := loadLabels(cfgsvc.GetLabelsPath())
	if err != nil {
		return nil, model.GenError(yolo8Processor, model.LoadError,
			err,
			map[string]interface{}{"labelsPath": cfgsvc.GetLabelsPath()},
			"error loading labels")
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, model.GenError(yolo8Processor, model.LoadError,
			fmt.Errorf("error reading model from %s", modelPath),
			map[string]interface{}{"modelPath": modelPath},
			"error reading model")
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, model.GenError(yolo8Processor, model.LoadError, err, nil, "error setting backend")
	}

	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, model.GenError(yolo8Processor, model.LoadError, err, nil, "error setting target")
	}

	lgr.Logger.Info("yolo8 classifier loaded",
		slog.String("model", modelPath),
		slog.Int("labels", len(labels)),
		slog.String("openCV", gocv.Version()),
	)

	return &yolo8Service{
		cfgSvc: cfgsvc,
		labels: labels,
		size:   cfgsvc.GetModelInputSize(),
		net:    net,
	}, nil
}

func (svc *yolo8Service) Classify(ctx context.Context, input model.ImageInput) (model.Classification, error) {
	if err := ctx.Err(); err != nil {
		return model.Classification{}, err
	}

	mat, err := decode(input)
	if err != nil {
		return model.Classification{}, err
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(svc.size, svc.size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	probs, err := svc.forward(blob)
	if err != nil {
		return model.Classification{}, err
	}

	if len(probs) != len(svc.labels) {
		return model.Classification{}, model.GenError(yolo8Processor, model.InferenceError,
			fmt.Errorf("output size %d does not match %d labels", len(probs), len(svc.labels)),
			map[string]interface{}{"source": input.Source()},
			"unexpected model output shape")
	}

	idx, conf := bestScore(probs)

	return model.Classification{
		Category:   svc.labels[idx],
		RawLabel:   string(svc.labels[idx]),
		Confidence: conf,
		Source:     input.Source(),
		Timestamp:  time.Now().Unix(),
	}, nil
}

func (svc *yolo8Service) Labels() []model.Category {
	return svc.labels
}

func (svc *yolo8Service) Close() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.net.Close()
}

func (svc *yolo8Service) forward(blob gocv.Mat) ([]float32, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.net.SetInput(blob, "")
	output := svc.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, model.GenError(yolo8Processor, model.InferenceError,
			fmt.Errorf("empty forward pass output"),
			map[string]interface{}{},
			"forward pass produced no output")
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, model.GenError(yolo8Processor, model.InferenceError, err, nil, "error reading forward pass output")
	}

	// Copy out before releasing the lock; data aliases the output mat.
	probs := make([]float32, len(data))
	copy(probs, data)

	return probs, nil
}

func decode(input model.ImageInput) (gocv.Mat, error) {
	if input.InMemory() {
		mat, err := gocv.IMDecode(input.Bytes, gocv.IMReadColor)
		if err != nil || mat.Empty() {
			return gocv.Mat{}, model.GenError(yolo8Processor, model.DecodeError,
				fmt.Errorf("buffer is not a decodable image"),
				map[string]interface{}{"source": input.Source()},
				"error decoding image buffer")
		}
		return mat, nil
	}

	mat := gocv.IMRead(input.Path, gocv.IMReadColor)
	if mat.Empty() {
		return gocv.Mat{}, model.GenError(yolo8Processor, model.DecodeError,
			fmt.Errorf("%s is not a decodable image", input.Path),
			map[string]interface{}{"source": input.Source()},
			"error decoding image file")
	}

	return mat, nil
}

// bestScore returns the index and value of the highest class probability,
// clamped into [0,1]. Exported YOLOv8 classification heads emit softmax
// probabilities already; the clamp guards against numeric drift.
func bestScore(probs []float32) (int, float32) {
	maxIdx := 0
	maxVal := probs[0]
	for i, v := range probs {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}

	if maxVal < 0 {
		maxVal = 0
	}
	if maxVal > 1 {
		maxVal = 1
	}

	return maxIdx, maxVal
}

// loadLabels reads the newline-delimited class names shipped next to the
// artifact and maps each into the closed category set. An unknown label is
// a load failure, not something to discover at inference time.
func loadLabels(path string) ([]model.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var labels []model.Category
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		category, err := model.ParseCategory(line)
		if err != nil {
			return nil, err
		}
		labels = append(labels, category)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels in %s", path)
	}

	return labels, nil
}
