package classifier

import (
	"context"
	"errors"
	"image"
	"time"
)

const (
	ProviderCLIP   = "clip"
	ProviderOpenAI = "openai"

	DeviceCPU = "cpu"
	DeviceGPU = "gpu"

	DefaultTimeout = 60 * time.Second
)

var ErrBackendCall = errors.New("classifier backend call failed")

// Client scores media against a list of text labels. The returned slice is
// aligned with labels.
//
//go:generate mockery --name=Client --dir=. --output=./mocks --filename=classifier_client_mock.go --case=underscore
type Client interface {
	ClassifyImage(ctx context.Context, labels []string, img image.Image) ([]float64, error)
	ClassifyVideo(ctx context.Context, labels []string, frames []image.Image) ([]float64, error)
	Name() string
	Device() string
}

type Config struct {
	Provider string
	BaseURL  string
	Device   string
	Timeout  time.Duration
	Options  map[string]interface{}
}

func normalizeDevice(device string) string {
	switch device {
	case "cuda", "gpu", "mps":
		return DeviceGPU
	default:
		return DeviceCPU
	}
}
