package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/NeuralTrust/MediaGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/media"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	zeroShotImagePath = "/v1/zero-shot/image"
	zeroShotVideoPath = "/v1/zero-shot/video"

	defaultImageModel = "openai/clip-vit-base-patch32"
	defaultVideoModel = "microsoft/xclip-base-patch32"
)

type clipOptions struct {
	ImageModel string `mapstructure:"image_model"`
	VideoModel string `mapstructure:"video_model"`
	Token      string `mapstructure:"token"`
}

type zeroShotRequest struct {
	Model  string   `json:"model"`
	Labels []string `json:"labels"`
	Image  string   `json:"image,omitempty"`
	Frames []string `json:"frames,omitempty"`
}

// CLIPClient talks to a zero-shot inference server hosting CLIP for
// images and X-CLIP for videos.
type CLIPClient struct {
	client         httpx.Client
	baseURL        string
	options        clipOptions
	circuitBreaker httpx.CircuitBreaker
	logger         *logrus.Logger
	parsers        fastjson.ParserPool
	device         atomic.Value
}

func NewCLIPClient(
	client httpx.Client,
	cfg Config,
	circuitBreaker httpx.CircuitBreaker,
	logger *logrus.Logger,
) (*CLIPClient, error) {
	var opts clipOptions
	if len(cfg.Options) > 0 {
		if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
			return nil, fmt.Errorf("invalid clip options: %w", err)
		}
	}
	if opts.ImageModel == "" {
		opts.ImageModel = defaultImageModel
	}
	if opts.VideoModel == "" {
		opts.VideoModel = defaultVideoModel
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("clip base url is required")
	}

	c := &CLIPClient{
		client:         client,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		options:        opts,
		circuitBreaker: circuitBreaker,
		logger:         logger,
	}
	c.device.Store(normalizeDevice(cfg.Device))
	return c, nil
}

func (c *CLIPClient) Name() string {
	return ProviderCLIP
}

// Device reports the device last announced by the inference server.
func (c *CLIPClient) Device() string {
	device, _ := c.device.Load().(string) //nolint:errcheck
	return device
}

func (c *CLIPClient) ClassifyImage(ctx context.Context, labels []string, img image.Image) ([]float64, error) {
	encoded, err := encodeBase64PNG(img)
	if err != nil {
		return nil, err
	}
	return c.classify(ctx, zeroShotImagePath, zeroShotRequest{
		Model:  c.options.ImageModel,
		Labels: labels,
		Image:  encoded,
	})
}

func (c *CLIPClient) ClassifyVideo(ctx context.Context, labels []string, frames []image.Image) ([]float64, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to classify", ErrBackendCall)
	}
	encoded := make([]string, 0, len(frames))
	for _, frame := range frames {
		f, err := encodeBase64PNG(frame)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, f)
	}
	return c.classify(ctx, zeroShotVideoPath, zeroShotRequest{
		Model:  c.options.VideoModel,
		Labels: labels,
		Frames: encoded,
	})
}

func (c *CLIPClient) classify(ctx context.Context, path string, payload zeroShotRequest) ([]float64, error) {
	var probs []float64
	err := c.circuitBreaker.Execute(func() error {
		var err error
		probs, err = c.execute(ctx, path, payload)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).WithField("path", path).Error("zero-shot classification failed")
		}
		return nil, err
	}
	if len(probs) != len(payload.Labels) {
		return nil, fmt.Errorf("%w: got %d probabilities for %d labels", ErrBackendCall, len(probs), len(payload.Labels))
	}
	return probs, nil
}

func (c *CLIPClient) execute(ctx context.Context, path string, payload zeroShotRequest) ([]float64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal zero-shot request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create zero-shot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
	if c.options.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.options.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, cause
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendCall, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrBackendCall, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        truncate(string(raw), 256),
		}).Error("zero-shot server returned non-200 status")
		return nil, fmt.Errorf("%w: status %d", ErrBackendCall, resp.StatusCode)
	}
	return c.parseResponse(raw)
}

func (c *CLIPClient) parseResponse(raw []byte) ([]float64, error) {
	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrBackendCall, err)
	}
	if device := v.GetStringBytes("device"); len(device) > 0 {
		c.device.Store(normalizeDevice(string(device)))
	}

	values := v.GetArray("probabilities")
	if values == nil {
		return nil, fmt.Errorf("%w: response has no probabilities", ErrBackendCall)
	}
	probs := make([]float64, len(values))
	for i, item := range values {
		f, err := item.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: probability %d: %v", ErrBackendCall, i, err)
		}
		probs[i] = f
	}
	return probs, nil
}

func encodeBase64PNG(img image.Image) (string, error) {
	data, err := media.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
