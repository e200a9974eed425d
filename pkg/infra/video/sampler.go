package video

import (
	"context"
	"fmt"
	"image"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
)

// DefaultFrames is used when a caller asks for zero frames.
const DefaultFrames = 8

//go:generate mockery --name=Decoder --dir=. --output=./mocks --filename=decoder_mock.go --case=underscore
type Decoder interface {
	FrameCount(ctx context.Context, path string) (int, error)
	Frames(ctx context.Context, path string, indices []int) ([]image.Image, error)
}

// SampleIndices spreads n indices evenly over [0, total-1], both ends
// included. Short videos yield every frame.
func SampleIndices(total, n int) []int {
	if total <= 0 || n <= 0 {
		return nil
	}
	if total < n {
		n = total
	}
	indices := make([]int, n)
	if n == 1 {
		return indices
	}
	for i := range indices {
		indices[i] = i * (total - 1) / (n - 1)
	}
	return indices
}

type Sampler struct {
	decoder Decoder
	logger  *logrus.Logger
}

func NewSampler(decoder Decoder, logger *logrus.Logger) *Sampler {
	return &Sampler{decoder: decoder, logger: logger}
}

// Sample returns min(n, frame count) frames of the video at path, in
// index order. When the decoder stops short of the counted frames, the
// indices are respread over the frames it did reach so the last sampled
// frame is still the last decodable one.
func (s *Sampler) Sample(ctx context.Context, path string, n int) ([]image.Image, error) {
	if n <= 0 {
		n = DefaultFrames
	}
	total, err := s.decoder.FrameCount(ctx, path)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: video has no frames", moderation.ErrDecode)
	}

	indices := SampleIndices(total, n)
	frames, err := s.decoder.Frames(ctx, path, indices)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames decoded", moderation.ErrDecode)
	}
	if len(frames) >= len(indices) {
		return frames, nil
	}

	// Select emits frames in index order, so the frames that came back are
	// indices[:len(frames)] and the stream ends before indices[len(frames)].
	reached := indices[len(frames)-1] + 1
	s.logger.WithFields(logrus.Fields{
		"requested": len(indices),
		"decoded":   len(frames),
		"total":     total,
		"reached":   reached,
	}).Warn("frame count overshoots the stream, resampling")

	indices = SampleIndices(reached, n)
	retry, err := s.decoder.Frames(ctx, path, indices)
	if err != nil {
		return nil, err
	}
	if len(retry) < len(frames) {
		return frames, nil
	}
	return retry, nil
}
