package moderation_test

import (
	"context"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	appmoderation "github.com/NeuralTrust/MediaGuard/pkg/app/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/app/moderation/mocks"
	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/cache"
	classifiermocks "github.com/NeuralTrust/MediaGuard/pkg/infra/classifier/mocks"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/media"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	raw, err := media.EncodePNG(img)
	require.NoError(t, err)
	return raw
}

func tempVideo(t *testing.T) *media.TempFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o600))
	return &media.TempFile{Path: path, Size: 18, Digest: "deadbeef"}
}

// probs builds a vector of len(unsafe)+len(DefaultSafeLabels) entries with the
// given unsafe values and the rest spread evenly over the safe labels.
func probs(safeSum float64, unsafe ...float64) []float64 {
	safe := len(domain.DefaultSafeLabels)
	out := append([]float64{}, unsafe...)
	for i := 0; i < safe; i++ {
		out = append(out, safeSum/float64(safe))
	}
	return out
}

type fixture struct {
	classifier *classifiermocks.Client
	fetcher    *mocks.MediaFetcher
	sampler    *mocks.FrameSampler
}

func newFixture(t *testing.T) fixture {
	return fixture{
		classifier: classifiermocks.NewClient(t),
		fetcher:    mocks.NewMediaFetcher(t),
		sampler:    mocks.NewFrameSampler(t),
	}
}

func (f fixture) service(decisionCache *cache.DecisionCache) appmoderation.Filter {
	return appmoderation.NewService(testLogger(), f.classifier, f.fetcher, f.sampler, decisionCache, appmoderation.Config{})
}

func TestFilterImage_BlocksOnThreshold(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, "https://cdn.example.com/a.png").Return(pngBytes(t), nil)
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyImage", mock.Anything, mock.MatchedBy(func(labels []string) bool {
		return len(labels) == 7 && labels[0] == "violence" && labels[1] == domain.DefaultSafeLabels[0]
	}), mock.Anything).Return(probs(0.12, 0.8), nil)

	decision, err := f.service(nil).FilterImage(context.Background(), appmoderation.ImageRequest{
		RequestID: "req-1",
		ImageURL:  "https://cdn.example.com/a.png",
		Labels:    []string{"violence"},
	})
	require.NoError(t, err)
	assert.True(t, decision.ShouldBlock)
	assert.Equal(t, "Contains violence", decision.Reason)
	require.NotNil(t, decision.Confidence)
	assert.InDelta(t, 0.8, *decision.Confidence, 1e-9)
	assert.Empty(t, decision.MediaType)
}

func TestFilterImage_SafeDominant(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, mock.Anything).Return(pngBytes(t), nil)
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyImage", mock.Anything, mock.Anything, mock.Anything).Return(probs(0.7, 0.3), nil)

	decision, err := f.service(nil).FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/a.png",
		Labels:   []string{"violence"},
	})
	require.NoError(t, err)
	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, domain.ReasonSafeDominant, decision.Reason)
	assert.Nil(t, decision.Confidence)
}

func TestFilterImage_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)

	_, err := svc.FilterImage(context.Background(), appmoderation.ImageRequest{})
	assert.ErrorIs(t, err, domain.ErrNoImageURL)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.FilterImage(context.Background(), appmoderation.ImageRequest{ImageURL: "https://x/y.png"})
	assert.ErrorIs(t, err, domain.ErrNoFilters)
}

func TestFilterImage_FetchError(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, mock.Anything).
		Return(nil, errors.Join(domain.ErrFetch, errors.New("404")))

	_, err := f.service(nil).FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/missing.png",
		Labels:   []string{"nudity"},
	})
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFilterImage_UndecodableBody(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, mock.Anything).Return([]byte("<html>"), nil)

	_, err := f.service(nil).FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/page",
		Labels:   []string{"nudity"},
	})
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestFilterImage_ClassifierError(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, mock.Anything).Return(pngBytes(t), nil)
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyImage", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))

	_, err := f.service(nil).FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/a.png",
		Labels:   []string{"nudity"},
	})
	assert.ErrorIs(t, err, domain.ErrClassification)
}

func TestFilterImage_CachesDecision(t *testing.T) {
	f := newFixture(t)
	raw := pngBytes(t)
	f.fetcher.On("FetchImage", mock.Anything, mock.Anything).Return(raw, nil).Twice()
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyImage", mock.Anything, mock.Anything, mock.Anything).
		Return(probs(0.12, 0.8), nil).Once()

	svc := f.service(cache.NewDecisionCache(nil, 0, testLogger()))
	req := appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/a.png",
		Labels:   []string{"violence"},
	}

	first, err := svc.FilterImage(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.FilterImage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFilterImage_SimilarImagesAreClassifiedSeparately(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		img.Set(x, 63-x, color.RGBA{G: 255, A: 255})
	}
	encode := func(level png.CompressionLevel) []byte {
		var buf bytes.Buffer
		require.NoError(t, (&png.Encoder{CompressionLevel: level}).Encode(&buf, img))
		return buf.Bytes()
	}
	fast, small := encode(png.BestSpeed), encode(png.BestCompression)
	require.NotEqual(t, fast, small)

	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, "https://cdn.example.com/fast.png").Return(fast, nil).Once()
	f.fetcher.On("FetchImage", mock.Anything, "https://cdn.example.com/small.png").Return(small, nil).Once()
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyImage", mock.Anything, mock.Anything, mock.Anything).
		Return(probs(0.12, 0.8), nil).Once()
	f.classifier.On("ClassifyImage", mock.Anything, mock.Anything, mock.Anything).
		Return(probs(0.9, 0.05), nil).Once()

	svc := f.service(cache.NewDecisionCache(nil, 0, testLogger()))
	first, err := svc.FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/fast.png",
		Labels:   []string{"violence"},
	})
	require.NoError(t, err)
	second, err := svc.FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/small.png",
		Labels:   []string{"violence"},
	})
	require.NoError(t, err)

	assert.True(t, first.ShouldBlock)
	assert.False(t, second.ShouldBlock)
	f.classifier.AssertNumberOfCalls(t, "ClassifyImage", 2)
}

func TestFilterImage_SettingsChangeCacheKey(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("FetchImage", mock.Anything, mock.Anything).Return(pngBytes(t), nil)
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyImage", mock.Anything, mock.Anything, mock.Anything).
		Return(probs(0.4, 0.6), nil).Twice()

	svc := f.service(cache.NewDecisionCache(nil, 0, testLogger()))
	normal, err := svc.FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/a.png",
		Labels:   []string{"weapons"},
	})
	require.NoError(t, err)
	high, err := svc.FilterImage(context.Background(), appmoderation.ImageRequest{
		ImageURL: "https://cdn.example.com/a.png",
		Labels:   []string{"weapons"},
		Settings: domain.Settings{"weapons": domain.SensitivityHigh},
	})
	require.NoError(t, err)

	assert.False(t, normal.ShouldBlock)
	assert.True(t, high.ShouldBlock)
}

func TestFilterVideo_URLRewritesPrompts(t *testing.T) {
	f := newFixture(t)
	tmp := tempVideo(t)
	frames := []image.Image{image.NewRGBA(image.Rect(0, 0, 2, 2))}

	f.fetcher.On("DownloadVideo", mock.Anything, "https://cdn.example.com/v.mp4", "req-9").Return(tmp, nil)
	f.sampler.On("Sample", mock.Anything, tmp.Path, 5).Return(frames, nil)
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyVideo", mock.Anything, mock.MatchedBy(func(labels []string) bool {
		return labels[0] == "a video of gore" &&
			labels[1] == "a video of "+domain.DefaultSafeLabels[0]
	}), frames).Return(probs(0.1, 0.9), nil)

	decision, err := f.service(nil).FilterVideo(context.Background(), appmoderation.VideoRequest{
		RequestID: "req-9",
		VideoURL:  "https://cdn.example.com/v.mp4",
		Labels:    []string{"gore"},
	})
	require.NoError(t, err)
	assert.True(t, decision.ShouldBlock)
	assert.Equal(t, "Contains gore", decision.Reason)
	assert.Equal(t, domain.MediaTypeVideo, decision.MediaType)

	_, statErr := os.Stat(tmp.Path)
	assert.True(t, os.IsNotExist(statErr), "temp file must be removed")
}

func TestFilterVideo_UploadWinsOverURL(t *testing.T) {
	f := newFixture(t)
	tmp := tempVideo(t)
	upload := &multipart.FileHeader{Filename: "clip.mp4"}

	f.fetcher.On("SaveUpload", upload, "req-2").Return(tmp, nil)
	f.sampler.On("Sample", mock.Anything, tmp.Path, 5).Return([]image.Image{image.NewGray(image.Rect(0, 0, 1, 1))}, nil)
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyVideo", mock.Anything, mock.Anything, mock.Anything).Return(probs(0.9, 0.1), nil)

	decision, err := f.service(nil).FilterVideo(context.Background(), appmoderation.VideoRequest{
		RequestID: "req-2",
		VideoURL:  "https://cdn.example.com/ignored.mp4",
		Upload:    upload,
		Labels:    []string{"gore"},
	})
	require.NoError(t, err)
	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, domain.ReasonSafeDominant, decision.Reason)
	f.fetcher.AssertNotCalled(t, "DownloadVideo", mock.Anything, mock.Anything, mock.Anything)
}

func TestFilterVideo_MissingInput(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)

	_, err := svc.FilterVideo(context.Background(), appmoderation.VideoRequest{Labels: []string{"gore"}})
	assert.ErrorIs(t, err, domain.ErrNoVideoSource)

	_, err = svc.FilterVideo(context.Background(), appmoderation.VideoRequest{VideoURL: "https://x/v.mp4"})
	assert.ErrorIs(t, err, domain.ErrNoFilters)
}

func TestFilterVideo_SamplerErrorRemovesFile(t *testing.T) {
	f := newFixture(t)
	tmp := tempVideo(t)

	f.fetcher.On("DownloadVideo", mock.Anything, mock.Anything, mock.Anything).Return(tmp, nil)
	f.sampler.On("Sample", mock.Anything, tmp.Path, 5).Return(nil, errors.Join(domain.ErrDecode, errors.New("moov atom not found")))

	_, err := f.service(nil).FilterVideo(context.Background(), appmoderation.VideoRequest{
		VideoURL: "https://cdn.example.com/v.mp4",
		Labels:   []string{"gore"},
	})
	assert.ErrorIs(t, err, domain.ErrDecode)

	_, statErr := os.Stat(tmp.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFilterVideo_CacheKeyedByDigest(t *testing.T) {
	f := newFixture(t)
	var downloads atomic.Int32
	f.fetcher.On("DownloadVideo", mock.Anything, mock.Anything, mock.Anything).
		Return(func(context.Context, string, string) *media.TempFile {
			downloads.Add(1)
			return tempVideo(t)
		}, nil)
	f.sampler.On("Sample", mock.Anything, mock.Anything, 5).Return([]image.Image{image.NewGray(image.Rect(0, 0, 1, 1))}, nil).Once()
	f.classifier.On("Name").Return("clip")
	f.classifier.On("ClassifyVideo", mock.Anything, mock.Anything, mock.Anything).Return(probs(0.2, 0.8), nil).Once()

	svc := f.service(cache.NewDecisionCache(nil, 0, testLogger()))
	req := appmoderation.VideoRequest{VideoURL: "https://cdn.example.com/v.mp4", Labels: []string{"gore"}}

	first, err := svc.FilterVideo(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.FilterVideo(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), downloads.Load())
}

func TestDevice(t *testing.T) {
	f := newFixture(t)
	f.classifier.On("Device").Return(classifierDevice)
	assert.Equal(t, classifierDevice, f.service(nil).Device())
}

const classifierDevice = "gpu"
