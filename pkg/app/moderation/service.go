package moderation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"time"

	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/cache"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/classifier"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/media"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// VideoPromptPrefix is prepended to every label sent to the video model.
const VideoPromptPrefix = "a video of "

//go:generate mockery --name=MediaFetcher --dir=. --output=./mocks --filename=media_fetcher_mock.go --case=underscore
type MediaFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
	DownloadVideo(ctx context.Context, videoURL, tag string) (*media.TempFile, error)
	SaveUpload(fh *multipart.FileHeader, tag string) (*media.TempFile, error)
}

//go:generate mockery --name=FrameSampler --dir=. --output=./mocks --filename=frame_sampler_mock.go --case=underscore
type FrameSampler interface {
	Sample(ctx context.Context, path string, n int) ([]image.Image, error)
}

//go:generate mockery --name=Filter --dir=. --output=./mocks --filename=filter_mock.go --case=underscore
type Filter interface {
	FilterImage(ctx context.Context, req ImageRequest) (domain.Decision, error)
	FilterVideo(ctx context.Context, req VideoRequest) (domain.Decision, error)
	Device() string
}

type ImageRequest struct {
	RequestID string
	ImageURL  string
	Labels    []string
	Settings  domain.Settings
}

// VideoRequest carries either an uploaded file or a URL. The upload wins
// when both are set.
type VideoRequest struct {
	RequestID string
	VideoURL  string
	Upload    *multipart.FileHeader
	Labels    []string
	Settings  domain.Settings
}

type Config struct {
	ImageThreshold  float64
	VideoThreshold  float64
	SensitivityStep float64
	VideoFrames     int
	SafeLabels      []string
}

type service struct {
	logger     *logrus.Logger
	classifier classifier.Client
	fetcher    MediaFetcher
	sampler    FrameSampler
	cache      *cache.DecisionCache
	engine     *domain.Engine
	cfg        Config
}

// NewService wires the filter pipeline. decisionCache may be nil.
func NewService(
	logger *logrus.Logger,
	classifierClient classifier.Client,
	fetcher MediaFetcher,
	sampler FrameSampler,
	decisionCache *cache.DecisionCache,
	cfg Config,
) Filter {
	if cfg.ImageThreshold == 0 {
		cfg.ImageThreshold = domain.DefaultImageThreshold
	}
	if cfg.VideoThreshold == 0 {
		cfg.VideoThreshold = domain.DefaultVideoThreshold
	}
	if cfg.VideoFrames <= 0 {
		cfg.VideoFrames = 5
	}
	if len(cfg.SafeLabels) == 0 {
		cfg.SafeLabels = domain.DefaultSafeLabels
	}
	return &service{
		logger:     logger,
		classifier: classifierClient,
		fetcher:    fetcher,
		sampler:    sampler,
		cache:      decisionCache,
		engine:     domain.NewEngine(domain.NewThresholdResolver(cfg.SensitivityStep)),
		cfg:        cfg,
	}
}

func (s *service) Device() string {
	return s.classifier.Device()
}

func (s *service) FilterImage(ctx context.Context, req ImageRequest) (domain.Decision, error) {
	if req.ImageURL == "" {
		return domain.Decision{}, domain.ErrNoImageURL
	}
	if len(req.Labels) == 0 {
		return domain.Decision{}, domain.ErrNoFilters
	}
	log := s.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"media_type": domain.MediaTypeImage,
	})
	log.WithField("filters", req.Labels).Info("image filter request")

	start := time.Now()
	raw, err := s.fetcher.FetchImage(ctx, req.ImageURL)
	prometheus.ObserveFetch(string(domain.MediaTypeImage), time.Since(start))
	if err != nil {
		return s.fail(domain.MediaTypeImage, err)
	}
	img, format, err := media.DecodeImage(raw)
	if err != nil {
		return s.fail(domain.MediaTypeImage, err)
	}
	log.WithFields(logrus.Fields{
		"format": format,
		"bytes":  len(raw),
		"dhash":  cache.PerceptualHash(img),
	}).Debug("decoded image")

	labels := domain.NewLabelSet(req.Labels, s.cfg.SafeLabels)
	classify := func() (domain.Decision, error) {
		start := time.Now()
		probs, err := s.classifier.ClassifyImage(ctx, labels.Labels(), img)
		prometheus.ObserveInference(string(domain.MediaTypeImage), s.classifier.Name(), time.Since(start))
		if err != nil {
			return domain.Decision{}, fmt.Errorf("%w: %v", domain.ErrClassification, err)
		}
		return s.decide(log, labels, probs, req.Settings, s.cfg.ImageThreshold, domain.MediaTypeImage)
	}

	identity := func() string { return cache.ContentIdentity(raw) }
	decision, err := s.withCache(ctx, log, domain.MediaTypeImage, identity, req.Labels, req.Settings, s.cfg.ImageThreshold, classify)
	if err != nil {
		return s.fail(domain.MediaTypeImage, err)
	}
	// The image endpoint does not report a media type.
	decision.MediaType = ""
	return s.succeed(log, domain.MediaTypeImage, decision), nil
}

func (s *service) FilterVideo(ctx context.Context, req VideoRequest) (domain.Decision, error) {
	if req.Upload == nil && req.VideoURL == "" {
		return domain.Decision{}, domain.ErrNoVideoSource
	}
	if len(req.Labels) == 0 {
		return domain.Decision{}, domain.ErrNoFilters
	}
	log := s.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"media_type": domain.MediaTypeVideo,
	})
	log.WithFields(logrus.Fields{
		"filters": req.Labels,
		"upload":  req.Upload != nil,
	}).Info("video filter request")

	start := time.Now()
	tmp, err := s.acquireVideo(ctx, req)
	prometheus.ObserveFetch(string(domain.MediaTypeVideo), time.Since(start))
	if err != nil {
		return s.fail(domain.MediaTypeVideo, err)
	}
	defer tmp.Remove()

	labels := domain.NewLabelSet(req.Labels, s.cfg.SafeLabels)
	prompts := labels.Rewrite(func(label string) string { return VideoPromptPrefix + label })
	classify := func() (domain.Decision, error) {
		frames, err := s.sampler.Sample(ctx, tmp.Path, s.cfg.VideoFrames)
		if err != nil {
			return domain.Decision{}, err
		}
		log.WithField("frames", len(frames)).Debug("sampled video frames")

		start := time.Now()
		probs, err := s.classifier.ClassifyVideo(ctx, prompts.Labels(), frames)
		prometheus.ObserveInference(string(domain.MediaTypeVideo), s.classifier.Name(), time.Since(start))
		if err != nil {
			return domain.Decision{}, fmt.Errorf("%w: %v", domain.ErrClassification, err)
		}
		return s.decide(log, labels, probs, req.Settings, s.cfg.VideoThreshold, domain.MediaTypeVideo)
	}

	identity := func() string { return "sha256:" + tmp.Digest }
	decision, err := s.withCache(ctx, log, domain.MediaTypeVideo, identity, req.Labels, req.Settings, s.cfg.VideoThreshold, classify)
	if err != nil {
		return s.fail(domain.MediaTypeVideo, err)
	}
	decision.MediaType = domain.MediaTypeVideo
	return s.succeed(log, domain.MediaTypeVideo, decision), nil
}

func (s *service) acquireVideo(ctx context.Context, req VideoRequest) (*media.TempFile, error) {
	if req.Upload != nil {
		return s.fetcher.SaveUpload(req.Upload, req.RequestID)
	}
	return s.fetcher.DownloadVideo(ctx, req.VideoURL, req.RequestID)
}

// decide runs the decision engine on the caller labels as sent; the
// probabilities line up with them regardless of any prompt rewriting.
func (s *service) decide(
	log *logrus.Entry,
	labels domain.LabelSet,
	probs []float64,
	settings domain.Settings,
	base float64,
	mediaType domain.MediaType,
) (domain.Decision, error) {
	decision, analysis, err := s.engine.Decide(labels, probs, settings, base, mediaType)
	if err != nil {
		return domain.Decision{}, err
	}

	log.WithFields(logrus.Fields{
		"unsafe_score": analysis.UnsafeScore,
		"safe_score":   analysis.SafeScore,
	}).Info("score analysis")
	for _, check := range analysis.Checks {
		log.WithFields(logrus.Fields{
			"label":       check.Label,
			"sensitivity": check.Sensitivity,
			"probability": check.Probability,
			"threshold":   check.Threshold,
			"exceeded":    check.Exceeded,
		}).Debug("label analysis")
	}
	return decision, nil
}

func (s *service) withCache(
	ctx context.Context,
	log *logrus.Entry,
	mediaType domain.MediaType,
	identity func() string,
	labels []string,
	settings domain.Settings,
	base float64,
	compute func() (domain.Decision, error),
) (domain.Decision, error) {
	if s.cache == nil {
		return compute()
	}
	key := cache.DecisionKey(mediaType, identity(), labels, settings, base)
	decision, lookup, err := s.cache.GetOrCompute(ctx, key, compute)
	if err != nil {
		return domain.Decision{}, err
	}
	prometheus.RecordCacheLookup(lookup.Hit())
	if lookup.Hit() {
		log.WithField("cache_key", key).Debug("decision served from cache")
	}
	return decision, nil
}

func (s *service) succeed(log *logrus.Entry, mediaType domain.MediaType, decision domain.Decision) domain.Decision {
	outcome := prometheus.OutcomeAllowed
	if decision.ShouldBlock {
		outcome = prometheus.OutcomeBlocked
	}
	prometheus.RecordDecision(string(mediaType), outcome)

	entry := log.WithFields(logrus.Fields{
		"should_block": decision.ShouldBlock,
		"reason":       decision.Reason,
	})
	if decision.Confidence != nil {
		entry = entry.WithField("confidence", *decision.Confidence)
	}
	entry.Info("moderation decision")
	return decision
}

func (s *service) fail(mediaType domain.MediaType, err error) (domain.Decision, error) {
	if !errors.Is(err, domain.ErrInvalidInput) {
		prometheus.RecordDecision(string(mediaType), prometheus.OutcomeError)
	}
	return domain.Decision{}, err
}
