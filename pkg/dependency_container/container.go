package dependency_container

import (
	"fmt"
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/app/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/config"
	handlers "github.com/NeuralTrust/MediaGuard/pkg/handlers/http"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/cache"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/classifier"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/media"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/video"
	"github.com/NeuralTrust/MediaGuard/pkg/middleware"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Cache               cache.Client
	DecisionCache       *cache.DecisionCache
	Classifier          classifier.Client
	Filter              moderation.Filter
	JWTManager          jwt.Manager
	HandlerTransport    *handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// NewCache overrides the redis client constructor, mainly in tests.
	NewCache func(cache.Config, *logrus.Logger) (cache.Client, error)
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg

	// Media downloads and classifier calls use separate pools so slow video
	// transfers never starve inference.
	mediaCfg := media.Config{
		ImageTimeout:  cfg.Media.ImageTimeout,
		VideoTimeout:  cfg.Media.VideoTimeout,
		MaxImageBytes: cfg.Media.MaxImageBytes,
		MaxVideoBytes: cfg.Media.MaxVideoBytes,
		TempDir:       cfg.Media.TempDir,
		UserAgent:     cfg.Media.UserAgent,
	}
	mediaHTTPClient := media.NewHTTPClient(mediaCfg)
	classifierHTTPClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.Classifier.Timeout),
		httpx.WithMaxRedirects(0),
	)

	classifierClient, err := classifier.NewClient(classifier.Config{
		Provider: cfg.Classifier.Provider,
		BaseURL:  cfg.Classifier.BaseURL,
		Device:   cfg.Classifier.Device,
		Timeout:  cfg.Classifier.Timeout,
		Options:  cfg.Classifier.Options,
	}, classifierHTTPClient, di.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	fetcher := media.NewFetcher(mediaHTTPClient, mediaCfg, di.Logger)

	sampler := video.NewSampler(
		video.NewFFmpegDecoder(cfg.Video.FFmpegPath, cfg.Video.FFprobePath),
		di.Logger,
	)

	var (
		cacheInstance cache.Client
		decisionCache *cache.DecisionCache
	)
	if cfg.Cache.Enabled {
		newCache := di.NewCache
		if newCache == nil {
			newCache = cache.NewClient
		}
		cacheInstance, err = newCache(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		}, di.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		decisionCache = cache.NewDecisionCache(cacheInstance, cfg.Cache.TTL, di.Logger)
	}

	filter := moderation.NewService(di.Logger, classifierClient, fetcher, sampler, decisionCache, moderation.Config{
		ImageThreshold:  cfg.Moderation.ImageThreshold,
		VideoThreshold:  cfg.Moderation.VideoThreshold,
		SensitivityStep: cfg.Moderation.SensitivityStep,
		VideoFrames:     cfg.Moderation.VideoFrames,
		SafeLabels:      cfg.Moderation.SafeLabels,
	})

	jwtManager := jwt.NewJwtManager(&cfg.Server)

	middlewareTransport := &middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(di.Logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		CORSMiddleware:         middleware.NewCORSGlobalMiddleware(nil, nil, []string{"X-Request-Id"}, "600"),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(di.Logger),
	}
	if cfg.Auth.Enabled {
		middlewareTransport.AuthMiddleware = middleware.NewAuthMiddleware(di.Logger, jwtManager)
	}

	handlerTransport := &handlers.HandlerTransport{
		FilterImageHandler: handlers.NewFilterImageHandler(di.Logger, filter),
		FilterVideoHandler: handlers.NewFilterVideoHandler(di.Logger, filter),
		HealthHandler:      handlers.NewHealthHandler(filter),
		GetVersionHandler:  handlers.NewGetVersionHandler(),
	}

	return &Container{
		Cache:               cacheInstance,
		DecisionCache:       decisionCache,
		Classifier:          classifierClient,
		Filter:              filter,
		JWTManager:          jwtManager,
		HandlerTransport:    handlerTransport,
		MiddlewareTransport: middlewareTransport,
	}, nil
}

// StartCacheJanitor purges expired in-process decisions until stop is
// closed. It is a no-op when the decision cache is disabled.
func (c *Container) StartCacheJanitor(interval time.Duration, stop <-chan struct{}) {
	if c.DecisionCache == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.DecisionCache.Purge()
			case <-stop:
				return
			}
		}
	}()
}

func (c *Container) Close() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}
