package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/config"
	"github.com/NeuralTrust/MediaGuard/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/MediaGuard/pkg/infra/logger"
	"github.com/NeuralTrust/MediaGuard/pkg/server"
	"github.com/NeuralTrust/MediaGuard/pkg/server/router"
	"github.com/NeuralTrust/MediaGuard/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const cacheJanitorInterval = time.Minute

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogs, err := infraLogger.NewLogger(infraLogger.Options{
		Dir:     os.Getenv("LOG_DIR"),
		Console: true,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogs()

	if err := config.Load(os.Getenv("CONFIG_PATH")); err != nil {
		if !errors.Is(err, config.ErrConfigFileNotFound) {
			logger.Fatalf("Failed to load config: %v", err)
		}
		logger.WithError(err).Warn("config file not found")
	}
	cfg := config.GetConfig()

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize dependencies: %v", err)
	}

	stopJanitor := make(chan struct{})
	container.StartCacheJanitor(cacheJanitorInterval, stopJanitor)

	srv := server.NewModerationServer(server.ModerationServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewModerationRouter(container.MiddlewareTransport, container.HandlerTransport),
		},
	})

	logger.WithFields(logrus.Fields{
		"version":  version.Version,
		"provider": container.Classifier.Name(),
		"device":   container.Classifier.Device(),
		"auth":     cfg.Auth.Enabled,
		"cache":    cfg.Cache.Enabled,
		"frames":   cfg.Moderation.VideoFrames,
	}).Info("MediaGuard ready")

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("shutting down server...")
	close(stopJanitor)
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	if err := container.Close(); err != nil {
		logger.WithError(err).Warn("error closing cache")
	}
	fmt.Println("server gracefully stopped")
}
