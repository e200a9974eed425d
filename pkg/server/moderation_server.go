package server

import (
	"fmt"

	"github.com/NeuralTrust/MediaGuard/pkg/config"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/MediaGuard/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	ModerationServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	ModerationServer struct {
		*BaseServer
	}
)

func NewModerationServer(di ModerationServerDI) *ModerationServer {
	prometheus.Initialize(prometheus.MetricsConfig{Enabled: di.Config.Metrics.Enabled})

	s := &ModerationServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.WithRouters(di.Routers...)
	return s
}

func (s *ModerationServer) Run() error {
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting moderation server")
	return s.Router.Listen(addr)
}
