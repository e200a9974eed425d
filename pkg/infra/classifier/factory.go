package classifier

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/MediaGuard/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	breakerMaxFailures = 5
)

// NewClient builds the backend named by cfg.Provider. An empty provider
// selects the CLIP server.
func NewClient(cfg Config, httpClient httpx.Client, logger *logrus.Logger) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderCLIP:
		breaker := httpx.NewCircuitBreaker("clip-classifier", cfg.Timeout, breakerMaxFailures)
		return NewCLIPClient(httpClient, cfg, breaker, logger)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.Provider)
	}
}
