package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

const (
	OutcomeBlocked = "blocked"
	OutcomeAllowed = "allowed"
	OutcomeError   = "error"
)

var (
	// Inference runs from tens of milliseconds on a GPU to seconds on a CPU.
	latencyBuckets = []float64{
		10, 25, 50, 100, 250, 500,
		1000, 2500, 5000, 10000, 30000, 60000,
	}

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_requests_total",
			Help: "Total number of filter requests processed",
		},
		[]string{"endpoint", "status"},
	)

	DecisionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_decisions_total",
			Help: "Moderation outcomes by media type",
		},
		[]string{"media_type", "outcome"},
	)

	InferenceLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaguard_inference_latency_ms",
			Help:    "Classifier backend latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"media_type", "provider"},
	)

	FetchLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaguard_fetch_latency_ms",
			Help:    "Time spent acquiring media in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"media_type"},
	)

	CacheLookups = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_cache_lookups_total",
			Help: "Decision cache lookups by result",
		},
		[]string{"result"},
	)
)

type MetricsConfig struct {
	Enabled bool
}

var (
	Config   MetricsConfig
	initOnce sync.Once
)

func Initialize(cfg MetricsConfig) {
	Config = cfg
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	})
}

// Handler exposes the private registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func Gatherer() prometheus.Gatherer {
	return registry
}

func RecordRequest(endpoint string, status int) {
	if !Config.Enabled {
		return
	}
	RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func RecordDecision(mediaType, outcome string) {
	if !Config.Enabled {
		return
	}
	DecisionsTotal.WithLabelValues(mediaType, outcome).Inc()
}

func ObserveInference(mediaType, provider string, elapsed time.Duration) {
	if !Config.Enabled {
		return
	}
	InferenceLatency.WithLabelValues(mediaType, provider).Observe(float64(elapsed.Milliseconds()))
}

func ObserveFetch(mediaType string, elapsed time.Duration) {
	if !Config.Enabled {
		return
	}
	FetchLatency.WithLabelValues(mediaType).Observe(float64(elapsed.Milliseconds()))
}

func RecordCacheLookup(hit bool) {
	if !Config.Enabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}
