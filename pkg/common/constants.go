package common

const (
	RequestIDHeader = "X-Request-Id"

	FilterImagePath = "/filter-image"
	FilterVideoPath = "/filter-video"
	HealthPath      = "/health"
	VersionPath     = "/version"
)
