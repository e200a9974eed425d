package request

import (
	"encoding/json"

	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
)

// FilterImageRequest is the JSON body of POST /filter-image. The filter
// fields stay raw so both accepted user_filters shapes reach the normalizer.
type FilterImageRequest struct {
	ImageURL       string          `json:"image_url"`
	UserFilters    json.RawMessage `json:"user_filters,omitempty" swaggertype:"array,object"`
	FilterSettings json.RawMessage `json:"filter_settings,omitempty" swaggertype:"object"`
}

// Filters returns the normalized caller labels. An absent or empty list
// yields nil so the service reports the missing field in the right order.
func (r *FilterImageRequest) Filters() ([]string, domain.Settings, error) {
	return parseFilterFields(r.UserFilters, r.FilterSettings)
}

func parseFilterFields(rawFilters, rawSettings []byte) ([]string, domain.Settings, error) {
	entries, err := domain.ParseFilterEntries(rawFilters)
	if err != nil {
		return nil, nil, err
	}
	settings, err := domain.ParseSettings(rawSettings)
	if err != nil {
		return nil, nil, err
	}
	labels, err := domain.NormalizeFilters(entries)
	if err != nil {
		return nil, settings, nil
	}
	return labels, settings, nil
}
