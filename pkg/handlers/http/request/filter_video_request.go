package request

import (
	"encoding/json"

	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
)

const (
	VideoFileField      = "file"
	UserFiltersField    = "user_filters"
	FilterSettingsField = "filter_settings"
)

// FilterVideoRequest is the JSON body of POST /filter-video. Multipart
// uploads carry the same filter fields as JSON encoded form values.
type FilterVideoRequest struct {
	VideoURL       string          `json:"video_url"`
	UserFilters    json.RawMessage `json:"user_filters,omitempty" swaggertype:"array,object"`
	FilterSettings json.RawMessage `json:"filter_settings,omitempty" swaggertype:"object"`
}

func (r *FilterVideoRequest) Filters() ([]string, domain.Settings, error) {
	return parseFilterFields(r.UserFilters, r.FilterSettings)
}

// FormFilters parses the user_filters and filter_settings form values of a
// multipart upload.
func FormFilters(userFilters, filterSettings string) ([]string, domain.Settings, error) {
	return parseFilterFields([]byte(userFilters), []byte(filterSettings))
}
