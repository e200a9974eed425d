package response

import domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"

// FilterResponse is the 200 body of both filter endpoints. Type is only set
// by the video endpoint.
type FilterResponse struct {
	ShouldBlock bool     `json:"should_block"`
	Reason      string   `json:"reason"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Type        string   `json:"type,omitempty"`
}

func NewFilterResponse(d domain.Decision) FilterResponse {
	return FilterResponse{
		ShouldBlock: d.ShouldBlock,
		Reason:      d.Reason,
		Confidence:  d.Confidence,
		Type:        string(d.MediaType),
	}
}

// ErrorResponse is returned on 4xx and 5xx. ShouldBlock is only present on
// processing failures, where it is always false.
type ErrorResponse struct {
	Error       string `json:"error"`
	ShouldBlock *bool  `json:"should_block,omitempty"`
	Type        string `json:"type,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Device string `json:"device"`
}
