package moderation

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Sensitivity shifts the block threshold of a single label.
type Sensitivity string

const (
	SensitivityHigh   Sensitivity = "high"
	SensitivityNormal Sensitivity = "normal"
	SensitivityLow    Sensitivity = "low"
)

// ParseSensitivity matches levels exactly; anything else, including "HIGH"
// or " low", is SensitivityNormal.
func ParseSensitivity(level string) Sensitivity {
	switch Sensitivity(level) {
	case SensitivityHigh:
		return SensitivityHigh
	case SensitivityLow:
		return SensitivityLow
	default:
		return SensitivityNormal
	}
}

// FilterSpec is a caller label together with its sensitivity.
type FilterSpec struct {
	Label       string
	Sensitivity Sensitivity
}

// Settings holds the per-label sensitivity supplied in filter_settings.
type Settings map[string]Sensitivity

func (s Settings) Level(label string) Sensitivity {
	if lvl, ok := s[label]; ok {
		return lvl
	}
	return SensitivityNormal
}

// Specs pairs every label with its resolved sensitivity, keeping label order.
func (s Settings) Specs(labels []string) []FilterSpec {
	specs := make([]FilterSpec, 0, len(labels))
	for _, l := range labels {
		specs = append(specs, FilterSpec{Label: l, Sensitivity: s.Level(l)})
	}
	return specs
}

// Decision is the outcome of a single filter request.
type Decision struct {
	ShouldBlock bool      `json:"should_block"`
	Reason      string    `json:"reason"`
	Confidence  *float64  `json:"confidence,omitempty"`
	MediaType   MediaType `json:"media_type,omitempty"`
}

// Allowed builds a non-blocking decision.
func Allowed(reason string, mediaType MediaType) Decision {
	return Decision{ShouldBlock: false, Reason: reason, MediaType: mediaType}
}

// Blocked builds a blocking decision carrying the matched confidence.
func Blocked(reason string, confidence float64, mediaType MediaType) Decision {
	c := confidence
	return Decision{ShouldBlock: true, Reason: reason, Confidence: &c, MediaType: mediaType}
}
