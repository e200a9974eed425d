package moderation

const (
	DefaultImageThreshold  = 0.70
	DefaultVideoThreshold  = 0.65
	DefaultSensitivityStep = 0.15
)

// ThresholdResolver turns a base threshold into the effective threshold of a
// label. Results are not clamped to [0,1].
type ThresholdResolver struct {
	Step float64
}

func NewThresholdResolver(step float64) ThresholdResolver {
	if step <= 0 {
		step = DefaultSensitivityStep
	}
	return ThresholdResolver{Step: step}
}

func (r ThresholdResolver) Resolve(label string, settings Settings, base float64) float64 {
	switch settings.Level(label) {
	case SensitivityHigh:
		return base - r.Step
	case SensitivityLow:
		return base + r.Step
	default:
		return base
	}
}

// ResolveThreshold applies the default sensitivity step.
func ResolveThreshold(label string, settings Settings, base float64) float64 {
	return NewThresholdResolver(DefaultSensitivityStep).Resolve(label, settings, base)
}
