package moderation

import (
	"fmt"
)

const (
	ReasonSafeDominant = "safe content dominant"
	ReasonSafe         = "content is safe"
)

// ContainsReason is the reason reported when label triggers a block.
func ContainsReason(label string) string {
	return fmt.Sprintf("Contains %s", label)
}

// LabelCheck records the threshold comparison made for one caller label.
type LabelCheck struct {
	Label       string
	Sensitivity Sensitivity
	Probability float64
	Threshold   float64
	Exceeded    bool
}

// Analysis explains how a Decision was reached.
type Analysis struct {
	UnsafeScore  float64
	SafeScore    float64
	SafeDominant bool
	Checks       []LabelCheck
}

type Engine struct {
	resolver ThresholdResolver
}

func NewEngine(resolver ThresholdResolver) *Engine {
	return &Engine{resolver: resolver}
}

// Decide applies the dominance rule and then the per-label thresholds. The
// first caller label, in input order, whose probability strictly exceeds its
// threshold wins.
func (e *Engine) Decide(
	labels LabelSet,
	probs ProbabilityVector,
	settings Settings,
	base float64,
	mediaType MediaType,
) (Decision, Analysis, error) {
	if len(probs) != labels.Len() {
		return Decision{}, Analysis{}, fmt.Errorf(
			"%w: got %d probabilities for %d labels", ErrClassification, len(probs), labels.Len(),
		)
	}

	numUnsafe := labels.NumUnsafe()
	analysis := Analysis{
		UnsafeScore: probs.Sum(0, numUnsafe),
		SafeScore:   probs.Sum(numUnsafe, len(probs)),
	}

	if analysis.SafeScore > analysis.UnsafeScore {
		analysis.SafeDominant = true
		return Allowed(ReasonSafeDominant, mediaType), analysis, nil
	}

	for i, label := range labels.Unsafe() {
		check := LabelCheck{
			Label:       label,
			Sensitivity: settings.Level(label),
			Probability: probs[i],
			Threshold:   e.resolver.Resolve(label, settings, base),
		}
		check.Exceeded = check.Probability > check.Threshold
		analysis.Checks = append(analysis.Checks, check)
		if check.Exceeded {
			return Blocked(ContainsReason(label), check.Probability, mediaType), analysis, nil
		}
	}

	return Allowed(ReasonSafe, mediaType), analysis, nil
}
