package moderation_test

import (
	"testing"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *moderation.Engine {
	return moderation.NewEngine(moderation.NewThresholdResolver(moderation.DefaultSensitivityStep))
}

func TestEngine_Decide_BlocksAboveThreshold(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"violence"}, moderation.DefaultSafeLabels)
	probs := moderation.ProbabilityVector{0.8, 0.05, 0.02, 0.01, 0.01, 0.01, 0.02}

	decision, analysis, err := newEngine().Decide(labels, probs, moderation.Settings{}, moderation.DefaultImageThreshold, moderation.MediaTypeImage)
	require.NoError(t, err)

	assert.True(t, decision.ShouldBlock)
	assert.Equal(t, "Contains violence", decision.Reason)
	require.NotNil(t, decision.Confidence)
	assert.InDelta(t, 0.8, *decision.Confidence, 1e-9)
	assert.InDelta(t, 0.8, analysis.UnsafeScore, 1e-9)
	assert.InDelta(t, 0.12, analysis.SafeScore, 1e-9)
	assert.False(t, analysis.SafeDominant)
}

func TestEngine_Decide_SafeDominant(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"violence"}, moderation.DefaultSafeLabels)
	probs := moderation.ProbabilityVector{0.3, 0.2, 0.1, 0.1, 0.1, 0.1, 0.1}

	decision, analysis, err := newEngine().Decide(labels, probs, moderation.Settings{}, moderation.DefaultImageThreshold, moderation.MediaTypeImage)
	require.NoError(t, err)

	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, moderation.ReasonSafeDominant, decision.Reason)
	assert.Nil(t, decision.Confidence)
	assert.True(t, analysis.SafeDominant)
	assert.Empty(t, analysis.Checks)
}

func TestEngine_Decide_DominanceOverridesSingleLabel(t *testing.T) {
	// gore alone clears a high-sensitivity threshold, but the safe labels win in aggregate.
	labels := moderation.NewLabelSet([]string{"gore", "blood"}, moderation.DefaultSafeLabels)
	probs := moderation.ProbabilityVector{0.45, 0.0, 0.55, 0, 0, 0, 0, 0}
	settings := moderation.Settings{"gore": moderation.SensitivityHigh}

	decision, _, err := newEngine().Decide(labels, probs, settings, moderation.DefaultImageThreshold, moderation.MediaTypeImage)
	require.NoError(t, err)
	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, moderation.ReasonSafeDominant, decision.Reason)
}

func TestEngine_Decide_FirstMatchWins(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"a", "b"}, []string{"safe"})
	probs := moderation.ProbabilityVector{0.45, 0.5, 0.05}
	settings := moderation.Settings{"a": moderation.SensitivityHigh, "b": moderation.SensitivityHigh}

	decision, analysis, err := newEngine().Decide(labels, probs, settings, 0.4, moderation.MediaTypeVideo)
	require.NoError(t, err)

	assert.True(t, decision.ShouldBlock)
	assert.Equal(t, "Contains a", decision.Reason)
	assert.InDelta(t, 0.45, *decision.Confidence, 1e-9)
	assert.Equal(t, moderation.MediaTypeVideo, decision.MediaType)
	assert.Len(t, analysis.Checks, 1)
}

func TestEngine_Decide_NoLabelExceeds(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"a", "b"}, []string{"safe"})
	probs := moderation.ProbabilityVector{0.4, 0.4, 0.2}

	decision, analysis, err := newEngine().Decide(labels, probs, moderation.Settings{}, moderation.DefaultVideoThreshold, moderation.MediaTypeVideo)
	require.NoError(t, err)

	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, moderation.ReasonSafe, decision.Reason)
	assert.Len(t, analysis.Checks, 2)
}

func TestEngine_Decide_StrictComparison(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"a"}, []string{"safe"})
	probs := moderation.ProbabilityVector{0.75, 0.25}

	decision, _, err := newEngine().Decide(labels, probs, moderation.Settings{}, 0.75, moderation.MediaTypeImage)
	require.NoError(t, err)
	assert.False(t, decision.ShouldBlock)
}

func TestEngine_Decide_LowSensitivity(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"spiders"}, []string{"safe"})
	probs := moderation.ProbabilityVector{0.78, 0.22}
	settings := moderation.Settings{"spiders": moderation.SensitivityLow}

	decision, _, err := newEngine().Decide(labels, probs, settings, moderation.DefaultVideoThreshold, moderation.MediaTypeVideo)
	require.NoError(t, err)
	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, moderation.ReasonSafe, decision.Reason)
}

func TestEngine_Decide_NoUnsafeLabels(t *testing.T) {
	labels := moderation.NewLabelSet(nil, moderation.DefaultSafeLabels)
	probs := moderation.ProbabilityVector{0.5, 0.1, 0.1, 0.1, 0.1, 0.1}

	decision, _, err := newEngine().Decide(labels, probs, moderation.Settings{}, moderation.DefaultImageThreshold, moderation.MediaTypeImage)
	require.NoError(t, err)
	assert.False(t, decision.ShouldBlock)
	assert.Equal(t, moderation.ReasonSafeDominant, decision.Reason)
}

func TestEngine_Decide_MisalignedVector(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"a"}, []string{"safe"})

	_, _, err := newEngine().Decide(labels, moderation.ProbabilityVector{1}, moderation.Settings{}, 0.7, moderation.MediaTypeImage)
	assert.ErrorIs(t, err, moderation.ErrClassification)
}

func TestLabelSet_Rewrite(t *testing.T) {
	labels := moderation.NewLabelSet([]string{"gore"}, []string{"landscape"})
	rewritten := labels.Rewrite(func(l string) string { return "a video of " + l })

	assert.Equal(t, []string{"a video of gore", "a video of landscape"}, rewritten.Labels())
	assert.Equal(t, 1, rewritten.NumUnsafe())
	assert.Equal(t, []string{"gore", "landscape"}, labels.Labels())
	assert.Equal(t, []string{"landscape"}, labels.Safe())
}
