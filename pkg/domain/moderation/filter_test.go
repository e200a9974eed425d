package moderation_test

import (
	"testing"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRawFilters(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "mixed entries",
			raw:      `[{"term":"gore"}, "weapons", {"label":"blood"}, {}]`,
			expected: []string{"gore", "weapons", "blood"},
		},
		{
			name:     "term wins over label",
			raw:      `[{"term":"nudity","label":"ignored"}]`,
			expected: []string{"nudity"},
		},
		{
			name:     "empty term falls back to label",
			raw:      `[{"term":"","label":"drugs"}]`,
			expected: []string{"drugs"},
		},
		{
			name:     "duplicates and order kept",
			raw:      `["violence","gore","violence"]`,
			expected: []string{"violence", "gore", "violence"},
		},
		{
			name:     "non string values dropped",
			raw:      `[1, null, true, {"term": 3}, "spiders", ""]`,
			expected: []string{"spiders"},
		},
		{
			name:     "bare string",
			raw:      `"clowns"`,
			expected: []string{"clowns"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := moderation.NormalizeRawFilters([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, labels)
		})
	}
}

func TestNormalizeRawFilters_Empty(t *testing.T) {
	for _, raw := range []string{``, `[]`, `null`, `[{}, ""]`} {
		labels, err := moderation.NormalizeRawFilters([]byte(raw))
		assert.Nil(t, labels)
		assert.ErrorIs(t, err, moderation.ErrInvalidInput)
		assert.Equal(t, "No user_filters provided", err.Error())
	}
}

func TestNormalizeRawFilters_Malformed(t *testing.T) {
	_, err := moderation.NormalizeRawFilters([]byte(`[{"term":`))
	assert.ErrorIs(t, err, moderation.ErrInvalidInput)

	_, err = moderation.NormalizeRawFilters([]byte(`{"term":"gore"}`))
	assert.ErrorIs(t, err, moderation.ErrInvalidInput)
}

func TestNormalizeFilters_TaggedUnion(t *testing.T) {
	entries := []moderation.FilterEntry{
		moderation.StructuredFilter("gore", ""),
		moderation.StringFilter("weapons"),
		moderation.StructuredFilter("", "blood"),
		moderation.StructuredFilter("", ""),
	}
	labels, err := moderation.NormalizeFilters(entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"gore", "weapons", "blood"}, labels)
}

func TestParseSettings(t *testing.T) {
	settings, err := moderation.ParseSettings([]byte(`{"gore":"high","spiders":"low","blood":"normal","x":"weird","n":5}`))
	require.NoError(t, err)

	assert.Equal(t, moderation.SensitivityHigh, settings.Level("gore"))
	assert.Equal(t, moderation.SensitivityLow, settings.Level("spiders"))
	assert.Equal(t, moderation.SensitivityNormal, settings.Level("blood"))
	assert.Equal(t, moderation.SensitivityNormal, settings.Level("x"))
	assert.Equal(t, moderation.SensitivityNormal, settings.Level("n"))
	assert.Equal(t, moderation.SensitivityNormal, settings.Level("absent"))
}

func TestParseSensitivity_ExactMatch(t *testing.T) {
	assert.Equal(t, moderation.SensitivityHigh, moderation.ParseSensitivity("high"))
	assert.Equal(t, moderation.SensitivityLow, moderation.ParseSensitivity("low"))
	for _, level := range []string{"HIGH", "High", " high", "LOW", "low ", "", "medium"} {
		assert.Equal(t, moderation.SensitivityNormal, moderation.ParseSensitivity(level), level)
	}
}

func TestParseSettings_EmptyAndInvalid(t *testing.T) {
	settings, err := moderation.ParseSettings(nil)
	require.NoError(t, err)
	assert.Empty(t, settings)

	settings, err = moderation.ParseSettings([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, settings)

	_, err = moderation.ParseSettings([]byte(`["gore"]`))
	assert.ErrorIs(t, err, moderation.ErrInvalidInput)
}
