package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	cfg := GetConfig()
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, 64, cfg.Server.BodyLimitMB)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.InDelta(t, 0.70, cfg.Moderation.ImageThreshold, 1e-9)
	assert.InDelta(t, 0.65, cfg.Moderation.VideoThreshold, 1e-9)
	assert.InDelta(t, 0.15, cfg.Moderation.SensitivityStep, 1e-9)
	assert.Equal(t, 5, cfg.Moderation.VideoFrames)
	assert.Equal(t, moderation.DefaultSafeLabels, cfg.Moderation.SafeLabels)
	assert.Equal(t, 10*time.Second, cfg.Media.ImageTimeout)
	assert.Equal(t, 15*time.Second, cfg.Media.VideoTimeout)
	assert.Equal(t, int64(20<<20), cfg.Media.MaxImageBytes)
	assert.Equal(t, version.UserAgent(), cfg.Media.UserAgent)
	assert.Equal(t, "ffprobe", cfg.Video.FFprobePath)
	assert.Equal(t, "clip", cfg.Classifier.Provider)
	assert.Equal(t, "http://localhost:8000", cfg.Classifier.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_FileAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()
	yaml := `
server:
  port: 8080
moderation:
  image_threshold: 0.8
  safe_labels:
    - landscape
classifier:
  provider: openai
  options:
    model: gpt-4o
    api_key: from-file
cache:
  enabled: true
  ttl: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("MODERATION_VIDEO_FRAMES", "8")

	require.NoError(t, Load(dir))
	cfg := GetConfig()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Moderation.VideoFrames)
	assert.InDelta(t, 0.8, cfg.Moderation.ImageThreshold, 1e-9)
	assert.Equal(t, []string{"landscape"}, cfg.Moderation.SafeLabels)
	assert.Equal(t, "openai", cfg.Classifier.Provider)
	assert.Equal(t, "gpt-4o", cfg.Classifier.Options["model"])
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	base := Config{
		Server:     ServerConfig{Port: 5000},
		Moderation: ModerationConfig{VideoFrames: 5, SafeLabels: []string{"landscape"}},
	}
	require.NoError(t, base.Validate())

	authNoSecret := base
	authNoSecret.Auth.Enabled = true
	assert.Error(t, authNoSecret.Validate())

	noFrames := base
	noFrames.Moderation.VideoFrames = 0
	assert.Error(t, noFrames.Validate())

	noSafe := base
	noSafe.Moderation.SafeLabels = nil
	assert.Error(t, noSafe.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}
