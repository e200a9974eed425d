package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/version"
	"github.com/spf13/viper"
)

var ErrConfigFileNotFound = errors.New("config file not found")

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Media      MediaConfig      `mapstructure:"media"`
	Video      VideoConfig      `mapstructure:"video"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
	SecretKey   string `mapstructure:"secret_key"`
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ModerationConfig struct {
	ImageThreshold  float64  `mapstructure:"image_threshold"`
	VideoThreshold  float64  `mapstructure:"video_threshold"`
	SensitivityStep float64  `mapstructure:"sensitivity_step"`
	VideoFrames     int      `mapstructure:"video_frames"`
	SafeLabels      []string `mapstructure:"safe_labels"`
}

type MediaConfig struct {
	ImageTimeout  time.Duration `mapstructure:"image_timeout"`
	VideoTimeout  time.Duration `mapstructure:"video_timeout"`
	MaxImageBytes int64         `mapstructure:"max_image_bytes"`
	MaxVideoBytes int64         `mapstructure:"max_video_bytes"`
	TempDir       string        `mapstructure:"temp_dir"`
	UserAgent     string        `mapstructure:"user_agent"`
}

type VideoConfig struct {
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path"`
}

type ClassifierConfig struct {
	Provider string                 `mapstructure:"provider"`
	BaseURL  string                 `mapstructure:"base_url"`
	Device   string                 `mapstructure:"device"`
	Timeout  time.Duration          `mapstructure:"timeout"`
	Options  map[string]interface{} `mapstructure:"options"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

var globalConfig Config

// Load reads config.yaml from configPath, ./config or the working directory
// and applies environment overrides such as SERVER_PORT. A missing file is
// reported with ErrConfigFileNotFound after defaults and environment have
// been applied.
func Load(configPath string) error {
	cfg, err := loadConfigFile(configPath, "config")
	if cfg != nil {
		globalConfig = *cfg
	}
	return err
}

func loadConfigFile(configPath, fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultValues(v)

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
		readErr = fmt.Errorf("%w: %s.yaml, using defaults and environment", ErrConfigFileNotFound, fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, readErr
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.body_limit_mb", 64)
	v.SetDefault("server.secret_key", "")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("moderation.image_threshold", moderation.DefaultImageThreshold)
	v.SetDefault("moderation.video_threshold", moderation.DefaultVideoThreshold)
	v.SetDefault("moderation.sensitivity_step", moderation.DefaultSensitivityStep)
	v.SetDefault("moderation.video_frames", 5)
	v.SetDefault("moderation.safe_labels", moderation.DefaultSafeLabels)

	v.SetDefault("media.image_timeout", "10s")
	v.SetDefault("media.video_timeout", "15s")
	v.SetDefault("media.max_image_bytes", 20<<20)
	v.SetDefault("media.max_video_bytes", 200<<20)
	v.SetDefault("media.temp_dir", "")
	v.SetDefault("media.user_agent", version.UserAgent())

	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("video.ffprobe_path", "ffprobe")

	v.SetDefault("classifier.provider", "clip")
	v.SetDefault("classifier.base_url", "http://localhost:8000")
	v.SetDefault("classifier.device", "cpu")
	v.SetDefault("classifier.timeout", "60s")
	v.SetDefault("classifier.options", map[string]interface{}{})

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Auth.Enabled && c.Server.SecretKey == "" {
		return errors.New("auth.enabled requires server.secret_key")
	}
	if c.Moderation.VideoFrames <= 0 {
		return fmt.Errorf("invalid moderation.video_frames %d", c.Moderation.VideoFrames)
	}
	if len(c.Moderation.SafeLabels) == 0 {
		return errors.New("moderation.safe_labels must not be empty")
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
