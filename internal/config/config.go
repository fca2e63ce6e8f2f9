package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Retention   RetentionConfig   `mapstructure:"retention"`
	Layouts     LayoutsConfig     `mapstructure:"layouts"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Outline     OutlineConfig     `mapstructure:"outline"`
	Images      ImagesConfig      `mapstructure:"images"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	Clamd       ClamdConfig       `mapstructure:"clamd"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig enables the optional static bearer token gate on mutating endpoints.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// StorageConfig contains local file storage settings for uploads and exports.
type StorageConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// RetentionConfig controls the background sweep that deletes expired stored files.
type RetentionConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	Days         int  `mapstructure:"days"`
	SweepMinutes int  `mapstructure:"sweep_minutes"`
}

// LayoutsConfig points at an optional on-disk layout library.
// When the file is absent the embedded default library is used.
type LayoutsConfig struct {
	Path string `mapstructure:"path"`
}

// ScoringConfig carries the layout-fit scoring weights.
// The defaults are hand-tuned; they are exposed here rather than hard-coded.
type ScoringConfig struct {
	UnderflowWeight float64 `mapstructure:"underflow_weight"`
	OverflowWeight  float64 `mapstructure:"overflow_weight"`
	TiebreakWeight  float64 `mapstructure:"tiebreak_weight"`
}

// OutlineConfig selects the outline generation strategy.
type OutlineConfig struct {
	UseAgent       bool   `mapstructure:"use_agent"`
	AgentURL       string `mapstructure:"agent_url"`
	AgentTimeoutMS int    `mapstructure:"agent_timeout_ms"`
}

// ImagesConfig controls the slide image enrichment pass.
type ImagesConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Provider     string `mapstructure:"provider"`
	PexelsAPIKey string `mapstructure:"pexels_api_key"`
	TimeoutMS    int    `mapstructure:"timeout_ms"`
}

// IdempotencyConfig controls the editor-build response cache.
type IdempotencyConfig struct {
	Backend    string `mapstructure:"backend"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// RedisConfig 包含 Redis 连接配置（仅幂等缓存后端为 redis 时需要）。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for the optional MinIO/S3-compatible asset store.
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
}

// ClamdConfig points at an optional clamd instance used to scan uploads.
// An empty address disables scanning.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token", "")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.max_upload_mb", 20)
	v.SetDefault("retention.enabled", true)
	v.SetDefault("retention.days", 7)
	v.SetDefault("retention.sweep_minutes", 30)
	v.SetDefault("layouts.path", "")
	v.SetDefault("scoring.underflow_weight", 2.0)
	v.SetDefault("scoring.overflow_weight", 1.5)
	v.SetDefault("scoring.tiebreak_weight", 0.5)
	v.SetDefault("outline.use_agent", false)
	v.SetDefault("outline.agent_url", "")
	v.SetDefault("outline.agent_timeout_ms", 10000)
	v.SetDefault("images.enabled", true)
	v.SetDefault("images.provider", "stub")
	v.SetDefault("images.timeout_ms", 8000)
	v.SetDefault("idempotency.backend", "memory")
	v.SetDefault("idempotency.ttl_seconds", 300)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "slide-assets")
	v.SetDefault("clamd.addr", "")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                 "API_PORT",
		"auth.enabled":             "AUTH_ENABLED",
		"auth.token":               "API_TOKEN",
		"storage.dir":              "STORAGE_DIR",
		"storage.max_upload_mb":    "MAX_UPLOAD_MB",
		"retention.enabled":        "ENABLE_RETENTION",
		"retention.days":           "RETENTION_DAYS",
		"retention.sweep_minutes":  "RETENTION_SWEEP_MINUTES",
		"layouts.path":             "LAYOUTS_PATH",
		"scoring.underflow_weight": "SCORING_UNDERFLOW_WEIGHT",
		"scoring.overflow_weight":  "SCORING_OVERFLOW_WEIGHT",
		"scoring.tiebreak_weight":  "SCORING_TIEBREAK_WEIGHT",
		"outline.use_agent":        "FEATURE_USE_AGENT",
		"outline.agent_url":        "AGENT_URL",
		"outline.agent_timeout_ms": "AGENT_TIMEOUT_MS",
		"images.enabled":           "FEATURE_IMAGE_API",
		"images.provider":          "IMAGE_PROVIDER",
		"images.pexels_api_key":    "PEXELS_API_KEY",
		"images.timeout_ms":        "IMAGE_TIMEOUT_MS",
		"idempotency.backend":      "IDEMPOTENCY_BACKEND",
		"idempotency.ttl_seconds":  "IDEMPOTENCY_TTL_SECONDS",
		"redis.host":               "REDIS_HOST",
		"redis.port":               "REDIS_PORT",
		"minio.enabled":            "MINIO_ENABLED",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.bucket":             "MINIO_BUCKET",
		"clamd.addr":               "CLAMD_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Auth.Enabled && cfg.Auth.Token == "" {
		return errors.New("auth enabled requires api token")
	}
	if cfg.Storage.Dir == "" {
		return errors.New("storage dir is required")
	}
	if cfg.Storage.MaxUploadMB <= 0 {
		return errors.New("max upload mb must be positive")
	}
	if cfg.Retention.Enabled {
		if cfg.Retention.Days <= 0 {
			return errors.New("retention days must be positive")
		}
		if cfg.Retention.SweepMinutes <= 0 {
			return errors.New("retention sweep minutes must be positive")
		}
	}
	if cfg.Scoring.UnderflowWeight <= 0 || cfg.Scoring.OverflowWeight <= 0 {
		return errors.New("scoring penalty weights must be positive")
	}
	if cfg.Scoring.TiebreakWeight < 0 {
		return errors.New("scoring tiebreak weight must not be negative")
	}
	if cfg.Outline.UseAgent && cfg.Outline.AgentURL == "" {
		return errors.New("outline agent enabled requires agent url")
	}
	switch cfg.Images.Provider {
	case "stub", "pexels":
	default:
		return fmt.Errorf("invalid image provider %q", cfg.Images.Provider)
	}
	if cfg.Images.Provider == "pexels" && cfg.Images.PexelsAPIKey == "" {
		return errors.New("pexels image provider requires api key")
	}
	switch cfg.Idempotency.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid idempotency backend %q", cfg.Idempotency.Backend)
	}
	if cfg.Idempotency.TTLSeconds <= 0 {
		return errors.New("idempotency ttl must be positive")
	}
	if cfg.Idempotency.Backend == "redis" {
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
	}
	if cfg.MinIO.Enabled {
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	}
	return nil
}
