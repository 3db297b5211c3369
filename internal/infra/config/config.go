package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	HomeAssistant HomeAssistantConfig `yaml:"homeAssistant"`
	Influx        InfluxConfig        `yaml:"influx"`
	Store         StoreConfig         `yaml:"store"`
	Occupancy     OccupancyConfig     `yaml:"occupancy"`
	Labels        LabelsConfig        `yaml:"labels"`
	Auth          AuthConfig          `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// CORSConfig lists the dashboard origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// HomeAssistantConfig points at the live state API of the building's
// Home Assistant instance.
type HomeAssistantConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// InfluxConfig points at the historical sensor database.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// StoreConfig tunes the background refresh loop.
type StoreConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	DayStartHour    int           `yaml:"dayStartHour"`
}

// OccupancyConfig calibrates the CO₂ headcount model.
type OccupancyConfig struct {
	BaselineCO2  float64       `yaml:"baselineCo2"`
	EmissionRate float64       `yaml:"emissionRate"`
	Interval     time.Duration `yaml:"interval"`
}

// LabelsConfig selects persistence backends for the training-label
// pipeline. Empty DSN/addr/endpoint fall back to in-memory stand-ins.
type LabelsConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the label queue.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ArchiveConfig contains S3-compatible object storage settings for
// dataset archival.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSsl"`
	PublicURL string `yaml:"publicUrl"`
}

// AuthConfig guards the operator endpoints.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTrue(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HA_BASE_URL"); v != "" {
		cfg.HomeAssistant.BaseURL = v
	}
	if v := os.Getenv("HA_TOKEN"); v != "" {
		cfg.HomeAssistant.Token = v
	}
	if v := os.Getenv("HA_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HomeAssistant.Timeout = parsed
		}
	}
	if v := os.Getenv("INFLUX_URL"); v != "" {
		cfg.Influx.URL = v
	}
	if v := os.Getenv("INFLUX_TOKEN"); v != "" {
		cfg.Influx.Token = v
	}
	if v := os.Getenv("INFLUX_ORG"); v != "" {
		cfg.Influx.Org = v
	}
	if v := os.Getenv("INFLUX_BUCKET"); v != "" {
		cfg.Influx.Bucket = v
	}
	if v := os.Getenv("STORE_REFRESH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Store.RefreshInterval = parsed
		}
	}
	if v := os.Getenv("STORE_DAY_START_HOUR"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Store.DayStartHour = parsed
		}
	}
	if v := os.Getenv("OCCUPANCY_BASELINE_CO2"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Occupancy.BaselineCO2 = parsed
		}
	}
	if v := os.Getenv("OCCUPANCY_EMISSION_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Occupancy.EmissionRate = parsed
		}
	}
	if v := os.Getenv("OCCUPANCY_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Occupancy.Interval = parsed
		}
	}
	if v := os.Getenv("LABELS_POSTGRES_DSN"); v != "" {
		cfg.Labels.Postgres.DSN = v
	}
	if v := os.Getenv("LABELS_VALKEY_ENABLED"); v != "" {
		cfg.Labels.Valkey.Enabled = isTrue(v)
	}
	if v := os.Getenv("LABELS_VALKEY_ADDR"); v != "" {
		cfg.Labels.Valkey.Addr = v
	}
	if v := os.Getenv("LABELS_ARCHIVE_ENDPOINT"); v != "" {
		cfg.Labels.Archive.Endpoint = v
	}
	if v := os.Getenv("LABELS_ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Labels.Archive.AccessKey = v
	}
	if v := os.Getenv("LABELS_ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Labels.Archive.SecretKey = v
	}
	if v := os.Getenv("LABELS_ARCHIVE_BUCKET"); v != "" {
		cfg.Labels.Archive.Bucket = v
	}
	if v := os.Getenv("LABELS_ARCHIVE_USE_SSL"); v != "" {
		cfg.Labels.Archive.UseSSL = isTrue(v)
	}
	if v := os.Getenv("LABELS_ARCHIVE_PUBLIC_URL"); v != "" {
		cfg.Labels.Archive.PublicURL = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
		},
		HomeAssistant: HomeAssistantConfig{
			BaseURL: "http://homeassistant.local:8123",
			Timeout: 10 * time.Second,
		},
		Influx: InfluxConfig{
			URL:    "http://localhost:8086",
			Org:    "building",
			Bucket: "homeassistant",
		},
		Store: StoreConfig{
			RefreshInterval: time.Minute,
			DayStartHour:    0,
		},
		Occupancy: OccupancyConfig{
			BaselineCO2:  550,
			EmissionRate: 18,
			Interval:     time.Hour,
		},
		Labels: LabelsConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HomeAssistant.BaseURL == "" {
		return errors.New("homeAssistant.baseUrl cannot be empty")
	}
	if c.HomeAssistant.Timeout <= 0 {
		return errors.New("homeAssistant.timeout must be positive")
	}
	if c.Store.RefreshInterval <= 0 {
		return errors.New("store.refreshInterval must be positive")
	}
	if c.Store.DayStartHour < 0 || c.Store.DayStartHour > 23 {
		return errors.New("store.dayStartHour must be within 0..23")
	}
	if c.Occupancy.BaselineCO2 < 0 {
		return errors.New("occupancy.baselineCo2 cannot be negative")
	}
	if c.Occupancy.EmissionRate <= 0 {
		return errors.New("occupancy.emissionRate must be positive")
	}
	if c.Occupancy.Interval <= 0 {
		return errors.New("occupancy.interval must be positive")
	}
	if c.Labels.Valkey.Enabled && strings.TrimSpace(c.Labels.Valkey.Addr) == "" {
		return errors.New("labels.valkey.addr cannot be empty when the valkey queue is enabled")
	}
	if c.Labels.Archive.Endpoint != "" && c.Labels.Archive.Bucket == "" {
		return errors.New("labels.archive.bucket cannot be empty when an archive endpoint is set")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
