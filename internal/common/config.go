package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Auth        AuthConfig     `toml:"auth"`
	LLM         LLMConfig      `toml:"llm"`
	Content     ContentConfig  `toml:"content"`
	Drive       DriveConfig    `toml:"drive"`
	Research    ResearchConfig `toml:"research"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// AuthConfig configures credential renewal against the identity provider
type AuthConfig struct {
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	TokenURL        string `toml:"token_url" validate:"required,url"`
	StalenessMargin string `toml:"staleness_margin"` // e.g. "5m" - renew when expiry is closer than this
}

// LLMConfig configures the Gemini enrichment service
type LLMConfig struct {
	GoogleAPIKey string  `toml:"google_api_key"`
	Model        string  `toml:"model"`
	Timeout      string  `toml:"timeout"` // e.g. "5m"
	Temperature  float64 `toml:"temperature"`
}

// ContentConfig configures URL fetching and text extraction
type ContentConfig struct {
	UserAgent      string `toml:"user_agent"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "30s"
	MaxBodySize    int    `toml:"max_body_size"`   // Maximum response body size in bytes
	RatePerSecond  int    `toml:"rate_per_second"` // Outbound fetch rate limit
	RateBurst      int    `toml:"rate_burst"`
}

// DriveConfig configures the artifact store endpoints. Overridable so tests
// can point at a local server.
type DriveConfig struct {
	APIBaseURL    string `toml:"api_base_url" validate:"required,url"`
	UploadBaseURL string `toml:"upload_base_url" validate:"required,url"`
}

// ResearchConfig configures the orchestration core
type ResearchConfig struct {
	Workers            int    `toml:"workers" validate:"min=1"`          // Phase worker pool size
	ItemConcurrency    int    `toml:"item_concurrency" validate:"min=1"` // Fan-out limit within a phase
	PhaseTimeout       string `toml:"phase_timeout"`                     // End-to-end bound per phase, e.g. "10m"
	MaxAttempts        int    `toml:"max_attempts" validate:"min=1"`     // Retry budget per work item
	InitialBackoff     string `toml:"initial_backoff"`                   // e.g. "1s"
	MaxBackoff         string `toml:"max_backoff"`                       // e.g. "30s"
	SnapshotRetention  string `toml:"snapshot_retention"`                // Keep terminal snapshots this long, e.g. "24h"
	RetentionSchedule  string `toml:"retention_schedule"`                // Cron schedule for the retention sweep
}

// NewDefaultConfig returns the default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/vestigo",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Auth: AuthConfig{
			TokenURL:        "https://oauth2.googleapis.com/token",
			StalenessMargin: "5m",
		},
		LLM: LLMConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Content: ContentConfig{
			UserAgent:      "vestigo/1.0 (+https://github.com/ternarybob/vestigo)",
			RequestTimeout: "30s",
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			RatePerSecond:  2,
			RateBurst:      4,
		},
		Drive: DriveConfig{
			APIBaseURL:    "https://www.googleapis.com/drive/v3",
			UploadBaseURL: "https://www.googleapis.com/upload/drive/v3",
		},
		Research: ResearchConfig{
			Workers:           4,
			ItemConcurrency:   4,
			PhaseTimeout:      "10m",
			MaxAttempts:       3,
			InitialBackoff:    "1s",
			MaxBackoff:        "30s",
			SnapshotRetention: "24h",
			RetentionSchedule: "0 */30 * * * *", // Every 30 minutes
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path skips the file layer.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints and duration fields
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"auth.staleness_margin":       c.Auth.StalenessMargin,
		"llm.timeout":                 c.LLM.Timeout,
		"content.request_timeout":     c.Content.RequestTimeout,
		"research.phase_timeout":      c.Research.PhaseTimeout,
		"research.initial_backoff":    c.Research.InitialBackoff,
		"research.max_backoff":        c.Research.MaxBackoff,
		"research.snapshot_retention": c.Research.SnapshotRetention,
	}
	for field, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", field, value)
		}
	}

	return nil
}

// MustDuration parses a duration string that Validate has already accepted
func MustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("invalid duration %q passed validation", value))
	}
	return d
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VESTIGO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VESTIGO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VESTIGO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("VESTIGO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("VESTIGO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("VESTIGO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Identity provider
	if clientID := os.Getenv("VESTIGO_AUTH_CLIENT_ID"); clientID != "" {
		config.Auth.ClientID = clientID
	}
	if clientSecret := os.Getenv("VESTIGO_AUTH_CLIENT_SECRET"); clientSecret != "" {
		config.Auth.ClientSecret = clientSecret
	}

	// LLM configuration
	if apiKey := os.Getenv("VESTIGO_GOOGLE_API_KEY"); apiKey != "" {
		config.LLM.GoogleAPIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.LLM.GoogleAPIKey = apiKey
	}
	if model := os.Getenv("VESTIGO_LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}

	// Research tuning
	if workers := os.Getenv("VESTIGO_RESEARCH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Research.Workers = w
		}
	}
	if concurrency := os.Getenv("VESTIGO_RESEARCH_ITEM_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Research.ItemConcurrency = c
		}
	}
	if timeout := os.Getenv("VESTIGO_RESEARCH_PHASE_TIMEOUT"); timeout != "" {
		config.Research.PhaseTimeout = timeout
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
