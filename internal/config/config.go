package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apierrors "advisingdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Upload        UploadConfig        `yaml:"upload" envconfig:"UPLOAD"`
	Analysis      AnalysisConfig      `yaml:"analysis" envconfig:"ANALYSIS"`
	Charts        ChartConfig         `yaml:"charts" envconfig:"CHARTS"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// UploadConfig bounds what the in-memory dataset store accepts and keeps.
type UploadConfig struct {
	MaxBytes      int64         `yaml:"max_bytes" envconfig:"MAX_BYTES"`
	MaxDatasets   int           `yaml:"max_datasets" envconfig:"MAX_DATASETS"`
	DatasetTTL    time.Duration `yaml:"dataset_ttl" envconfig:"DATASET_TTL"`
	JanitorPeriod time.Duration `yaml:"janitor_period" envconfig:"JANITOR_PERIOD"`
}

// AnalysisConfig tunes the text and preview sections of the dashboards.
type AnalysisConfig struct {
	CategoriesFile string   `yaml:"categories_file" envconfig:"CATEGORIES_FILE"`
	ExtraStopwords []string `yaml:"extra_stopwords" envconfig:"EXTRA_STOPWORDS"`
	TopWords       int      `yaml:"top_words" envconfig:"TOP_WORDS"`
	CloudWords     int      `yaml:"cloud_words" envconfig:"CLOUD_WORDS"`
	MinWordLength  int      `yaml:"min_word_length" envconfig:"MIN_WORD_LENGTH"`
	PreviewRows    int      `yaml:"preview_rows" envconfig:"PREVIEW_ROWS"`
}

// ChartConfig holds chart dimensions in inches.
type ChartConfig struct {
	Width  float64 `yaml:"width" envconfig:"WIDTH"`
	Height float64 `yaml:"height" envconfig:"HEIGHT"`
	Format string  `yaml:"format" envconfig:"FORMAT"`
}

// ObservabilityConfig toggles OpenTelemetry tracing and metrics.
type ObservabilityConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRate    float64 `yaml:"sample_rate" envconfig:"SAMPLE_RATE"`
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment. An empty path falls back to ADVDASH_CONFIG and then to the
// usual file locations; a missing file is not an error unless it was named
// explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigEnvVar)
		explicit = path != ""
	}
	if !explicit {
		path = getConfigFilePath()
	}

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, apierrors.NewConfigError("failed to load config from file", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apierrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apierrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg. Keys absent
// from the document keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	if c.Upload.MaxDatasets <= 0 {
		return fmt.Errorf("upload max datasets must be positive")
	}

	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}

	switch c.Charts.Format {
	case "png", "svg":
	default:
		return fmt.Errorf("unsupported chart format: %q", c.Charts.Format)
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Format {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	if c.Analysis.TopWords <= 0 {
		c.Analysis.TopWords = DefaultTopWords
	}
	if c.Analysis.CloudWords <= 0 {
		c.Analysis.CloudWords = DefaultCloudWords
	}
	if c.Analysis.PreviewRows <= 0 {
		c.Analysis.PreviewRows = DefaultPreviewRows
	}
	if c.Analysis.MinWordLength < 0 {
		c.Analysis.MinWordLength = DefaultMinWordLen
	}

	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("observability sample rate must be within [0, 1]")
	}

	return nil
}

// getConfigFilePath returns the first config file found in the usual locations.
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			MaxBytes:      DefaultMaxUploadBytes,
			MaxDatasets:   DefaultMaxDatasets,
			DatasetTTL:    DefaultDatasetTTL,
			JanitorPeriod: DefaultJanitorPeriod,
		},
		Analysis: AnalysisConfig{
			TopWords:      DefaultTopWords,
			CloudWords:    DefaultCloudWords,
			MinWordLength: DefaultMinWordLen,
			PreviewRows:   DefaultPreviewRows,
		},
		Charts: ChartConfig{
			Width:  10,
			Height: 5,
			Format: "png",
		},
		Observability: ObservabilityConfig{
			ServiceName:   "advisingdash",
			Environment:   "development",
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "none",
			SampleRate:    1,
		},
	}
}
