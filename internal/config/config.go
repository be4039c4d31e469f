// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the CLI reads.
const EnvPrefix = "ARQV"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	API() APIConfig
	Progress() ProgressConfig
	Notify() NotifyConfig
	Export() ExportConfig
	Form() FormConfig
	Database() DatabaseConfig
	Server() ServerConfig
	Diagnostics() DiagnosticsConfig

	// Setters for values that command line flags override.
	SetAPIBaseURL(string)
	SetExportOutputDir(string)
	SetExportDocumentFormat(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	APICfg         APIConfig         `mapstructure:"api" yaml:"api"`
	ProgressCfg    ProgressConfig    `mapstructure:"progress" yaml:"progress"`
	NotifyCfg      NotifyConfig      `mapstructure:"notify" yaml:"notify"`
	ExportCfg      ExportConfig      `mapstructure:"export" yaml:"export"`
	FormCfg        FormConfig        `mapstructure:"form" yaml:"form"`
	DatabaseCfg    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	ServerCfg      ServerConfig      `mapstructure:"server" yaml:"server"`
	DiagnosticsCfg DiagnosticsConfig `mapstructure:"diagnostics" yaml:"diagnostics"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) API() APIConfig                 { return c.APICfg }
func (c *Config) Progress() ProgressConfig       { return c.ProgressCfg }
func (c *Config) Notify() NotifyConfig           { return c.NotifyCfg }
func (c *Config) Export() ExportConfig           { return c.ExportCfg }
func (c *Config) Form() FormConfig               { return c.FormCfg }
func (c *Config) Database() DatabaseConfig       { return c.DatabaseCfg }
func (c *Config) Server() ServerConfig           { return c.ServerCfg }
func (c *Config) Diagnostics() DiagnosticsConfig { return c.DiagnosticsCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetAPIBaseURL(u string)           { c.APICfg.BaseURL = u }
func (c *Config) SetExportOutputDir(d string)      { c.ExportCfg.OutputDir = d }
func (c *Config) SetExportDocumentFormat(f string) { c.ExportCfg.DocumentFormat = f }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// APIConfig describes how to reach the remote analysis service.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Token is sent as a bearer credential when set.
	Token string `mapstructure:"token" yaml:"-"`
	// RequestTimeout of zero leaves requests unbounded.
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ForceHTTP2      bool          `mapstructure:"force_http2" yaml:"force_http2"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// ProgressConfig holds the display constants of the simulated progress bar.
type ProgressConfig struct {
	Interval     time.Duration `mapstructure:"interval" yaml:"interval"`
	MaxIncrement float64       `mapstructure:"max_increment" yaml:"max_increment"`
	Ceiling      float64       `mapstructure:"ceiling" yaml:"ceiling"`
	BucketWidth  float64       `mapstructure:"bucket_width" yaml:"bucket_width"`
	// AssumedRate is in percent per second and only feeds the remaining time estimate.
	AssumedRate float64 `mapstructure:"assumed_rate" yaml:"assumed_rate"`
}

type NotifyConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ExportConfig controls where and how results are saved.
type ExportConfig struct {
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir"`
	DocumentFormat  string `mapstructure:"document_format" yaml:"document_format"`
	VerifyRoundTrip bool   `mapstructure:"verify_round_trip" yaml:"verify_round_trip"`
}

// FormConfig holds the admission rule applied before submission.
type FormConfig struct {
	SegmentField     string `mapstructure:"segment_field" yaml:"segment_field"`
	MinSegmentLength int    `mapstructure:"min_segment_length" yaml:"min_segment_length"`
}

// DatabaseConfig holds the database connection details.
// An empty URL disables the result archive.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// DiagnosticsConfig holds the inputs of the operator probes.
type DiagnosticsConfig struct {
	ProbeRate     float64 `mapstructure:"probe_rate" yaml:"probe_rate"`
	ExtractionURL string  `mapstructure:"extraction_url" yaml:"extraction_url"`
	SearchQuery   string  `mapstructure:"search_query" yaml:"search_query"`
}

// Supported direct export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NewDefaultConfig creates a new configuration object populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static, so a failure here is a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults centralizes every default value.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "arqv")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- API --
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.request_timeout", "0s")
	v.SetDefault("api.force_http2", false)
	v.SetDefault("api.ignore_tls_errors", false)

	// -- Progress --
	v.SetDefault("progress.interval", "2s")
	v.SetDefault("progress.max_increment", 3.0)
	v.SetDefault("progress.ceiling", 95.0)
	v.SetDefault("progress.bucket_width", 8.0)
	v.SetDefault("progress.assumed_rate", 2.0)

	// -- Notify --
	v.SetDefault("notify.ttl", "5s")

	// -- Export --
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.document_format", FormatJSON)
	v.SetDefault("export.verify_round_trip", true)

	// -- Form --
	v.SetDefault("form.segment_field", "segmento")
	v.SetDefault("form.min_segment_length", 3)

	// -- Database --
	v.SetDefault("database.url", "")

	// -- Server --
	v.SetDefault("server.listen", "127.0.0.1:8088")

	// -- Diagnostics --
	v.SetDefault("diagnostics.probe_rate", 2.0)
	v.SetDefault("diagnostics.extraction_url", "https://g1.globo.com/tecnologia/")
	v.SetDefault("diagnostics.search_query", "mercado digital Brasil 2024")
}

// NewConfigFromViper unmarshals and validates a configuration from a populated viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("api.token", EnvPrefix+"_API_TOKEN")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APICfg.BaseURL) == "" {
		return fmt.Errorf("api.base_url is a required configuration field")
	}
	if c.APICfg.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout must not be negative")
	}
	if err := c.ProgressCfg.Validate(); err != nil {
		return err
	}
	if c.NotifyCfg.TTL <= 0 {
		return fmt.Errorf("notify.ttl must be a positive duration")
	}
	switch c.ExportCfg.DocumentFormat {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("export.document_format must be %q or %q, got %q", FormatJSON, FormatYAML, c.ExportCfg.DocumentFormat)
	}
	if c.FormCfg.SegmentField == "" {
		return fmt.Errorf("form.segment_field is a required configuration field")
	}
	if c.FormCfg.MinSegmentLength < 0 {
		return fmt.Errorf("form.min_segment_length must not be negative")
	}
	if c.DiagnosticsCfg.ProbeRate <= 0 {
		return fmt.Errorf("diagnostics.probe_rate must be positive")
	}
	return nil
}

// Validate checks the progress display constants.
func (p ProgressConfig) Validate() error {
	if p.Interval <= 0 {
		return fmt.Errorf("progress.interval must be a positive duration")
	}
	if p.MaxIncrement <= 0 {
		return fmt.Errorf("progress.max_increment must be positive")
	}
	if p.Ceiling <= 0 || p.Ceiling >= 100 {
		return fmt.Errorf("progress.ceiling must be below 100 and above 0")
	}
	if p.BucketWidth <= 0 {
		return fmt.Errorf("progress.bucket_width must be positive")
	}
	if p.AssumedRate <= 0 {
		return fmt.Errorf("progress.assumed_rate must be positive")
	}
	return nil
}
