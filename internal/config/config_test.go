// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "http://localhost:5000", cfg.API().BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API().RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Progress().Interval)
	assert.Equal(t, 3.0, cfg.Progress().MaxIncrement)
	assert.Equal(t, 95.0, cfg.Progress().Ceiling)
	assert.Equal(t, 8.0, cfg.Progress().BucketWidth)
	assert.Equal(t, 2.0, cfg.Progress().AssumedRate)
	assert.Equal(t, 5*time.Second, cfg.Notify().TTL)
	assert.Equal(t, FormatJSON, cfg.Export().DocumentFormat)
	assert.True(t, cfg.Export().VerifyRoundTrip)
	assert.Equal(t, "segmento", cfg.Form().SegmentField)
	assert.Equal(t, 3, cfg.Form().MinSegmentLength)
	assert.Empty(t, cfg.Database().URL)
	assert.Equal(t, "127.0.0.1:8088", cfg.Server().Listen)

	assert.NoError(t, cfg.Validate(), "defaults must always validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Empty base URL", func(c *Config) { c.APICfg.BaseURL = " " }, "api.base_url is a required"},
		{"Negative timeout", func(c *Config) { c.APICfg.RequestTimeout = -time.Second }, "api.request_timeout"},
		{"Ceiling at 100", func(c *Config) { c.ProgressCfg.Ceiling = 100 }, "progress.ceiling must be below 100"},
		{"Zero interval", func(c *Config) { c.ProgressCfg.Interval = 0 }, "progress.interval"},
		{"Zero bucket width", func(c *Config) { c.ProgressCfg.BucketWidth = 0 }, "progress.bucket_width"},
		{"Zero rate", func(c *Config) { c.ProgressCfg.AssumedRate = 0 }, "progress.assumed_rate"},
		{"Zero TTL", func(c *Config) { c.NotifyCfg.TTL = 0 }, "notify.ttl"},
		{"Unknown format", func(c *Config) { c.ExportCfg.DocumentFormat = "xml" }, "export.document_format"},
		{"No segment field", func(c *Config) { c.FormCfg.SegmentField = "" }, "form.segment_field"},
		{"Zero probe rate", func(c *Config) { c.DiagnosticsCfg.ProbeRate = 0 }, "diagnostics.probe_rate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	var iface Interface = cfg

	iface.SetAPIBaseURL("https://arqv.example")
	iface.SetExportOutputDir("~/exports")
	iface.SetExportDocumentFormat(FormatYAML)

	assert.Equal(t, "https://arqv.example", cfg.API().BaseURL)
	assert.Equal(t, "~/exports", cfg.Export().OutputDir)
	assert.Equal(t, FormatYAML, cfg.Export().DocumentFormat)
}

// -- Loading Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("File Values Override Defaults", func(t *testing.T) {
		yamlBytes := []byte(`
api:
  base_url: "https://remote.example"
  request_timeout: 90s
progress:
  interval: 500ms
  ceiling: 90
export:
  document_format: yaml
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "https://remote.example", cfg.API().BaseURL)
		assert.Equal(t, 90*time.Second, cfg.API().RequestTimeout)
		assert.Equal(t, 500*time.Millisecond, cfg.Progress().Interval)
		assert.Equal(t, 90.0, cfg.Progress().Ceiling)
		assert.Equal(t, 8.0, cfg.Progress().BucketWidth, "unset keys keep their default")
		assert.Equal(t, FormatYAML, cfg.Export().DocumentFormat)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("progress.ceiling", 120)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "progress.ceiling")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("database:\n  url: \"postgres://configfile/db\"\n")))

		t.Setenv("ARQV_API_TOKEN", "env-token")
		t.Setenv("ARQV_DATABASE_URL", "postgres://envvar/db")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.API().Token)
		assert.Equal(t, "postgres://envvar/db", cfg.Database().URL)
	})
}
