// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/arqv30/arqv-cli/internal/config"
)

// Default transport settings for talking to a single analysis service.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultMaxIdleConns          = 10
	DefaultMaxIdleConnsPerHost   = 4
	DefaultIdleConnTimeout       = 90 * time.Second
	requiredMinTLSVersion        = tls.VersionTLS12
	defaultTLSSessionCacheBuffer = 64
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	IgnoreTLSErrors bool
	TLSConfig       *tls.Config

	// RequestTimeout bounds a whole exchange. Zero means no limit: an analysis
	// can legitimately run for many minutes.
	RequestTimeout      time.Duration
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	ForceHTTP2 bool

	// BearerToken is attached to every request when non-empty.
	BearerToken string

	Logger *zap.Logger
}

// NewClientConfig derives a client configuration from the API settings.
func NewClientConfig(api config.APIConfig, logger *zap.Logger) *ClientConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientConfig{
		IgnoreTLSErrors:     api.IgnoreTLSErrors,
		RequestTimeout:      api.RequestTimeout,
		DialTimeout:         DefaultDialTimeout,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		ForceHTTP2:          api.ForceHTTP2,
		BearerToken:         api.Token,
		Logger:              logger.Named("httpclient"),
	}
}

// NewHTTPTransport creates the base transport described by the configuration.
func NewHTTPTransport(cfg *ClientConfig) *http.Transport {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: DefaultKeepAliveInterval,
	}
	tlsConfig := configureTLS(cfg)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   cfg.ForceHTTP2,
		// Decompression is handled by CompressionMiddleware so brotli is covered too.
		DisableCompression: true,
	}

	if cfg.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			cfg.Logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else if len(tlsConfig.NextProtos) == 0 {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}
	return transport
}

// NewClient builds the client used for every call to the analysis service:
// base transport, then response decompression, then bearer authentication.
func NewClient(cfg *ClientConfig) *http.Client {
	var rt http.RoundTripper = NewCompressionMiddleware(NewHTTPTransport(cfg))
	if cfg.BearerToken != "" {
		if err := CheckTokenExpiry(cfg.BearerToken, time.Now()); err != nil {
			cfg.Logger.Warn("Configured API token will be rejected", zap.Error(err))
		}
		rt = NewBearerTransport(rt, cfg.BearerToken)
	}
	return &http.Client{
		Transport: rt,
		Timeout:   cfg.RequestTimeout,
	}
}

// configureTLS returns a TLS configuration with a TLS 1.2 floor and a session cache.
func configureTLS(cfg *ClientConfig) *tls.Config {
	var tlsConfig *tls.Config
	if cfg.TLSConfig != nil {
		tlsConfig = cfg.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{}
	}
	if tlsConfig.MinVersion < requiredMinTLSVersion {
		tlsConfig.MinVersion = requiredMinTLSVersion
	}
	if tlsConfig.ClientSessionCache == nil {
		tlsConfig.ClientSessionCache = tls.NewLRUClientSessionCache(defaultTLSSessionCacheBuffer)
	}
	tlsConfig.InsecureSkipVerify = cfg.IgnoreTLSErrors
	return tlsConfig
}
