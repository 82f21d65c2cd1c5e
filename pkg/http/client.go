package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// ClientConfig holds HTTP client configuration.
type ClientConfig struct {
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	ExpectContinueTimeout time.Duration

	// DisableKeepAlives forces a fresh connection per request. The
	// gateway transport uses this so nothing is shared between unrelated
	// payment attempts.
	DisableKeepAlives bool

	DisableCompression bool
	InsecureSkipVerify bool
	MinTLSVersion      uint16
}

// GatewayClientConfig returns the config for calls to the Garanti
// virtual POS. Sessions are one-shot: a payment attempt opens its own
// connection and closes it when done.
func GatewayClientConfig() *ClientConfig {
	return &ClientConfig{
		DialTimeout:           5 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableKeepAlives: true,

		// Responses are form-encoded HTML or small XML documents.
		DisableCompression: true,

		InsecureSkipVerify: false,
		MinTLSVersion:      tls.VersionTLS12,
	}
}

// NewClient creates an HTTP client with the given configuration and an
// overall request timeout.
func NewClient(cfg *ClientConfig, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: cfg.DialTimeout,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,

		DisableKeepAlives:  cfg.DisableKeepAlives,
		DisableCompression: cfg.DisableCompression,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			MinVersion:         cfg.MinTLSVersion,
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
