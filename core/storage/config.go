package storage

import (
	"strings"
	"time"
)

// Config selects the S3-compatible bucket crawl snapshots are archived in.
type Config struct {
	// Endpoint is host:port of the service. An http:// or https:// prefix is
	// accepted; https forces TLS.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL enables TLS for a bare host:port endpoint.
	UseSSL bool   `mapstructure:"use_ssl" default:"false"`
	Bucket string `mapstructure:"bucket" default:"ats-snapshots"`
	// Region is passed to bucket creation. Empty lets the server decide.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS and waiting for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Host returns the endpoint without scheme and whether TLS should be used.
func (c Config) Host() (string, bool) {
	host := strings.TrimSpace(c.Endpoint)
	switch {
	case strings.HasPrefix(host, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(host, "https://"), "/"), true
	case strings.HasPrefix(host, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(host, "http://"), "/"), c.UseSSL
	default:
		return strings.TrimSuffix(host, "/"), c.UseSSL
	}
}

// Timeout returns the connection timeout, 30s when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
