package fetch

// Config holds settings for outbound HTTP requests to ATS hosts.
type Config struct {
	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequestsPerSecond is the per-host rate limit.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"2"`
	// Burst is the per-host burst size.
	Burst int `mapstructure:"burst" default:"2"`
	// Retries is how many times a 429, 5xx or transport error is retried.
	Retries int `mapstructure:"retries" default:"2"`
	// BackoffMillis is the base backoff; attempt n waits n+1 times this.
	BackoffMillis int `mapstructure:"backoff_millis" default:"800"`
	// UserAgent is sent on every request.
	UserAgent string `mapstructure:"user_agent" default:"Mozilla/5.0 (compatible; ats-catalog/1.0)"`
}
