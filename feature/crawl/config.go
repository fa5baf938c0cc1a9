package crawl

import "time"

// Config holds orchestrator settings.
type Config struct {
	// SourcesFile is the YAML file listing the careers sites to crawl.
	SourcesFile string `mapstructure:"sources_file" default:"sources.yml"`
	// Concurrency is the number of sources crawled at the same time.
	Concurrency int `mapstructure:"concurrency" default:"1"`
	// Snapshots enables the normalized batch archive in object storage.
	Snapshots bool `mapstructure:"snapshots" default:"false"`
	// TimeoutSeconds bounds a single source run, fetch and reconcile included.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"600"`
}

// Timeout returns the per-source run timeout. Zero means none.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
