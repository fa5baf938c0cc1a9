package scheduler

// Config holds configuration for the periodic crawl trigger.
type Config struct {
	// Enabled turns the scheduler on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Cron is a standard five-field cron expression.
	Cron string `mapstructure:"cron" default:"0 9 * * *"`
	// Timezone is the IANA zone the expression is evaluated in.
	Timezone string `mapstructure:"timezone" default:"Asia/Kolkata"`
	// RunOnStart fires the job once right after Start.
	RunOnStart bool `mapstructure:"run_on_start" default:"false"`
}
