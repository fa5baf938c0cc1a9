package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (json, console).
	Format string `mapstructure:"format" default:"json"`
	// Service, when set, is attached to every entry as the service field.
	Service string `mapstructure:"service" default:"ats-catalog"`
}
