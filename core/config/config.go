package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"ats-catalog/core/database"
	"ats-catalog/core/fetch"
	"ats-catalog/core/locker"
	"ats-catalog/core/logger"
	"ats-catalog/core/scheduler"
	"ats-catalog/core/server"
	"ats-catalog/core/storage"
	"ats-catalog/feature/crawl"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration, one section per package.
type Config struct {
	Server    server.Config    `mapstructure:"server"`
	Storage   storage.Config   `mapstructure:"storage"`
	Log       logger.Config    `mapstructure:"log"`
	Database  database.Config  `mapstructure:"database"`
	Locker    locker.Config    `mapstructure:"locker"`
	Scheduler scheduler.Config `mapstructure:"scheduler"`
	Fetch     fetch.Config     `mapstructure:"fetch"`
	Crawl     crawl.Config     `mapstructure:"crawl"`
}

// LoadConfig resolves configuration from, in increasing precedence, struct
// defaults, an optional config.yml in path, an optional .env in path and the
// process environment.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would only fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "", "mysql", "postgres", "postgresql", "pg", "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	switch strings.ToLower(strings.TrimSpace(c.Locker.Driver)) {
	case "", "local", "file", "redis":
	default:
		errs = append(errs, fmt.Errorf("locker.driver %q is not supported", c.Locker.Driver))
	}
	if c.Crawl.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("crawl.concurrency must not be negative"))
	}
	if c.Scheduler.Enabled && strings.TrimSpace(c.Scheduler.Cron) == "" {
		errs = append(errs, fmt.Errorf("scheduler.cron is required when the scheduler is enabled"))
	}
	return errors.Join(errs...)
}

// registerDefaults walks t and sets every mapstructure key to its default tag.
// Keys without a default are still registered so AutomaticEnv can bind them.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
