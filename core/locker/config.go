package locker

// Config holds configuration for the scope locker.
type Config struct {
	// Driver selects the implementation (local, file, redis).
	Driver string `mapstructure:"driver" default:"local"`
	// Dir is where the file driver keeps its lock files.
	Dir string `mapstructure:"dir" default:".locks"`
	// RedisURL is the connection URL for the redis driver.
	RedisURL string `mapstructure:"redis_url" default:"redis://localhost:6379/0"`
	// Prefix namespaces redis keys.
	Prefix string `mapstructure:"prefix" default:"ats-catalog:lock:"`
	// TTLSeconds bounds how long a redis lease survives a crashed holder.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"600"`
	// RetryMillis is the polling interval while waiting on a held lock.
	RetryMillis int `mapstructure:"retry_millis" default:"200"`
}
