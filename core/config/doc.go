// Package config provides configuration management for the catalog service.
//
// It utilizes Viper for loading configuration from an optional config.yml,
// an optional .env file (loaded through godotenv) and environment variables,
// in increasing precedence. Defaults live next to each
// setting as `default:"..."` struct tags and are registered by reflection, so
// every key is also reachable through its environment variable
// (DATABASE_DRIVER -> database.driver).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, timeouts
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Log: level and format
//   - Locker: scope lock driver (local, file, redis)
//   - Scheduler: cron expression, timezone, on/off switch
//   - Fetch: ATS HTTP client timeouts, rate limits and retries
//   - Crawl: sources file, concurrency, snapshot archive
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Scheduler.Cron)
package config
