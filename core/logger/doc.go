// Package logger builds the zap logger shared by the server, the crawl
// pipeline and the commands.
//
// Entries use the keys time, level and message with ISO8601 timestamps.
// Level "debug" switches to zap's development preset. Format "console" gives
// colored, human readable output; the default is JSON.
//
// Request handlers call WithRayID so every line of a request carries the id
// set by the rayid middleware:
//
//	l := logger.WithRayID(h.logger, c)
//	l.Error("Run failed", zap.Error(err))
package logger
