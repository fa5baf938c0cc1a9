// Package server holds the HTTP server configuration.
//
// The main entry point handles startup and shutdown; this package only defines
// the settings and the small helpers that turn them into listen addresses and
// timeouts.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key protecting every route
// except /health, and the read/write timeouts. Write timeouts default high
// because the on-demand crawl endpoints block until the ATS responds.
package server
