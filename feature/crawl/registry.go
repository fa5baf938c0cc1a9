package crawl

import (
	"ats-catalog/core/fetch"
	"ats-catalog/feature/ats"
	"ats-catalog/feature/ats/darwinbox"
	"ats-catalog/feature/ats/join"
	"ats-catalog/feature/ats/keka"
	"ats-catalog/feature/ats/oracle"

	"go.uber.org/zap"
)

// DefaultRegistry registers every built-in adapter on client.
func DefaultRegistry(client *fetch.Client, logger *zap.Logger) *ats.Registry {
	return ats.NewRegistry(
		darwinbox.New(client, logger),
		keka.New(client, logger),
		join.New(client, logger),
		oracle.New(client, logger),
	)
}
