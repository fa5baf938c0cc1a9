package reconcile

import (
	"context"
	"time"
)

// Store opens transactions on the catalog.
type Store interface {
	// Transaction runs fn atomically. Any error returned by fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of catalog operations available inside a transaction.
type Tx interface {
	// FindByKeys loads entries of source whose external ids are in ids, keyed by external id.
	FindByKeys(ctx context.Context, source string, ids []string) (map[string]*CatalogEntry, error)
	// Insert creates e. It reports false without error when the identity already exists.
	Insert(ctx context.Context, e *CatalogEntry) (bool, error)
	// Update persists every field of e.
	Update(ctx context.Context, e *CatalogEntry) error
	// CloseMissing marks active entries of scope whose ids are not in present as closed.
	CloseMissing(ctx context.Context, scope Scope, present map[string]struct{}, now time.Time) (int, error)
}

// Locker serializes work on a key across callers.
type Locker interface {
	// Lock blocks until the key is held or ctx is done.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
