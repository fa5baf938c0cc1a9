package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ats-catalog/core/locker"

	"go.uber.org/zap"
)

// ErrInvalidScope is returned when a scope lacks its ATS or company.
var ErrInvalidScope = errors.New("scope requires both ats type and company name")

// Engine applies fetched batches to the catalog.
type Engine struct {
	store  Store
	locker Locker
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLocker replaces the default in-process scope lock.
func WithLocker(l Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		locker: locker.NewLocal(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile computes the new/updated/closed delta of batch against the catalog
// for scope and applies it in a single transaction.
//
// A batch with no valid record is a no-op: an empty fetch never closes anything.
func (e *Engine) Reconcile(ctx context.Context, scope Scope, batch []NormalizedJob) (Counts, error) {
	if scope.SourceSystem == "" || scope.CompanyName == "" {
		return Counts{}, ErrInvalidScope
	}

	log := e.logger.With(zap.String("ats", scope.SourceSystem), zap.String("company", scope.CompanyName))

	valid := e.prepare(log, scope, batch)
	if len(valid) == 0 {
		log.Info("Empty batch, catalog left untouched", zap.Int("received", len(batch)))
		return Counts{}, nil
	}

	unlock, err := e.locker.Lock(ctx, scope.Key())
	if err != nil {
		return Counts{}, fmt.Errorf("lock scope %s: %w", scope, err)
	}
	defer unlock()

	now := e.now().UTC()

	var counts Counts
	err = e.store.Transaction(ctx, func(tx Tx) error {
		c, err := e.apply(ctx, log, tx, scope, valid, now)
		if err != nil {
			return err
		}
		counts = c
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("reconcile %s: %w", scope, err)
	}

	log.Info("Reconciled batch",
		zap.Int("received", len(batch)),
		zap.Int("valid", len(valid)),
		zap.Int("new", counts.New),
		zap.Int("updated", counts.Updated),
		zap.Int("closed", counts.Closed),
	)
	return counts, nil
}

// prepare drops malformed and duplicate records. It never fails.
func (e *Engine) prepare(log *zap.Logger, scope Scope, batch []NormalizedJob) []NormalizedJob {
	out := make([]NormalizedJob, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))

	for i, job := range batch {
		if strings.TrimSpace(job.ExternalID) == "" {
			log.Warn("Dropping job without external id", zap.Int("index", i), zap.String("title", job.Title))
			continue
		}
		if job.SourceSystem == "" {
			job.SourceSystem = scope.SourceSystem
		}
		if job.CompanyName == "" {
			job.CompanyName = scope.CompanyName
		}
		if job.SourceSystem != scope.SourceSystem || job.CompanyName != scope.CompanyName {
			log.Warn("Dropping job outside run scope",
				zap.String("external_id", job.ExternalID),
				zap.String("job_ats", job.SourceSystem),
				zap.String("job_company", job.CompanyName),
			)
			continue
		}
		if _, dup := seen[job.ExternalID]; dup {
			log.Warn("Dropping duplicate job in batch", zap.String("external_id", job.ExternalID))
			continue
		}
		seen[job.ExternalID] = struct{}{}
		out = append(out, job)
	}
	return out
}

func (e *Engine) apply(ctx context.Context, log *zap.Logger, tx Tx, scope Scope, batch []NormalizedJob, now time.Time) (Counts, error) {
	var counts Counts

	ids := make([]string, len(batch))
	for i, job := range batch {
		ids[i] = job.ExternalID
	}

	existing, err := tx.FindByKeys(ctx, scope.SourceSystem, ids)
	if err != nil {
		return counts, fmt.Errorf("load existing jobs: %w", err)
	}

	present := make(map[string]struct{}, len(batch))
	for _, job := range batch {
		present[job.ExternalID] = struct{}{}

		entry, ok := existing[job.ExternalID]
		if !ok {
			entry = newEntry(job, now)
			inserted, err := tx.Insert(ctx, entry)
			if err != nil {
				return counts, fmt.Errorf("insert job %s: %w", job.ExternalID, err)
			}
			if inserted {
				counts.New++
				continue
			}

			// Someone else inserted the same identity first; treat it as a sighting.
			found, err := tx.FindByKeys(ctx, scope.SourceSystem, []string{job.ExternalID})
			if err != nil {
				return counts, fmt.Errorf("reload job %s: %w", job.ExternalID, err)
			}
			if entry = conflicting(found, job.ExternalID); entry == nil {
				return counts, fmt.Errorf("job %s conflicted on insert but cannot be found", job.ExternalID)
			}
		}

		if entry.CompanyName != scope.CompanyName {
			log.Warn("Skipping job owned by another company",
				zap.String("external_id", job.ExternalID),
				zap.String("owner", entry.CompanyName),
			)
			continue
		}

		if refresh(log, entry, job, now) {
			counts.Updated++
		}
		if err := tx.Update(ctx, entry); err != nil {
			return counts, fmt.Errorf("update job %s: %w", job.ExternalID, err)
		}
	}

	closed, err := tx.CloseMissing(ctx, scope, present, now)
	if err != nil {
		return counts, fmt.Errorf("close missing jobs: %w", err)
	}
	counts.Closed = closed

	return counts, nil
}

func newEntry(job NormalizedJob, now time.Time) *CatalogEntry {
	return &CatalogEntry{
		NormalizedJob: job,
		Fingerprint:   Fingerprint(job).String(),
		IsActive:      true,
		FirstSeenAt:   now,
		LastSeenAt:    now,
	}
}

// conflicting returns the entry that blocked inserting id. Stores with a
// case-insensitive key report it under its stored spelling.
func conflicting(found map[string]*CatalogEntry, id string) *CatalogEntry {
	if e, ok := found[id]; ok {
		return e
	}
	for stored, e := range found {
		if strings.EqualFold(stored, id) {
			return e
		}
	}
	return nil
}

// refresh applies a re-sighting to entry and reports whether it counts as an update.
// Reactivation sets is_active and clears closed; ClosedAt is kept as history.
func refresh(log *zap.Logger, entry *CatalogEntry, job NormalizedJob, now time.Time) bool {
	changed := ChangedFields(entry.NormalizedJob, job)
	updated := len(changed) > 0

	if !entry.IsActive || entry.Closed {
		entry.IsActive = true
		entry.Closed = false
		updated = true
		log.Debug("Reactivating job", zap.String("external_id", job.ExternalID))
	}
	if len(changed) > 0 {
		log.Debug("Job changed", zap.String("external_id", job.ExternalID), zap.Strings("fields", changed))
	}

	entry.NormalizedJob = job
	entry.Fingerprint = Fingerprint(job).String()
	entry.LastSeenAt = now
	return updated
}
