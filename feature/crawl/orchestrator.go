package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ats-catalog/core/reconcile"
	"ats-catalog/feature/ats"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reconciler applies a normalized batch to the catalog.
type Reconciler interface {
	Reconcile(ctx context.Context, scope reconcile.Scope, batch []reconcile.NormalizedJob) (reconcile.Counts, error)
}

// FetchError marks a failure talking to the upstream ATS.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch: " + e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }

// RunResult reports one source run.
type RunResult struct {
	RunID    uint   `json:"run_id,omitempty"`
	Adapter  string `json:"adapter"`
	Company  string `json:"company"`
	Endpoint string `json:"endpoint"`
	Strategy string `json:"strategy,omitempty"`
	Fetched  int    `json:"fetched"`
	New      int    `json:"new"`
	Updated  int    `json:"updated"`
	Closed   int    `json:"closed"`
	Error    string `json:"error,omitempty"`
}

// Orchestrator runs sources through fetch, normalize and reconcile under the run ledger.
type Orchestrator struct {
	registry *ats.Registry
	engine   Reconciler
	ledger   reconcile.Ledger
	archive  *Archive
	cfg      Config
	logger   *zap.Logger

	mu      sync.RWMutex
	sources []ats.Source
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithArchive enables snapshot archiving.
func WithArchive(a *Archive) Option {
	return func(o *Orchestrator) { o.archive = a }
}

// WithSources sets the sources RunAll iterates.
func WithSources(sources []ats.Source) Option {
	return func(o *Orchestrator) { o.sources = sources }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator wires the pipeline.
func NewOrchestrator(registry *ats.Registry, engine Reconciler, ledger reconcile.Ledger, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		engine:   engine,
		ledger:   ledger,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sources returns the configured sources.
func (o *Orchestrator) Sources() []ats.Source {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]ats.Source(nil), o.sources...)
}

// Archive returns the snapshot archive, or nil when snapshots are disabled.
func (o *Orchestrator) Archive() *Archive {
	return o.archive
}

// SetSources replaces the configured sources.
func (o *Orchestrator) SetSources(sources []ats.Source) {
	o.mu.Lock()
	o.sources = sources
	o.mu.Unlock()
}

// RunSource crawls and reconciles one source. Invalid sources and unknown
// adapters fail before a ledger entry is opened.
func (o *Orchestrator) RunSource(ctx context.Context, src ats.Source) (RunResult, error) {
	result := RunResult{Adapter: src.Ats, Company: src.Company, Endpoint: src.Endpoint}

	if err := src.Validate(); err != nil {
		return result, err
	}
	adapter, err := o.registry.Get(src.Ats)
	if err != nil {
		return result, err
	}

	scope := src.Scope()
	l := o.logger.With(zap.Stringer("scope", scope))
	start := time.Now()

	err = reconcile.Track(ctx, o.ledger, scope, src.Endpoint, func(ctx context.Context, run *reconcile.RunHandle) error {
		result.RunID = run.ID
		if timeout := o.cfg.Timeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		batch, err := adapter.Fetch(ctx, src)
		if err != nil {
			return &FetchError{Err: err}
		}
		result.Endpoint = batch.Endpoint
		result.Strategy = batch.Strategy
		result.Fetched = len(batch.Jobs)
		run.SetEndpoint(batch.Endpoint)
		run.SetFetched(len(batch.Jobs))

		jobs := ats.NormalizeAll(adapter, batch, src)
		counts, err := o.engine.Reconcile(ctx, scope, jobs)
		if err != nil {
			return err
		}
		if o.archive != nil {
			o.archive.Record(ctx, scope, jobs)
		}
		run.SetCounts(counts)
		result.New, result.Updated, result.Closed = counts.New, counts.Updated, counts.Closed
		return nil
	})
	if err != nil {
		result.Error = err.Error()
		l.Error("Source run failed", zap.Uint("run_id", result.RunID), zap.Duration("took", time.Since(start)), zap.Error(err))
		return result, err
	}

	l.Info("Source run finished",
		zap.Uint("run_id", result.RunID),
		zap.String("endpoint", result.Endpoint),
		zap.Int("fetched", result.Fetched),
		zap.Int("new", result.New),
		zap.Int("updated", result.Updated),
		zap.Int("closed", result.Closed),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// RunAll runs every configured source, at most cfg.Concurrency at a time.
// A failing source does not stop the others; failures are joined into the returned error.
func (o *Orchestrator) RunAll(ctx context.Context) ([]RunResult, error) {
	sources := o.Sources()
	results := make([]RunResult, len(sources))
	errs := make([]error, len(sources))

	limit := o.cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			res, err := o.RunSource(gctx, src)
			results[i] = res
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Scope(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	o.logger.Info("Crawl finished", zap.Int("sources", len(sources)), zap.Bool("failures", err != nil))
	return results, err
}
