package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is the work fired on every tick.
type Job func(ctx context.Context)

// Scheduler owns a cron instance with an explicit Start/Stop lifecycle.
type Scheduler struct {
	cron   *cron.Cron
	expr   string
	cfg    Config
	job    Job
	logger *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// New validates cfg and returns a stopped scheduler for job.
func New(cfg Config, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{l: logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{l: logger})),
	)

	s := &Scheduler{cron: c, expr: cfg.Cron, cfg: cfg, job: job, logger: logger}
	if _, err := c.AddFunc(cfg.Cron, s.fire); err != nil {
		return nil, fmt.Errorf("cron.AddFunc %q: %w", cfg.Cron, err)
	}
	return s, nil
}

// Start begins ticking. Jobs receive a context derived from ctx that Stop cancels.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("cron", s.expr),
		zap.String("timezone", s.cron.Location().String()),
		zap.Time("next", s.Next()),
	)

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run()
		}()
	}
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// Next returns the next scheduled activation, or zero when not started.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) fire() {
	s.wg.Add(1)
	defer s.wg.Done()
	s.run()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info("Scheduled crawl started")
	s.job(ctx)
	s.logger.Info("Scheduled crawl finished", zap.Duration("took", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, zap.Any("details", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, zap.Error(err), zap.Any("details", keysAndValues))
}
