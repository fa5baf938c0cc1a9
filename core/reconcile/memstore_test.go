package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// memStore is an in-memory Store with copy-on-write transactions.
type memStore struct {
	mu      sync.Mutex
	rows    map[string]CatalogEntry
	nextID  uint
	failOn  string // "find", "insert", "update", "close"
	failErr error
	// foldCase makes external ids match case-insensitively, like a MySQL _ci collation.
	foldCase bool
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]CatalogEntry)}
}

func memKey(source, id string) string { return source + "|" + id }

func (s *memStore) key(source, id string) string {
	if s.foldCase {
		id = strings.ToLower(id)
	}
	return memKey(source, id)
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[string]CatalogEntry, len(s.rows))
	for k, v := range s.rows {
		work[k] = v
	}
	tx := &memTx{s: s, rows: work, nextID: s.nextID}
	if err := fn(tx); err != nil {
		return err
	}
	s.rows = work
	s.nextID = tx.nextID
	return nil
}

func (s *memStore) get(source, id string) (CatalogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[s.key(source, id)]
	return e, ok
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type memTx struct {
	s      *memStore
	rows   map[string]CatalogEntry
	nextID uint
}

func (t *memTx) fail(op string) error {
	if t.s.failOn == op {
		if t.s.failErr != nil {
			return t.s.failErr
		}
		return errors.New(op + " failed")
	}
	return nil
}

func (t *memTx) FindByKeys(_ context.Context, source string, ids []string) (map[string]*CatalogEntry, error) {
	if err := t.fail("find"); err != nil {
		return nil, err
	}
	out := make(map[string]*CatalogEntry)
	for _, id := range ids {
		if e, ok := t.rows[t.s.key(source, id)]; ok {
			cp := e
			out[e.ExternalID] = &cp
		}
	}
	return out, nil
}

func (t *memTx) Insert(_ context.Context, e *CatalogEntry) (bool, error) {
	if err := t.fail("insert"); err != nil {
		return false, err
	}
	k := t.s.key(e.SourceSystem, e.ExternalID)
	if _, ok := t.rows[k]; ok {
		return false, nil
	}
	t.nextID++
	e.ID = t.nextID
	t.rows[k] = *e
	return true, nil
}

func (t *memTx) Update(_ context.Context, e *CatalogEntry) error {
	if err := t.fail("update"); err != nil {
		return err
	}
	t.rows[t.s.key(e.SourceSystem, e.ExternalID)] = *e
	return nil
}

func (t *memTx) CloseMissing(_ context.Context, scope Scope, present map[string]struct{}, now time.Time) (int, error) {
	if err := t.fail("close"); err != nil {
		return 0, err
	}
	n := 0
	for k, e := range t.rows {
		if e.SourceSystem != scope.SourceSystem || e.CompanyName != scope.CompanyName || !e.IsActive {
			continue
		}
		if _, ok := present[e.ExternalID]; ok {
			continue
		}
		e.IsActive = false
		e.Closed = true
		closedAt := now
		e.ClosedAt = &closedAt
		e.LastSeenAt = now
		t.rows[k] = e
		n++
	}
	return n, nil
}

// memLedger is an in-memory Ledger.
type memLedger struct {
	mu       sync.Mutex
	entries  map[uint]*ledgerRow
	nextID   uint
	startErr error
}

type ledgerRow struct {
	Scope   Scope
	Status  RunStatus
	Error   string
	Outcome RunOutcome
	Ended   bool
}

func newMemLedger() *memLedger {
	return &memLedger{entries: make(map[uint]*ledgerRow)}
}

func (l *memLedger) Start(_ context.Context, scope Scope, endpoint string) (*RunHandle, error) {
	if l.startErr != nil {
		return nil, l.startErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.entries[l.nextID] = &ledgerRow{Scope: scope, Status: RunRunning, Outcome: RunOutcome{Endpoint: endpoint}}
	return NewRunHandle(l.nextID, scope, endpoint, time.Now()), nil
}

func (l *memLedger) Finish(_ context.Context, h *RunHandle, status RunStatus, errMsg string) error {
	if !h.MarkFinished() {
		return ErrRunFinished
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	row := l.entries[h.ID]
	if row.Status != RunRunning {
		return ErrRunFinished
	}
	row.Status = status
	row.Error = errMsg
	row.Outcome = h.Outcome()
	row.Ended = true
	return nil
}

func (l *memLedger) row(id uint) ledgerRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.entries[id]
}
