package catalog

import (
	"context"
	"fmt"
	"time"

	"ats-catalog/core/reconcile"
	"ats-catalog/feature/catalog/models"

	"gorm.io/gorm"
)

// Ledger is the GORM implementation of reconcile.Ledger backed by run_logs.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger creates a Ledger on db.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Start inserts a running entry.
func (l *Ledger) Start(ctx context.Context, scope reconcile.Scope, endpoint string) (*reconcile.RunHandle, error) {
	row := models.RunLog{
		AtsType:     scope.SourceSystem,
		CompanyName: scope.CompanyName,
		Endpoint:    endpoint,
		Status:      string(reconcile.RunRunning),
		StartedAt:   l.now(),
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}
	return reconcile.NewRunHandle(row.ID, scope, endpoint, row.StartedAt), nil
}

// Finish writes the outcome and final status. Only a running row is updated.
func (l *Ledger) Finish(ctx context.Context, h *reconcile.RunHandle, status reconcile.RunStatus, errMsg string) error {
	if !h.MarkFinished() {
		return reconcile.ErrRunFinished
	}

	out := h.Outcome()
	ended := l.now()
	var errCol *string
	if errMsg != "" {
		errCol = &errMsg
	}

	res := l.db.WithContext(ctx).
		Model(&models.RunLog{}).
		Where("id = ? AND status = ?", h.ID, string(reconcile.RunRunning)).
		Updates(map[string]any{
			"status":   string(status),
			"endpoint": out.Endpoint,
			"fetched":  out.Fetched,
			"new":      out.Counts.New,
			"updated":  out.Counts.Updated,
			"closed":   out.Counts.Closed,
			"error":    errCol,
			"ended_at": ended,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to finalize run %d: %w", h.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return reconcile.ErrRunFinished
	}
	return nil
}
