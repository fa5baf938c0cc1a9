package catalog

import (
	"context"
	"errors"
	"testing"

	"ats-catalog/core/reconcile"
	"ats-catalog/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func loadRun(t *testing.T, db *gorm.DB, id uint) models.RunLog {
	t.Helper()
	var row models.RunLog
	require.NoError(t, db.First(&row, id).Error)
	return row
}

func TestLedger_TrackSuccess(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db)
	engine := reconcile.NewEngine(NewStore(db), reconcile.WithClock(stepClock()))
	var id uint

	err := reconcile.Track(context.Background(), ledger, acme, "embedjobs", func(ctx context.Context, run *reconcile.RunHandle) error {
		id = run.ID
		assert.Equal(t, string(reconcile.RunRunning), loadRun(t, db, run.ID).Status)

		batch := []reconcile.NormalizedJob{posting(acme, "A1", "Engineer"), posting(acme, "A2", "Designer")}
		run.SetFetched(len(batch))
		run.SetEndpoint("https://acme.keka.com/careers/api/embedjobs/default/active/abc")
		counts, err := engine.Reconcile(ctx, acme, batch)
		run.SetCounts(counts)
		return err
	})
	require.NoError(t, err)

	row := loadRun(t, db, id)
	assert.Equal(t, "success", row.Status)
	assert.Equal(t, "kekahr", row.AtsType)
	assert.Equal(t, "AcmeCo", row.CompanyName)
	assert.Equal(t, 2, row.Fetched)
	assert.Equal(t, 2, row.New)
	assert.Equal(t, "https://acme.keka.com/careers/api/embedjobs/default/active/abc", row.Endpoint)
	assert.Nil(t, row.Error)
	require.NotNil(t, row.EndedAt)
	assert.False(t, row.EndedAt.Before(row.StartedAt))
}

func TestLedger_TrackError(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db)
	var id uint

	err := reconcile.Track(context.Background(), ledger, acme, "", func(ctx context.Context, run *reconcile.RunHandle) error {
		id = run.ID
		return errors.New("fetch failed: status 503")
	})
	require.Error(t, err)

	row := loadRun(t, db, id)
	assert.Equal(t, "error", row.Status)
	require.NotNil(t, row.Error)
	assert.Equal(t, "fetch failed: status 503", *row.Error)
}

func TestLedger_FinishTwice(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	h, err := ledger.Start(ctx, acme, "")
	require.NoError(t, err)
	require.NoError(t, ledger.Finish(ctx, h, reconcile.RunSuccess, ""))
	assert.ErrorIs(t, ledger.Finish(ctx, h, reconcile.RunError, "late"), reconcile.ErrRunFinished)

	// A fresh handle for the same row cannot reopen it either.
	stale := reconcile.NewRunHandle(h.ID, acme, "", h.StartedAt)
	assert.ErrorIs(t, ledger.Finish(ctx, stale, reconcile.RunError, "late"), reconcile.ErrRunFinished)
	assert.Equal(t, "success", loadRun(t, db, h.ID).Status)
}

func TestLedger_FinishGuardsOnStatus(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `run_logs` SET .* WHERE .*id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	h := reconcile.NewRunHandle(7, acme, "", stepClock()())
	require.NoError(t, NewLedger(db).Finish(context.Background(), h, reconcile.RunSuccess, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}
