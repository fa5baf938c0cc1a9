package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_Success(t *testing.T) {
	ledger := newMemLedger()
	var id uint

	err := Track(context.Background(), ledger, acme, "embedjobs", func(ctx context.Context, run *RunHandle) error {
		id = run.ID
		run.SetFetched(3)
		run.SetEndpoint("https://acme.keka.com/careers/api/embedjobs/default/active/abc")
		run.SetCounts(Counts{New: 2, Updated: 1})
		return nil
	})
	require.NoError(t, err)

	row := ledger.row(id)
	assert.Equal(t, RunSuccess, row.Status)
	assert.Empty(t, row.Error)
	assert.True(t, row.Ended)
	assert.Equal(t, 3, row.Outcome.Fetched)
	assert.Equal(t, Counts{New: 2, Updated: 1}, row.Outcome.Counts)
	assert.Equal(t, "https://acme.keka.com/careers/api/embedjobs/default/active/abc", row.Outcome.Endpoint)
}

func TestTrack_Error(t *testing.T) {
	ledger := newMemLedger()
	var id uint

	err := Track(context.Background(), ledger, acme, "", func(ctx context.Context, run *RunHandle) error {
		id = run.ID
		run.SetFetched(5)
		return errors.New("fetch failed: status 503")
	})
	assert.EqualError(t, err, "fetch failed: status 503")

	row := ledger.row(id)
	assert.Equal(t, RunError, row.Status)
	assert.Equal(t, "fetch failed: status 503", row.Error)
	assert.Equal(t, 5, row.Outcome.Fetched)
}

func TestTrack_PanicIsRecordedAndRethrown(t *testing.T) {
	ledger := newMemLedger()
	var id uint

	assert.PanicsWithValue(t, "boom", func() {
		_ = Track(context.Background(), ledger, acme, "", func(ctx context.Context, run *RunHandle) error {
			id = run.ID
			panic("boom")
		})
	})

	row := ledger.row(id)
	assert.Equal(t, RunError, row.Status)
	assert.Equal(t, "panic: boom", row.Error)
	assert.True(t, row.Ended)
}

func TestTrack_CancelledContextStillFinalizes(t *testing.T) {
	ledger := newMemLedger()
	ctx, cancel := context.WithCancel(context.Background())
	var id uint

	err := Track(ctx, ledger, acme, "", func(ctx context.Context, run *RunHandle) error {
		id = run.ID
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)

	row := ledger.row(id)
	assert.Equal(t, RunError, row.Status)
	assert.True(t, row.Ended)
}

func TestTrack_StartFailure(t *testing.T) {
	ledger := newMemLedger()
	ledger.startErr = errors.New("db down")
	called := false

	err := Track(context.Background(), ledger, acme, "", func(ctx context.Context, run *RunHandle) error {
		called = true
		return nil
	})
	assert.EqualError(t, err, "start run: db down")
	assert.False(t, called)
}

func TestFinish_Twice(t *testing.T) {
	ledger := newMemLedger()
	h, err := ledger.Start(context.Background(), acme, "")
	require.NoError(t, err)

	require.NoError(t, ledger.Finish(context.Background(), h, RunSuccess, ""))
	assert.ErrorIs(t, ledger.Finish(context.Background(), h, RunError, "late"), ErrRunFinished)
	assert.Equal(t, RunSuccess, ledger.row(h.ID).Status)
}

func TestTrack_WithEngine(t *testing.T) {
	ledger := newMemLedger()
	engine := NewEngine(newMemStore(), WithClock(stepClock()))
	batch := []NormalizedJob{job("A1", "Engineer"), {Title: "no id"}}
	var id uint

	err := Track(context.Background(), ledger, acme, "", func(ctx context.Context, run *RunHandle) error {
		id = run.ID
		run.SetFetched(len(batch))
		counts, err := engine.Reconcile(ctx, acme, batch)
		run.SetCounts(counts)
		return err
	})
	require.NoError(t, err)

	row := ledger.row(id)
	assert.Equal(t, 2, row.Outcome.Fetched)
	assert.Equal(t, Counts{New: 1}, row.Outcome.Counts)
}
