package crawl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"ats-catalog/core/database"
	"ats-catalog/core/reconcile"
	"ats-catalog/core/utils"
	"ats-catalog/feature/ats"
	"ats-catalog/feature/catalog"
	"ats-catalog/feature/catalog/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubAdapter serves canned batches keyed by company.
type stubAdapter struct {
	name    string
	batches map[string][]ats.RawJob
	fail    map[string]error
	calls   int32
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context, src ats.Source) (ats.RawBatch, error) {
	atomic.AddInt32(&s.calls, 1)
	if err := ctx.Err(); err != nil {
		return ats.RawBatch{}, err
	}
	if err := s.fail[src.Company]; err != nil {
		return ats.RawBatch{}, err
	}
	return ats.RawBatch{Jobs: s.batches[src.Company], Endpoint: src.CareersURL + "/api", Strategy: "stub"}, nil
}

func (s *stubAdapter) Normalize(raw ats.RawJob, src ats.Source) reconcile.NormalizedJob {
	return reconcile.NormalizedJob{
		ExternalID:   utils.ToString(raw["id"]),
		SourceSystem: s.name,
		CompanyName:  src.Company,
		Title:        utils.ToString(raw["title"]),
		ApplyURL:     src.CareersURL + "/" + utils.ToString(raw["id"]),
		SourceURL:    src.CareersURL,
		RawPayload:   ats.Payload(raw),
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, catalog.Migrate(db))
	return db
}

func newTestOrchestrator(t *testing.T, adapter *stubAdapter, sources []ats.Source, opts ...Option) (*Orchestrator, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	engine := reconcile.NewEngine(catalog.NewStore(db))
	opts = append([]Option{WithSources(sources)}, opts...)
	return NewOrchestrator(ats.NewRegistry(adapter), engine, catalog.NewLedger(db), Config{Concurrency: 2}, opts...), db
}

func source(company string) ats.Source {
	return ats.Source{Ats: "stub", Company: company, CareersURL: "https://" + company + ".example.com/careers"}
}

func runLogs(t *testing.T, db *gorm.DB) []models.RunLog {
	t.Helper()
	var rows []models.RunLog
	require.NoError(t, db.Order("id").Find(&rows).Error)
	return rows
}

var errUpstream = errors.New("status 503")
