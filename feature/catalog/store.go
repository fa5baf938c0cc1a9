package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ats-catalog/core/reconcile"
	"ats-catalog/feature/catalog/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// chunkSize bounds the number of bound parameters in IN clauses.
const chunkSize = 500

// Store is the GORM implementation of reconcile.Store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx reconcile.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&storeTx{db: tx})
	})
}

type storeTx struct {
	db *gorm.DB
}

func (t *storeTx) FindByKeys(ctx context.Context, source string, ids []string) (map[string]*reconcile.CatalogEntry, error) {
	out := make(map[string]*reconcile.CatalogEntry, len(ids))
	for _, chunk := range chunks(ids, chunkSize) {
		var rows []models.Job
		err := t.db.WithContext(ctx).
			Where("ats_type = ? AND external_id IN ?", source, chunk).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load jobs: %w", err)
		}
		for i := range rows {
			e := toEntry(&rows[i])
			out[e.ExternalID] = e
		}
	}
	return out, nil
}

func (t *storeTx) Insert(ctx context.Context, e *reconcile.CatalogEntry) (bool, error) {
	row := toModel(e)
	res := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert job %s: %w", e.ExternalID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	e.ID = row.ID
	return true, nil
}

func (t *storeTx) Update(ctx context.Context, e *reconcile.CatalogEntry) error {
	row := toModel(e)
	res := t.db.WithContext(ctx).
		Model(&models.Job{ID: e.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(row)
	if res.Error != nil {
		return fmt.Errorf("failed to update job %d: %w", e.ID, res.Error)
	}
	return nil
}

func (t *storeTx) CloseMissing(ctx context.Context, scope reconcile.Scope, present map[string]struct{}, now time.Time) (int, error) {
	var active []models.Job
	err := t.db.WithContext(ctx).
		Select("id", "external_id").
		Where("ats_type = ? AND company_name = ? AND is_active = ?", scope.SourceSystem, scope.CompanyName, true).
		Find(&active).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load active jobs: %w", err)
	}

	var stale []uint
	for _, row := range active {
		if _, ok := present[row.ExternalID]; !ok {
			stale = append(stale, row.ID)
		}
	}

	for _, chunk := range chunks(stale, chunkSize) {
		err := t.db.WithContext(ctx).
			Model(&models.Job{}).
			Where("id IN ?", chunk).
			Updates(map[string]any{
				"is_active":    false,
				"closed":       true,
				"closed_at":    now,
				"last_seen_at": now,
			}).Error
		if err != nil {
			return 0, fmt.Errorf("failed to close jobs: %w", err)
		}
	}
	return len(stale), nil
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func toModel(e *reconcile.CatalogEntry) *models.Job {
	return &models.Job{
		ID:              e.ID,
		ExternalID:      e.ExternalID,
		AtsType:         e.SourceSystem,
		CompanyName:     e.CompanyName,
		Title:           e.Title,
		Department:      e.Department,
		LocationText:    e.LocationText,
		RemoteType:      e.RemoteType,
		EmploymentType:  e.EmploymentType,
		PostedAt:        e.PostedAt,
		UpdatedAtSource: e.UpdatedAtSource,
		ApplyURL:        e.ApplyURL,
		SourceURL:       e.SourceURL,
		DescriptionHTML: e.DescriptionHTML,
		RawPayload:      datatypes.JSON(e.RawPayload),
		Fingerprint:     e.Fingerprint,
		IsActive:        e.IsActive,
		Closed:          e.Closed,
		ClosedAt:        e.ClosedAt,
		FirstSeenAt:     e.FirstSeenAt,
		LastSeenAt:      e.LastSeenAt,
	}
}

func toEntry(row *models.Job) *reconcile.CatalogEntry {
	return &reconcile.CatalogEntry{
		NormalizedJob: reconcile.NormalizedJob{
			ExternalID:      row.ExternalID,
			SourceSystem:    row.AtsType,
			CompanyName:     row.CompanyName,
			Title:           row.Title,
			Department:      row.Department,
			LocationText:    row.LocationText,
			RemoteType:      row.RemoteType,
			EmploymentType:  row.EmploymentType,
			PostedAt:        row.PostedAt,
			UpdatedAtSource: row.UpdatedAtSource,
			ApplyURL:        row.ApplyURL,
			SourceURL:       row.SourceURL,
			DescriptionHTML: row.DescriptionHTML,
			RawPayload:      json.RawMessage(row.RawPayload),
		},
		ID:          row.ID,
		Fingerprint: row.Fingerprint,
		IsActive:    row.IsActive,
		Closed:      row.Closed,
		ClosedAt:    row.ClosedAt,
		FirstSeenAt: row.FirstSeenAt,
		LastSeenAt:  row.LastSeenAt,
	}
}
