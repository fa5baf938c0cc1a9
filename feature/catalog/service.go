package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ats-catalog/core/database"
	"ats-catalog/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultLimit  = 100
	MaxLimit      = 1000
	TopCompanies  = 20
	unknownSource = "unknown"
)

// ErrNotFound is returned when a job or run does not exist.
var ErrNotFound = errors.New("not found")

// JobQuery filters the catalog listing.
type JobQuery struct {
	Limit   int
	Offset  int
	Company string
	Title   string
	Ats     string
	// Active restricts to open (true) or closed (false) postings when set.
	Active *bool
}

// RunQuery filters the ledger listing.
type RunQuery struct {
	Limit   int
	Offset  int
	Ats     string
	Company string
}

// CompanyCount is one entry of the summary's company ranking.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int64  `json:"count"`
}

// Summary aggregates the catalog.
type Summary struct {
	Total        int64            `json:"total"`
	Active       int64            `json:"active"`
	ByAts        map[string]int64 `json:"by_ats"`
	TopCompanies []CompanyCount   `json:"top_companies"`
}

// DebugInfo describes the database the service is connected to.
type DebugInfo struct {
	Driver  string                           `json:"driver"`
	DSN     string                           `json:"db_url"`
	Tables  map[string][]database.ColumnInfo `json:"tables"`
	Missing map[string][]string              `json:"missing_columns"`
}

// Service reads the catalog and the run ledger.
type Service struct {
	db     *gorm.DB
	dbCfg  database.Config
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(db *gorm.DB, dbCfg database.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, dbCfg: dbCfg, logger: logger}
}

// ClampLimit bounds limit to 1..MaxLimit, using DefaultLimit when unset.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// ListJobs returns jobs matching q, newest first.
func (s *Service) ListJobs(ctx context.Context, q JobQuery) ([]models.Job, error) {
	tx := s.db.WithContext(ctx).Model(&models.Job{})
	if q.Company != "" {
		tx = tx.Where("LOWER(company_name) LIKE ?", likePattern(q.Company))
	}
	if q.Title != "" {
		tx = tx.Where("LOWER(title) LIKE ?", likePattern(q.Title))
	}
	if q.Ats != "" {
		tx = tx.Where("ats_type = ?", q.Ats)
	}
	if q.Active != nil {
		tx = tx.Where("is_active = ?", *q.Active)
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var jobs []models.Job
	err := tx.Order("id DESC").Limit(ClampLimit(q.Limit)).Offset(q.Offset).Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns a single job by id.
func (s *Service) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return &job, nil
}

// Summary counts jobs in total, per ATS and for the busiest companies.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	db := s.db.WithContext(ctx)
	out := &Summary{ByAts: map[string]int64{}, TopCompanies: []CompanyCount{}}

	if err := db.Model(&models.Job{}).Count(&out.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if err := db.Model(&models.Job{}).Where("is_active = ?", true).Count(&out.Active).Error; err != nil {
		return nil, fmt.Errorf("failed to count active jobs: %w", err)
	}

	var byAts []struct {
		AtsType string
		Count   int64
	}
	err := db.Model(&models.Job{}).
		Select("ats_type, COUNT(*) AS count").
		Group("ats_type").
		Scan(&byAts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group jobs by ats: %w", err)
	}
	for _, row := range byAts {
		key := row.AtsType
		if key == "" {
			key = unknownSource
		}
		out.ByAts[key] += row.Count
	}

	var top []struct {
		CompanyName string
		Count       int64
	}
	err = db.Model(&models.Job{}).
		Select("company_name, COUNT(*) AS count").
		Group("company_name").
		Order("count DESC").
		Order("company_name").
		Limit(TopCompanies).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank companies: %w", err)
	}
	for _, row := range top {
		out.TopCompanies = append(out.TopCompanies, CompanyCount{Company: row.CompanyName, Count: row.Count})
	}
	return out, nil
}

// ListRuns returns ledger entries matching q, newest first.
func (s *Service) ListRuns(ctx context.Context, q RunQuery) ([]models.RunLog, error) {
	tx := s.db.WithContext(ctx).Model(&models.RunLog{})
	if q.Ats != "" {
		tx = tx.Where("ats_type = ?", q.Ats)
	}
	if q.Company != "" {
		tx = tx.Where("company_name = ?", q.Company)
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var runs []models.RunLog
	err := tx.Order("id DESC").Limit(ClampLimit(q.Limit)).Offset(q.Offset).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single ledger entry by id.
func (s *Service) GetRun(ctx context.Context, id uint) (*models.RunLog, error) {
	var run models.RunLog
	err := s.db.WithContext(ctx).First(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	return &run, nil
}

// Debug reports the redacted connection string and the live schema of the catalog tables.
func (s *Service) Debug(ctx context.Context) (*DebugInfo, error) {
	info := &DebugInfo{
		Driver:  s.db.Dialector.Name(),
		DSN:     database.RedactedDSN(s.dbCfg),
		Tables:  map[string][]database.ColumnInfo{},
		Missing: map[string][]string{},
	}

	db := s.db.WithContext(ctx)
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		table := stmt.Schema.Table

		cols, err := database.GetTableColumns(db, table)
		if err != nil {
			return nil, err
		}
		info.Tables[table] = cols

		missing, err := database.MissingColumns(db, table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			s.logger.Warn("Schema drift detected", zap.String("table", table), zap.Strings("missing", missing))
			info.Missing[table] = missing
		}
	}
	return info, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
