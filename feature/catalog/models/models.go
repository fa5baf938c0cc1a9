package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job is a row of the jobs catalog. The pair (ats_type, external_id) is unique.
type Job struct {
	ID              uint           `gorm:"column:id;primaryKey" json:"id"`
	ExternalID      string         `gorm:"column:external_id;size:191;not null;uniqueIndex:uq_jobs_source_external,priority:2" json:"external_id"`
	AtsType         string         `gorm:"column:ats_type;size:64;not null;uniqueIndex:uq_jobs_source_external,priority:1;index:idx_jobs_scope,priority:1" json:"ats_type"`
	CompanyName     string         `gorm:"column:company_name;size:191;not null;index:idx_jobs_scope,priority:2" json:"company_name"`
	Title           string         `gorm:"column:title;size:512" json:"title"`
	Department      string         `gorm:"column:department;size:255" json:"department"`
	LocationText    string         `gorm:"column:location_text;size:512" json:"location_text"`
	RemoteType      string         `gorm:"column:remote_type;size:64" json:"remote_type"`
	EmploymentType  string         `gorm:"column:employment_type;size:128" json:"employment_type"`
	PostedAt        string         `gorm:"column:posted_at;size:64" json:"posted_at"`
	UpdatedAtSource string         `gorm:"column:updated_at_source;size:64" json:"updated_at_source"`
	ApplyURL        string         `gorm:"column:apply_url;size:1024" json:"apply_url"`
	SourceURL       string         `gorm:"column:source_url;size:1024" json:"source_url"`
	DescriptionHTML string         `gorm:"column:description_html;type:text" json:"description_html"`
	RawPayload      datatypes.JSON `gorm:"column:raw_payload" json:"raw_payload,omitempty"`
	Fingerprint     string         `gorm:"column:fingerprint;size:32" json:"fingerprint"`
	IsActive        bool           `gorm:"column:is_active;not null;index" json:"is_active"`
	Closed          bool           `gorm:"column:closed;not null" json:"closed"`
	ClosedAt        *time.Time     `gorm:"column:closed_at" json:"closed_at"`
	FirstSeenAt     time.Time      `gorm:"column:first_seen_at;not null" json:"first_seen_at"`
	LastSeenAt      time.Time      `gorm:"column:last_seen_at;not null" json:"last_seen_at"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Job) TableName() string {
	return "jobs"
}

// RunLog is one ledger entry per reconciliation run.
type RunLog struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	AtsType     string     `gorm:"column:ats_type;size:64;not null;index:idx_run_logs_scope,priority:1" json:"ats_type"`
	CompanyName string     `gorm:"column:company_name;size:191;not null;index:idx_run_logs_scope,priority:2" json:"company_name"`
	Endpoint    string     `gorm:"column:endpoint;size:2048" json:"endpoint"`
	Status      string     `gorm:"column:status;size:16;not null;index" json:"status"`
	Fetched     int        `gorm:"column:fetched;not null" json:"fetched"`
	New         int        `gorm:"column:new;not null" json:"new"`
	Updated     int        `gorm:"column:updated;not null" json:"updated"`
	Closed      int        `gorm:"column:closed;not null" json:"closed"`
	Error       *string    `gorm:"column:error;type:text" json:"error"`
	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	EndedAt     *time.Time `gorm:"column:ended_at" json:"ended_at"`
}

// TableName overrides the table name.
func (RunLog) TableName() string {
	return "run_logs"
}

// All returns every model managed by the catalog, in migration order.
func All() []any {
	return []any{&Job{}, &RunLog{}}
}
