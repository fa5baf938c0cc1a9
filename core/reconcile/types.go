package reconcile

import (
	"encoding/json"
	"time"
)

// NormalizedJob is one posting as emitted by an ATS adapter.
type NormalizedJob struct {
	// ExternalID is the source-assigned identifier. Required.
	ExternalID string `json:"external_id"`
	// SourceSystem is the ATS tag (darwinbox, kekahr, join, oracle_orc).
	SourceSystem string `json:"ats_type"`
	// CompanyName is the display name of the employer.
	CompanyName     string `json:"company_name"`
	Title           string `json:"title"`
	Department      string `json:"department"`
	LocationText    string `json:"location_text"`
	RemoteType      string `json:"remote_type"`
	EmploymentType  string `json:"employment_type"`
	PostedAt        string `json:"posted_at"`
	UpdatedAtSource string `json:"updated_at_source"`
	ApplyURL        string `json:"apply_url"`
	SourceURL       string `json:"source_url"`
	DescriptionHTML string `json:"description_html"`
	// RawPayload is the untouched source record. It is stored but never compared.
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
}

// Field describes one tracked attribute of a NormalizedJob.
type Field struct {
	Name string
	get  func(j *NormalizedJob) string
}

// Value returns the field's value on j.
func (f Field) Value(j *NormalizedJob) string {
	return f.get(j)
}

// trackedFields is the single list driving both the field diff and the fingerprint.
var trackedFields = []Field{
	{Name: "external_id", get: func(j *NormalizedJob) string { return j.ExternalID }},
	{Name: "ats_type", get: func(j *NormalizedJob) string { return j.SourceSystem }},
	{Name: "company_name", get: func(j *NormalizedJob) string { return j.CompanyName }},
	{Name: "title", get: func(j *NormalizedJob) string { return j.Title }},
	{Name: "department", get: func(j *NormalizedJob) string { return j.Department }},
	{Name: "location_text", get: func(j *NormalizedJob) string { return j.LocationText }},
	{Name: "remote_type", get: func(j *NormalizedJob) string { return j.RemoteType }},
	{Name: "employment_type", get: func(j *NormalizedJob) string { return j.EmploymentType }},
	{Name: "posted_at", get: func(j *NormalizedJob) string { return j.PostedAt }},
	{Name: "updated_at_source", get: func(j *NormalizedJob) string { return j.UpdatedAtSource }},
	{Name: "apply_url", get: func(j *NormalizedJob) string { return j.ApplyURL }},
	{Name: "source_url", get: func(j *NormalizedJob) string { return j.SourceURL }},
	{Name: "description_html", get: func(j *NormalizedJob) string { return j.DescriptionHTML }},
}

// TrackedFields returns the attributes compared between runs. RawPayload is not among them.
func TrackedFields() []Field {
	out := make([]Field, len(trackedFields))
	copy(out, trackedFields)
	return out
}

// Values returns the tracked fields of j keyed by name.
func (j NormalizedJob) Values() map[string]string {
	out := make(map[string]string, len(trackedFields))
	for _, f := range trackedFields {
		out[f.Name] = f.get(&j)
	}
	return out
}

// ChangedFields lists the tracked fields whose values differ between a and b.
func ChangedFields(a, b NormalizedJob) []string {
	var changed []string
	for _, f := range trackedFields {
		if f.get(&a) != f.get(&b) {
			changed = append(changed, f.Name)
		}
	}
	return changed
}

// Scope identifies the set of postings a single run is authoritative for.
type Scope struct {
	SourceSystem string `json:"ats_type"`
	CompanyName  string `json:"company_name"`
}

// Key returns a stable string form of the scope, used for locking.
func (s Scope) Key() string {
	return s.SourceSystem + "|" + s.CompanyName
}

// String implements fmt.Stringer.
func (s Scope) String() string {
	return s.SourceSystem + "/" + s.CompanyName
}

// Counts is the delta applied by one reconciliation.
type Counts struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Closed  int `json:"closed"`
}

// CatalogEntry is the persisted form of a job with its lifecycle state.
type CatalogEntry struct {
	NormalizedJob

	ID          uint
	Fingerprint string
	IsActive    bool
	Closed      bool
	// ClosedAt records the latest closure. It is kept when the job reappears.
	ClosedAt    *time.Time
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Scope returns the scope the entry currently belongs to.
func (e *CatalogEntry) Scope() Scope {
	return Scope{SourceSystem: e.SourceSystem, CompanyName: e.CompanyName}
}
