package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := job("A1", "Engineer")
	b := NormalizedJob{
		Title:        "Engineer",
		SourceURL:    a.SourceURL,
		ApplyURL:     a.ApplyURL,
		CompanyName:  "AcmeCo",
		SourceSystem: "kekahr",
		ExternalID:   "A1",
	}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a).String(), 32)
}

func TestFingerprint_IgnoresRawPayload(t *testing.T) {
	a := job("A1", "Engineer")
	b := a
	b.RawPayload = []byte(`{"noise":true}`)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_SensitiveToEveryTrackedField(t *testing.T) {
	base := job("A1", "Engineer")
	seen := map[Hash]string{Fingerprint(base): "base"}

	mutators := map[string]func(j *NormalizedJob){
		"external_id":       func(j *NormalizedJob) { j.ExternalID = "A2" },
		"ats_type":          func(j *NormalizedJob) { j.SourceSystem = "join" },
		"company_name":      func(j *NormalizedJob) { j.CompanyName = "Globex" },
		"title":             func(j *NormalizedJob) { j.Title = "Lead" },
		"department":        func(j *NormalizedJob) { j.Department = "R&D" },
		"location_text":     func(j *NormalizedJob) { j.LocationText = "Pune" },
		"remote_type":       func(j *NormalizedJob) { j.RemoteType = "remote" },
		"employment_type":   func(j *NormalizedJob) { j.EmploymentType = "Full-time" },
		"posted_at":         func(j *NormalizedJob) { j.PostedAt = "2025-01-01" },
		"updated_at_source": func(j *NormalizedJob) { j.UpdatedAtSource = "2025-01-02" },
		"apply_url":         func(j *NormalizedJob) { j.ApplyURL = "https://x" },
		"source_url":        func(j *NormalizedJob) { j.SourceURL = "https://y" },
		"description_html":  func(j *NormalizedJob) { j.DescriptionHTML = "<p>hi</p>" },
	}
	assert.Len(t, mutators, len(TrackedFields()))

	for name, mutate := range mutators {
		j := base
		mutate(&j)
		h := Fingerprint(j)
		prev, dup := seen[h]
		assert.False(t, dup, "%s collides with %s", name, prev)
		seen[h] = name
		assert.Equal(t, []string{name}, ChangedFields(base, j))
	}
}

func TestTrackedFields_ReturnsCopy(t *testing.T) {
	fields := TrackedFields()
	fields[0].Name = "mutated"
	assert.Equal(t, "external_id", TrackedFields()[0].Name)
}
