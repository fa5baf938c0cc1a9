package darwinbox

import (
	"context"
	"fmt"
	"net/http"

	"ats-catalog/core/fetch"
	"ats-catalog/core/reconcile"
	"ats-catalog/core/utils"
	"ats-catalog/feature/ats"

	"go.uber.org/zap"
)

// Name is the ATS tag of this adapter.
const Name = "darwinbox"

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	DefaultMaxPages = 40
)

// Adapter pages through the public candidate API of a Darwinbox tenant.
type Adapter struct {
	client *fetch.Client
	logger *zap.Logger
}

// New creates a Darwinbox adapter.
func New(client *fetch.Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger.With(zap.String("adapter", Name))}
}

// Name implements ats.Adapter.
func (a *Adapter) Name() string { return Name }

// Fetch reads message.jobs page by page until an empty page, jobscount or max_pages.
func (a *Adapter) Fetch(ctx context.Context, src ats.Source) (ats.RawBatch, error) {
	base, err := ats.BaseURL(src.CareersURL)
	if err != nil {
		return ats.RawBatch{}, err
	}

	pageSize := src.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	maxPages := src.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	headers := http.Header{}
	headers.Set("X-Requested-With", "XMLHttpRequest")
	headers.Set("Referer", src.CareersURL)

	batch := ats.RawBatch{
		Endpoint: fmt.Sprintf("%s/ms/candidateapi/job?page={page}&limit=%d", base, pageSize),
		Strategy: "api",
	}
	for page := 1; page <= maxPages; page++ {
		endpoint := fmt.Sprintf("%s/ms/candidateapi/job?page=%d&limit=%d", base, page, pageSize)

		var payload map[string]any
		if err := a.client.GetJSON(ctx, endpoint, headers, &payload); err != nil {
			return ats.RawBatch{}, fmt.Errorf("darwinbox page %d: %w", page, err)
		}
		if page == 1 {
			batch.Endpoint = endpoint
		}

		msg := utils.Map(payload, "message")
		if msg == nil {
			if page == 1 {
				return ats.RawBatch{}, fmt.Errorf("%w: darwinbox response has no message object", ats.ErrUnexpectedPayload)
			}
			break
		}
		jobs := utils.Maps(msg, "jobs")
		if len(jobs) == 0 {
			break
		}
		for _, j := range jobs {
			batch.Jobs = append(batch.Jobs, ats.RawJob(j))
		}

		if total, ok := msg["jobscount"]; ok && total != nil && len(batch.Jobs) >= utils.ToInt(total) {
			break
		}
	}

	a.logger.Debug("Fetched postings", zap.String("company", src.Company), zap.Int("count", len(batch.Jobs)))
	return batch, nil
}

// Normalize maps one Darwinbox job record.
func (a *Adapter) Normalize(raw ats.RawJob, src ats.Source) reconcile.NormalizedJob {
	id := utils.FirstString(raw, "id")
	externalID := id
	if externalID == "" {
		externalID = ats.FallbackID(utils.ToString(raw["title"]) + "|" + utils.ToString(raw["created_on"]))
	}

	applyURL := src.CareersURL
	if base, err := ats.BaseURL(src.CareersURL); err == nil && id != "" {
		applyURL = base + "/ms/candidate/careers#/job/" + id
	}

	postedAt := utils.FirstString(raw, "created_on")
	if postedAt == "" {
		postedAt = ats.EpochISO(raw["job_posting_on"])
	}

	location := ats.TextList(raw["officelocation_show_arr"])
	if location == "" {
		location = ats.TextList(raw["officelocation_arr"])
	}

	return reconcile.NormalizedJob{
		ExternalID:      externalID,
		SourceSystem:    Name,
		CompanyName:     src.Company,
		Title:           ats.CleanText(utils.FirstString(raw, "title", "designation_display_name")),
		Department:      ats.CleanText(utils.FirstString(raw, "department")),
		LocationText:    location,
		RemoteType:      ats.RemoteType(location),
		EmploymentType:  ats.CleanText(utils.FirstString(raw, "emp_type")),
		PostedAt:        postedAt,
		ApplyURL:        applyURL,
		SourceURL:       src.CareersURL,
		RawPayload:      ats.Payload(raw),
	}
}
