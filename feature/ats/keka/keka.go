package keka

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"ats-catalog/core/fetch"
	"ats-catalog/core/reconcile"
	"ats-catalog/core/utils"
	"ats-catalog/feature/ats"

	"go.uber.org/zap"
)

// Name is the ATS tag of this adapter.
const Name = "kekahr"

const embedPath = "/careers/api/embedjobs/default/active/"

// maxGUIDs bounds how many GUID candidates are probed per careers page.
const maxGUIDs = 5

var (
	embedURLRe = regexp.MustCompile(`(?i)https?://[^"'>\s]+/careers/api/embedjobs/[^"'>\s]+`)
	guidRe     = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
)

var jobTypes = map[int]string{
	1: "Internship",
	2: "Full-time",
	3: "Part-time",
	4: "Contract",
	5: "Temporary",
	6: "Freelance",
}

// Adapter reads the embedjobs API of a Keka careers site.
type Adapter struct {
	client *fetch.Client
	logger *zap.Logger
}

// New creates a Keka adapter.
func New(client *fetch.Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger.With(zap.String("adapter", Name))}
}

// Name implements ats.Adapter.
func (a *Adapter) Name() string { return Name }

// Fetch tries the configured endpoint first, then discovers one from the careers page.
func (a *Adapter) Fetch(ctx context.Context, src ats.Source) (ats.RawBatch, error) {
	base, err := ats.BaseURL(src.CareersURL)
	if err != nil {
		return ats.RawBatch{}, err
	}

	if src.Endpoint != "" {
		endpoint := ats.Resolve(base, src.Endpoint)
		items, err := a.items(ctx, endpoint, src.CareersURL)
		if err == nil {
			return ats.RawBatch{Jobs: items, Endpoint: endpoint, Strategy: "override_api"}, nil
		}
		if ctx.Err() != nil {
			return ats.RawBatch{}, ctx.Err()
		}
		a.logger.Warn("Endpoint override failed, discovering",
			zap.String("company", src.Company),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
	}

	page, err := a.client.Get(ctx, src.CareersURL, http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if err != nil {
		return ats.RawBatch{}, fmt.Errorf("load careers page: %w", err)
	}

	var empty *ats.RawBatch
	for _, endpoint := range candidates(base, string(page)) {
		items, err := a.items(ctx, endpoint, src.CareersURL)
		if err != nil {
			if ctx.Err() != nil {
				return ats.RawBatch{}, ctx.Err()
			}
			a.logger.Debug("Candidate endpoint rejected", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}
		batch := ats.RawBatch{Jobs: items, Endpoint: endpoint, Strategy: "autodiscovered"}
		if len(items) > 0 {
			return batch, nil
		}
		if empty == nil {
			empty = &batch
		}
	}
	if empty != nil {
		return *empty, nil
	}
	return ats.RawBatch{}, fmt.Errorf("%w: no embedjobs endpoint on %s", ats.ErrEndpointNotFound, src.CareersURL)
}

// candidates lists embedjobs URLs referenced by the page, then URLs built from GUIDs it contains.
func candidates(base, html string) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, u := range embedURLRe.FindAllString(html, -1) {
		add(u)
	}
	guids := 0
	for _, g := range guidRe.FindAllString(html, -1) {
		u := base + embedPath + strings.ToLower(g)
		if _, ok := seen[u]; ok {
			continue
		}
		if guids == maxGUIDs {
			break
		}
		guids++
		add(u)
	}
	return out
}

func (a *Adapter) items(ctx context.Context, endpoint, referer string) ([]ats.RawJob, error) {
	headers := http.Header{}
	headers.Set("Referer", referer)
	headers.Set("X-Requested-With", "XMLHttpRequest")

	var payload any
	if err := a.client.GetJSON(ctx, endpoint, headers, &payload); err != nil {
		return nil, err
	}
	list, ok := extractItems(payload)
	if !ok {
		return nil, fmt.Errorf("%w: embedjobs response is not a job list", ats.ErrUnexpectedPayload)
	}
	out := make([]ats.RawJob, 0, len(list))
	for _, item := range list {
		out = append(out, ats.RawJob(item))
	}
	return out, nil
}

// extractItems accepts a bare list or an object holding the list under a common key.
func extractItems(payload any) ([]map[string]any, bool) {
	switch p := payload.(type) {
	case []any:
		return utils.ToMaps(p), true
	case map[string]any:
		for _, k := range []string{"jobs", "data", "openings", "items", "results"} {
			if list, ok := p[k].([]any); ok {
				return utils.ToMaps(list), true
			}
		}
	}
	return nil, false
}

// Normalize maps one embedjobs item.
func (a *Adapter) Normalize(raw ats.RawJob, src ats.Source) reconcile.NormalizedJob {
	id := utils.FirstString(raw, "id")
	applyURL := utils.FirstString(raw, "applyUrl")
	if base, err := ats.BaseURL(src.CareersURL); err == nil && id != "" {
		applyURL = base + "/careers/jobdetails/" + id
	}

	location := ""
	if locs := utils.Maps(raw, "jobLocations"); len(locs) > 0 {
		location = ats.JoinNonEmpty(", ",
			utils.ToString(locs[0]["city"]),
			utils.ToString(locs[0]["state"]),
			utils.ToString(locs[0]["countryName"]),
		)
	}
	if location == "" {
		location = ats.CleanText(utils.FirstString(raw, "location"))
	}

	employment := ""
	if v, ok := raw["jobType"].(float64); ok {
		employment = jobTypes[int(v)]
	}
	if employment == "" {
		employment = utils.FirstString(raw, "employment_type")
	}

	return reconcile.NormalizedJob{
		ExternalID:      externalID(raw),
		SourceSystem:    Name,
		CompanyName:     src.Company,
		Title:           ats.CleanText(utils.FirstString(raw, "title", "jobTitle")),
		Department:      ats.CleanText(utils.FirstString(raw, "departmentName", "department", "team")),
		LocationText:    location,
		RemoteType:      ats.RemoteType(location),
		EmploymentType:  employment,
		PostedAt:        utils.FirstString(raw, "publishedOn", "posted_at"),
		ApplyURL:        applyURL,
		SourceURL:       src.CareersURL,
		DescriptionHTML: utils.FirstString(raw, "description", "description_html"),
		RawPayload:      ats.Payload(raw),
	}
}

func externalID(raw ats.RawJob) string {
	if id := utils.FirstString(raw, "id", "jobId", "_id", "uuid", "slug"); id != "" {
		return id
	}
	basis := utils.FirstString(raw, "applyUrl", "title")
	if basis == "" {
		basis = string(ats.Payload(raw))
	}
	if len(basis) > 400 {
		basis = basis[:400]
	}
	return ats.FallbackID(basis)
}
