package oracle

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
const Name = "oracle_orc"

const (
	DefaultLimit    = 50
	MaxLimit        = 100
	DefaultMaxPages = 3
	MaxPages        = 20
)

var siteRe = regexp.MustCompile(`/sites/([^/]+)/`)

// Adapter reads the Candidate Experience REST API of Oracle Recruiting Cloud.
type Adapter struct {
	client *fetch.Client
	logger *zap.Logger
}

// New creates an Oracle Recruiting Cloud adapter.
func New(client *fetch.Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger.With(zap.String("adapter", Name))}
}

// Name implements ats.Adapter.
func (a *Adapter) Name() string { return Name }

// SiteNumber extracts the CX site number from a careers URL.
func SiteNumber(careersURL string) string {
	m := siteRe.FindStringSubmatch(careersURL + "/")
	if m == nil {
		return ""
	}
	return m[1]
}

// Endpoint builds the findReqs URL for one page.
func Endpoint(origin, site string, limit, offset int) string {
	return fmt.Sprintf("%s/hcmRestApi/resources/latest/recruitingCEJobRequisitions?onlyData=true"+
		"&expand=requisitionList.workLocation,requisitionList.otherWorkLocations,requisitionList.secondaryLocations,"+
		"flexFieldsFacet.values,requisitionList.requisitionFlexFields"+
		"&finder=findReqs;siteNumber=%s,"+
		"facetsList=LOCATIONS%%3BWORK_LOCATIONS%%3BWORKPLACE_TYPES%%3BTITLES%%3BCATEGORIES%%3BORGANIZATIONS%%3BPOSTING_DATES%%3BFLEX_FIELDS,"+
		"limit=%d,sortBy=POSTING_DATES_DESC,offset=%d",
		strings.TrimRight(origin, "/"), site, limit, offset)
}

// Fetch pages through requisitions by offset until an empty or short page, or max_pages.
func (a *Adapter) Fetch(ctx context.Context, src ats.Source) (ats.RawBatch, error) {
	origin := src.Host
	if origin == "" {
		base, err := ats.BaseURL(src.CareersURL)
		if err != nil {
			return ats.RawBatch{}, err
		}
		origin = base
	}
	site := src.Site
	if site == "" {
		site = SiteNumber(src.CareersURL)
	}
	if site == "" {
		return ats.RawBatch{}, fmt.Errorf("%w: no site number in %s", ats.ErrInvalidSource, src.CareersURL)
	}

	limit := clamp(src.PageSize, DefaultLimit, MaxLimit)
	pages := clamp(src.MaxPages, DefaultMaxPages, MaxPages)

	headers := http.Header{}
	headers.Set("Accept", "application/json, text/plain, */*")

	batch := ats.RawBatch{Strategy: "rest"}
	for page := 0; page < pages; page++ {
		endpoint := Endpoint(origin, site, limit, page*limit)
		batch.Endpoint = endpoint

		var payload map[string]any
		if err := a.client.GetJSON(ctx, endpoint, headers, &payload); err != nil {
			return ats.RawBatch{}, fmt.Errorf("oracle page %d: %w", page+1, err)
		}
		rawItems, ok := payload["items"]
		if !ok {
			break
		}
		if _, isList := rawItems.([]any); !isList {
			return ats.RawBatch{}, fmt.Errorf("%w: oracle items is not a list", ats.ErrUnexpectedPayload)
		}

		got := 0
		for _, entry := range utils.ToMaps(rawItems) {
			for _, req := range utils.Maps(entry, "requisitionList") {
				batch.Jobs = append(batch.Jobs, ats.RawJob(req))
				got++
			}
		}
		if got < limit {
			break
		}
	}

	a.logger.Debug("Fetched requisitions", zap.String("company", src.Company), zap.Int("count", len(batch.Jobs)))
	return batch, nil
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// Normalize maps one requisition.
func (a *Adapter) Normalize(raw ats.RawJob, src ats.Source) reconcile.NormalizedJob {
	id := utils.FirstString(raw, "Id", "id")

	applyURL := src.CareersURL
	if id != "" {
		base, _, _ := strings.Cut(src.CareersURL, "/jobs")
		applyURL = strings.TrimRight(base, "/") + "/job/" + id
	}

	locations := []string{utils.FirstString(raw, "PrimaryLocation", "primaryLocation")}
	for _, loc := range utils.Maps(raw, "secondaryLocations") {
		locations = append(locations, utils.ToString(loc["Name"]))
	}

	return reconcile.NormalizedJob{
		ExternalID:      id,
		SourceSystem:    Name,
		CompanyName:     src.Company,
		Title:           ats.CleanText(utils.FirstString(raw, "Title", "title")),
		Department:      ats.CleanText(utils.FirstString(raw, "Department", "Organization", "department")),
		LocationText:    ats.JoinNonEmpty(" | ", locations...),
		EmploymentType:  utils.FirstString(raw, "JobType", "WorkerType", "ContractType", "JobSchedule", "WorkplaceType"),
		PostedAt:        utils.FirstString(raw, "PostedDate", "postingStartDate", "postedDate"),
		ApplyURL:        applyURL,
		SourceURL:       src.CareersURL,
		DescriptionHTML: utils.FirstString(raw, "ShortDescriptionStr", "ExternalResponsibilitiesStr"),
		RawPayload:      ats.Payload(raw),
	}
}
