package join

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"ats-catalog/core/fetch"
	"ats-catalog/core/reconcile"
	"ats-catalog/core/utils"
	"ats-catalog/feature/ats"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Name is the ATS tag of this adapter.
const Name = "join"

// Origin is where Join.com job links point to.
const Origin = "https://join.com"

// Adapter scrapes the server-rendered company page on Join.com.
type Adapter struct {
	client *fetch.Client
	logger *zap.Logger
}

// New creates a Join.com adapter.
func New(client *fetch.Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger.With(zap.String("adapter", Name))}
}

// Name implements ats.Adapter.
func (a *Adapter) Name() string { return Name }

// Fetch collects the job links of the company's careers page.
func (a *Adapter) Fetch(ctx context.Context, src ats.Source) (ats.RawBatch, error) {
	if _, err := ats.BaseURL(src.CareersURL); err != nil {
		return ats.RawBatch{}, err
	}
	slug := Slug(src.CareersURL)
	if slug == "" {
		return ats.RawBatch{}, fmt.Errorf("%w: no company slug in %s", ats.ErrInvalidSource, src.CareersURL)
	}

	doc, err := a.client.GetDocument(ctx, src.CareersURL, http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if err != nil {
		return ats.RawBatch{}, err
	}

	jobs := Extract(doc, slug)
	a.logger.Debug("Scraped postings", zap.String("company", src.Company), zap.Int("count", len(jobs)))
	return ats.RawBatch{Jobs: jobs, Endpoint: src.CareersURL, Strategy: "dom"}, nil
}

// Slug returns the last path segment of a company page URL.
func Slug(careersURL string) string {
	u, err := url.Parse(careersURL)
	if err != nil {
		return ""
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Extract returns one raw job per distinct job link of the company in doc.
// Relative links are resolved against Origin.
func Extract(doc *goquery.Document, slug string) []ats.RawJob {
	prefix := Origin + "/companies/" + slug + "/"
	selector := fmt.Sprintf(`a[href^=%q], a[href^=%q]`, prefix, "/companies/"+slug+"/")

	seen := map[string]struct{}{}
	var jobs []ats.RawJob
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = ats.Resolve(Origin, strings.TrimSpace(href))
		if !strings.HasPrefix(href, prefix) || href == prefix {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		jobs = append(jobs, ats.RawJob{
			"title":    strings.Join(textLines(s), "\n"),
			"applyUrl": href,
		})
	})
	return jobs
}

// textLines returns the non-blank text nodes under s in document order.
func textLines(s *goquery.Selection) []string {
	var lines []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := ats.CleanText(c.Text()); t != "" {
				lines = append(lines, t)
			}
			return
		}
		lines = append(lines, textLines(c)...)
	})
	return lines
}

// Block is the role/location/employment/department layout of a job card.
type Block struct {
	Role           string
	Location       string
	EmploymentType string
	Department     string
}

// ParseBlock splits the card text into its lines.
func ParseBlock(text string) Block {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	at := func(i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}
	return Block{Role: at(0), Location: at(1), EmploymentType: at(2), Department: at(3)}
}

// Normalize maps one scraped job card.
func (a *Adapter) Normalize(raw ats.RawJob, src ats.Source) reconcile.NormalizedJob {
	block := ParseBlock(utils.ToString(raw["title"]))
	applyURL := utils.FirstString(raw, "applyUrl")

	externalID := ""
	if u, err := url.Parse(applyURL); err == nil && applyURL != "" {
		if seg := path.Base(strings.TrimRight(u.Path, "/")); seg != "." && seg != "/" {
			externalID = seg
		}
	}
	if externalID == "" {
		basis := applyURL
		if basis == "" {
			basis = utils.ToString(raw["title"])
		}
		externalID = ats.FallbackID(basis + src.Company)
	}

	return reconcile.NormalizedJob{
		ExternalID:     externalID,
		SourceSystem:   Name,
		CompanyName:    src.Company,
		Title:          block.Role,
		Department:     block.Department,
		LocationText:   block.Location,
		RemoteType:     ats.RemoteType(block.Location),
		EmploymentType: block.EmploymentType,
		ApplyURL:       applyURL,
		SourceURL:      src.CareersURL,
		RawPayload:     ats.Payload(raw),
	}
}
