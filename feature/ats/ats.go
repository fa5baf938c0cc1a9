package ats

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ats-catalog/core/reconcile"
)

var (
	// ErrUnknownAdapter is returned by the registry for an unregistered ATS name.
	ErrUnknownAdapter = errors.New("unknown adapter")
	// ErrInvalidSource is returned when a source is missing required settings.
	ErrInvalidSource = errors.New("invalid source")
	// ErrUnexpectedPayload is returned when an upstream response has an unknown shape.
	ErrUnexpectedPayload = errors.New("unexpected payload")
	// ErrEndpointNotFound is returned when no jobs endpoint could be discovered.
	ErrEndpointNotFound = errors.New("jobs endpoint not found")
)

// Source is one careers site to crawl.
type Source struct {
	Ats        string `yaml:"ats" json:"ats"`
	Company    string `yaml:"company" json:"company"`
	CareersURL string `yaml:"careers_url" json:"careers_url"`
	// Endpoint overrides API discovery (kekahr).
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	PageSize int    `yaml:"page_size,omitempty" json:"page_size,omitempty"`
	MaxPages int    `yaml:"max_pages,omitempty" json:"max_pages,omitempty"`
	// Host overrides the REST origin (oracle_orc).
	Host string `yaml:"host,omitempty" json:"host,omitempty"`
	// Site overrides the site number parsed from the careers URL (oracle_orc).
	Site string `yaml:"site,omitempty" json:"site,omitempty"`
}

// Scope returns the reconciliation scope the source is authoritative for.
func (s Source) Scope() reconcile.Scope {
	return reconcile.Scope{SourceSystem: s.Ats, CompanyName: s.Company}
}

// Validate checks the fields every adapter needs.
func (s Source) Validate() error {
	if strings.TrimSpace(s.Ats) == "" {
		return fmt.Errorf("%w: ats is required", ErrInvalidSource)
	}
	if strings.TrimSpace(s.Company) == "" {
		return fmt.Errorf("%w: company is required", ErrInvalidSource)
	}
	if _, err := BaseURL(s.CareersURL); err != nil {
		return err
	}
	return nil
}

// RawJob is one undecoded record as returned by the ATS.
type RawJob map[string]any

// RawBatch is the result of one fetch.
type RawBatch struct {
	Jobs []RawJob
	// Endpoint is the URL that produced the jobs, recorded in the run ledger.
	Endpoint string
	// Strategy names the path the adapter took, e.g. "api" or "autodiscovered".
	Strategy string
}

// Adapter fetches and normalizes postings of one ATS.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, src Source) (RawBatch, error)
	Normalize(raw RawJob, src Source) reconcile.NormalizedJob
}

// NormalizeAll maps every raw record of batch through a.
func NormalizeAll(a Adapter, batch RawBatch, src Source) []reconcile.NormalizedJob {
	out := make([]reconcile.NormalizedJob, 0, len(batch.Jobs))
	for _, raw := range batch.Jobs {
		out = append(out, a.Normalize(raw, src))
	}
	return out
}

// BaseURL returns scheme://host of careersURL.
func BaseURL(careersURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(careersURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: careers_url %q is not an absolute http(s) URL", ErrInvalidSource, careersURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Resolve joins ref onto base. Absolute refs are returned unchanged.
func Resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
