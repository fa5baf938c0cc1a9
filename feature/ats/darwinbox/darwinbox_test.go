package darwinbox

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ats-catalog/core/fetch"
	"ats-catalog/feature/ats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *fetch.Client {
	return fetch.New(fetch.Config{TimeoutSeconds: 5, BackoffMillis: 1}, nil)
}

func TestFetch_Paginates(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ms/candidateapi/job", r.URL.Path)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case 1:
			fmt.Fprint(w, `{"message":{"jobscount":3,"jobs":[{"id":"a1","title":"Engineer"},{"id":"a2","title":"Analyst"}]}}`)
		case 2:
			fmt.Fprint(w, `{"message":{"jobscount":3,"jobs":[{"id":"a3","title":"Designer"}]}}`)
		default:
			t.Errorf("unexpected page %d", page)
		}
	}))
	defer srv.Close()

	a := New(testClient(), nil)
	batch, err := a.Fetch(context.Background(), ats.Source{Ats: Name, Company: "ADA", CareersURL: srv.URL + "/ms/candidate/careers", PageSize: 2})
	require.NoError(t, err)

	assert.Len(t, batch.Jobs, 3)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Equal(t, srv.URL+"/ms/candidateapi/job?page=1&limit=2", batch.Endpoint)
	assert.Equal(t, "api", batch.Strategy)
}

func TestFetch_StopsOnEmptyPageAndMaxPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"message":{"jobs":[{"id":"p%d"}]}}`, calls)
	}))
	defer srv.Close()

	a := New(testClient(), nil)
	batch, err := a.Fetch(context.Background(), ats.Source{CareersURL: srv.URL, MaxPages: 3})
	require.NoError(t, err)
	assert.Len(t, batch.Jobs, 3)
	assert.Equal(t, 3, calls)
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	a := New(testClient(), nil)

	_, err := a.Fetch(context.Background(), ats.Source{CareersURL: srv.URL})
	assert.ErrorIs(t, err, ats.ErrUnexpectedPayload)

	_, err = a.Fetch(context.Background(), ats.Source{CareersURL: "not a url"})
	assert.ErrorIs(t, err, ats.ErrInvalidSource)
}

func TestFetch_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(testClient(), nil).Fetch(context.Background(), ats.Source{CareersURL: srv.URL})
	var se *fetch.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestNormalize(t *testing.T) {
	a := New(testClient(), nil)
	src := ats.Source{Ats: Name, Company: "ADA", CareersURL: "https://adaglobal.darwinbox.com/ms/candidate/careers"}

	tests := []struct {
		name  string
		raw   ats.RawJob
		check func(t *testing.T, raw ats.RawJob)
	}{
		{
			name: "Full Record",
			raw: ats.RawJob{
				"id":                      "65a1",
				"title":                   " Data  Engineer ",
				"department":              "Analytics",
				"officelocation_show_arr": []any{"Bengaluru", "Mumbai"},
				"emp_type":                "Full Time",
				"created_on":              "2025-01-10",
			},
			check: func(t *testing.T, raw ats.RawJob) {
				j := a.Normalize(raw, src)
				assert.Equal(t, "65a1", j.ExternalID)
				assert.Equal(t, "darwinbox", j.SourceSystem)
				assert.Equal(t, "ADA", j.CompanyName)
				assert.Equal(t, "Data Engineer", j.Title)
				assert.Equal(t, "Bengaluru, Mumbai", j.LocationText)
				assert.Equal(t, "Full Time", j.EmploymentType)
				assert.Equal(t, "2025-01-10", j.PostedAt)
				assert.Equal(t, "https://adaglobal.darwinbox.com/ms/candidate/careers#/job/65a1", j.ApplyURL)
				assert.Equal(t, src.CareersURL, j.SourceURL)
				assert.JSONEq(t, `{"id":"65a1","title":" Data  Engineer ","department":"Analytics","officelocation_show_arr":["Bengaluru","Mumbai"],"emp_type":"Full Time","created_on":"2025-01-10"}`, string(j.RawPayload))
			},
		},
		{
			name: "Fallback Id And Epoch",
			raw: ats.RawJob{
				"designation_display_name": "Analyst",
				"title":                    "",
				"officelocation_arr":       "Remote",
				"job_posting_on":           float64(1704067200),
			},
			check: func(t *testing.T, raw ats.RawJob) {
				j := a.Normalize(raw, src)
				assert.Equal(t, ats.FallbackID("|"), j.ExternalID)
				assert.Equal(t, "Analyst", j.Title)
				assert.Equal(t, "2024-01-01T00:00:00Z", j.PostedAt)
				assert.Equal(t, "remote", j.RemoteType)
				assert.Equal(t, src.CareersURL, j.ApplyURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.raw)
		})
	}
}
