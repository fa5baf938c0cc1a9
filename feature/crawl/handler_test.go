package crawl

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"ats-catalog/core/storage/mocks"
	"ats-catalog/feature/ats"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, adapter *stubAdapter, sources []ats.Source, opts ...Option) *fiber.App {
	t.Helper()
	o, _ := newTestOrchestrator(t, adapter, sources, opts...)
	app := fiber.New()
	feature := NewFeature(o, zap.NewNop())
	require.True(t, feature.IsEnabled())
	assert.Equal(t, "crawl", feature.Name())
	require.NoError(t, feature.Load(app))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHandleRunSource(t *testing.T) {
	adapter := &stubAdapter{name: "stub", batches: map[string][]ats.RawJob{
		"acme":   {{"id": "A1"}, {"id": "A2"}},
		"globex": {{"id": "G1"}},
	}}
	app := setupTestApp(t, adapter, []ats.Source{source("acme")})

	t.Run("Configured Source", func(t *testing.T) {
		var res RunResult
		require.Equal(t, fiber.StatusOK, doJSON(t, app, "GET", "/api/jobs/run/stub", &res))
		assert.Equal(t, "acme", res.Company)
		assert.Equal(t, 2, res.Fetched)
		assert.Equal(t, 2, res.New)
	})

	t.Run("Query Overrides", func(t *testing.T) {
		var res RunResult
		path := "/api/jobs/run/stub?company=globex&careers_url=https://globex.example.com/careers&page_size=10"
		require.Equal(t, fiber.StatusOK, doJSON(t, app, "GET", path, &res))
		assert.Equal(t, "globex", res.Company)
		assert.Equal(t, "https://globex.example.com/careers/api", res.Endpoint)
		assert.Equal(t, 1, res.New)
	})
}

func TestHandleRunSource_BadRequests(t *testing.T) {
	adapter := &stubAdapter{name: "stub"}
	app := setupTestApp(t, adapter, nil)

	tests := []struct {
		name string
		path string
	}{
		{"Unknown Ats", "/api/jobs/run/workday?company=acme&careers_url=https://acme.example.com"},
		{"Missing Company", "/api/jobs/run/stub?careers_url=https://acme.example.com"},
		{"Relative Careers URL", "/api/jobs/run/stub?company=acme&careers_url=/careers"},
		{"Page Size Too Large", "/api/jobs/run/stub?company=acme&careers_url=https://acme.example.com&page_size=101"},
		{"Pages Not A Number", "/api/jobs/run/stub?company=acme&careers_url=https://acme.example.com&pages=all"},
		{"Pages Zero", "/api/jobs/run/stub?company=acme&careers_url=https://acme.example.com&pages=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			assert.Equal(t, fiber.StatusBadRequest, doJSON(t, app, "GET", tt.path, &body))
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Zero(t, adapter.calls)
}

func TestHandleRunSource_UpstreamFailure(t *testing.T) {
	adapter := &stubAdapter{name: "stub", fail: map[string]error{"acme": errUpstream}}
	app := setupTestApp(t, adapter, []ats.Source{source("acme")})

	var body struct {
		Error  string    `json:"error"`
		Result RunResult `json:"result"`
	}
	assert.Equal(t, fiber.StatusBadGateway, doJSON(t, app, "GET", "/api/jobs/run/stub", &body))
	assert.Equal(t, "fetch: status 503", body.Error)
	assert.NotZero(t, body.Result.RunID)
}

func TestHandleRunAll(t *testing.T) {
	adapter := &stubAdapter{
		name:    "stub",
		batches: map[string][]ats.RawJob{"acme": {{"id": "A1"}}},
		fail:    map[string]error{"initech": errUpstream},
	}
	app := setupTestApp(t, adapter, []ats.Source{source("acme"), source("initech")})

	var body struct {
		Results []RunResult `json:"results"`
		Failed  int         `json:"failed"`
	}
	require.Equal(t, fiber.StatusOK, doJSON(t, app, "POST", "/api/crawl", &body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, 1, body.Failed)
	assert.Equal(t, 1, body.Results[0].New)
}

func TestHandleListSources(t *testing.T) {
	app := setupTestApp(t, &stubAdapter{name: "stub"}, []ats.Source{source("acme")})

	var sources []ats.Source
	require.Equal(t, fiber.StatusOK, doJSON(t, app, "GET", "/api/sources", &sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "acme", sources[0].Company)
}

func TestHandleListSnapshots(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app := setupTestApp(t, &stubAdapter{name: "stub"}, nil)
		assert.Equal(t, fiber.StatusNotFound, doJSON(t, app, "GET", "/api/snapshots", nil))
	})

	t.Run("Enabled", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "snapshots", mock.Anything).
			Return(objectChan(minio.ObjectInfo{Key: "snapshots/stub/acme.json", Size: 10}))
		app := setupTestApp(t, &stubAdapter{name: "stub"}, nil, WithArchive(NewArchive(client, "snapshots", nil)))

		var list []SnapshotInfo
		require.Equal(t, fiber.StatusOK, doJSON(t, app, "GET", "/api/snapshots", &list))
		require.Len(t, list, 1)
		assert.Equal(t, "snapshots/stub/acme.json", list[0].Key)
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, statusFor(ats.ErrInvalidSource))
	assert.Equal(t, fiber.StatusBadRequest, statusFor(ats.ErrUnknownAdapter))
	assert.Equal(t, fiber.StatusBadGateway, statusFor(&FetchError{Err: errUpstream}))
	assert.Equal(t, fiber.StatusInternalServerError, statusFor(errUpstream))
}

func TestFeature_DisabledWithoutOrchestrator(t *testing.T) {
	assert.False(t, NewFeature(nil, nil).IsEnabled())
}
