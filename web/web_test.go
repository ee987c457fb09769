package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(runner Runner) *Server {
	return New(NewService(runner, nil, NewResponseCache()), ":0")
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestExtractEndpoint(t *testing.T) {
	runner := &fixedRunner{set: staticSet("ok@good.com")}
	h := newTestServer(runner).Handler()

	for _, path := range []string{"/extract", "/api/v1/extract"} {
		rec := do(t, h, http.MethodPost, path, `{"urls":["good.com"],"filter":"valid"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

		var resp ExtractResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, StatusSuccess, resp.Status)
		require.Equal(t, 1, resp.Count)
		require.Equal(t, "ok@good.com", resp.Emails[0].Address)
	}

	// The second call hit the cache.
	require.Equal(t, int32(1), runner.calls.Load())
}

func TestExtractEndpointCachedMarker(t *testing.T) {
	h := newTestServer(&fixedRunner{set: staticSet("ok@good.com")}).Handler()

	first := do(t, h, http.MethodPost, "/extract", `{"urls":["good.com"]}`)
	require.NotContains(t, first.Body.String(), `"cached"`)

	second := do(t, h, http.MethodPost, "/extract", `{"urls":["good.com"]}`)
	require.Contains(t, second.Body.String(), `"cached":true`)
}

func TestExtractEndpointInvalidSeeds(t *testing.T) {
	h := newTestServer(&fixedRunner{}).Handler()

	rec := do(t, h, http.MethodPost, "/extract", `{"urls":["notaurl",""]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "error", resp["status"])
	require.EqualValues(t, 0, resp["count"])
	require.Equal(t, []any{}, resp["emails"])
	require.NotContains(t, resp, "stats")
}

func TestExtractEndpointMalformedBody(t *testing.T) {
	h := newTestServer(&fixedRunner{}).Handler()

	rec := do(t, h, http.MethodPost, "/extract", `{"urls":`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestClearCacheEndpoint(t *testing.T) {
	runner := &fixedRunner{set: staticSet("ok@good.com")}
	h := newTestServer(runner).Handler()

	do(t, h, http.MethodPost, "/extract", `{"urls":["good.com"]}`)

	rec := do(t, h, http.MethodPost, "/clear-cache", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"success","message":"Cache cleared"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/v1/cache", ``)
	require.Equal(t, http.StatusOK, rec.Code)

	do(t, h, http.MethodPost, "/extract", `{"urls":["good.com"]}`)
	require.Equal(t, int32(2), runner.calls.Load())
}

func TestExportEndpoint(t *testing.T) {
	h := newTestServer(&fixedRunner{}).Handler()

	rec := do(t, h, http.MethodPost, "/export", `{"emails":["a@b.com"],"format":"csv"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "attachment; filename=emails.csv", rec.Header().Get("Content-Disposition"))
	require.Equal(t, "email\na@b.com\n", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/export", `{"emails":["a@b.com"],"format":"pdf"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown export format")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(&fixedRunner{}).Handler()

	rec := do(t, h, http.MethodGet, "/extract", ``)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.JSONEq(t, `{"code":405,"message":"Method not allowed"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestServer(&fixedRunner{}).Handler()

	rec := do(t, h, http.MethodGet, "/health", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestExtractEndpointNonStringFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   int
	}{
		{name: "number", filter: `1`, want: 2},
		{name: "bool", filter: `true`, want: 2},
		{name: "object", filter: `{"mode":"valid"}`, want: 2},
		{name: "array", filter: `["invalid"]`, want: 2},
		{name: "null", filter: `null`, want: 1},
		{name: "string", filter: `"invalid"`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&fixedRunner{set: staticSet("a@@bad", "ok@good.com")}).Handler()

			rec := do(t, h, http.MethodPost, "/extract", `{"urls":["good.com"],"filter":`+tt.filter+`}`)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp ExtractResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tt.want, resp.Count)
		})
	}
}
