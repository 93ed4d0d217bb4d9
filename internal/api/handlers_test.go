package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/config"
	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/middleware"
	"github.com/patrickwarner/adsignal/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) (*Server, *observability.MockMetricsRegistry) {
	t.Helper()
	metrics := observability.NewMockMetricsRegistry()
	engine := logic.NewEngine(logic.DefaultPatterns(), zap.NewNop(), metrics)
	srv, err := NewServer(zap.NewNop(), engine, metrics, config.Config{MaxBodyBytes: 4096})
	require.NoError(t, err)
	return srv, metrics
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthHandler(t *testing.T) {
	srv, metrics := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, 1, metrics.Requests["health GET 200"])
}

func TestEvaluateHandler(t *testing.T) {
	srv, metrics := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/evaluate",
		`{"url":"https://shop.example.com/?utm_campaign=summer&page=2","cookie":"session=abc; _fbclid=xyz","referrer":"https://doubleclick.net/"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Verdict.IsAdInfluenced)
	require.Len(t, resp.Verdict.Beneficiaries, 3)
	assert.Equal(t, "url-utm_campaign", resp.Verdict.Beneficiaries[0].Name)
	assert.Equal(t, "cookie-_fbclid", resp.Verdict.Beneficiaries[1].Name)
	assert.Equal(t, "url-referrer", resp.Verdict.Beneficiaries[2].Name)
	assert.Nil(t, resp.Diagnostics)
	assert.Equal(t, 1, metrics.Requests["/api/evaluate POST 200"])
}

func TestEvaluateHandlerWireFormat(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/evaluate", `{"url":"https://a.example/?gclid=1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"verdict":{"isAdInfluenced":true,"beneficiaries":[{"type":"url","key":"gclid","value":"1","name":"url-gclid"}]}}`,
		rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/evaluate", `{"url":"https://a.example/"}`)
	assert.JSONEq(t, `{"verdict":{"isAdInfluenced":false,"beneficiaries":[]}}`, rec.Body.String())
}

func TestEvaluateHandlerDiagnostics(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/evaluate?diagnostics=1", `{"url":"https://a.example/?utm_source=x","user_agent":"curl/8.0"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Diagnostics)
	assert.Len(t, resp.Diagnostics.Parameters, 1)
	assert.Equal(t, "curl/8.0", resp.Diagnostics.UserAgent)
	assert.Contains(t, resp.Report, "Detected parameters:\nutm_source: x\n")
}

func TestEvaluateHandlerRejectsInvalidBody(t *testing.T) {
	srv, metrics := newTestServer(t)
	for _, body := range []string{
		`{}`,
		`{"url":""}`,
		`{"url":"https://a.example/","extra":true}`,
		`{"url":42}`,
		`not json`,
	} {
		rec := do(t, srv, http.MethodPost, "/api/evaluate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, 5, metrics.Requests["/api/evaluate POST 400"])
}

func TestEvaluateHandlerBodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"url":"https://a.example/?q=` + strings.Repeat("x", 5000) + `"}`
	rec := do(t, srv, http.MethodPost, "/api/evaluate", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRemoveHandlerCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/remove",
		`{"page":{"url":"https://shop.example.com/","cookie":"session=abc; _ga=GA1.2.xxx"},"name":"cookie-_ga"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RemoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session=abc", resp.Page.Cookie)
	assert.False(t, resp.Verdict.IsAdInfluenced)
	require.Len(t, resp.SetCookie, 1)
	assert.True(t, strings.HasPrefix(resp.SetCookie[0], "_ga="))
	assert.Contains(t, resp.SetCookie[0], "Domain=shop.example.com")
}

func TestRemoveHandlerNonTokenCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/remove",
		`{"page":{"url":"https://shop.example.com/","cookie":"trk[1]=a; session=abc"},"name":"cookie-trk[1]"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RemoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session=abc", resp.Page.Cookie)
	assert.False(t, resp.Verdict.IsAdInfluenced)
	require.Len(t, resp.SetCookie, 1)
	assert.True(t, strings.HasPrefix(resp.SetCookie[0], "trk[1]=;"), resp.SetCookie[0])
}

func TestRemoveHandlerURLParam(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/remove",
		`{"page":{"url":"https://shop.example.com/item?utm_source=google&id=7#top"},"name":"url-utm_source"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RemoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://shop.example.com/item?id=7#top", resp.Page.URL)
	assert.Empty(t, resp.SetCookie)
	assert.False(t, resp.Verdict.IsAdInfluenced)
}

func TestRemoveHandlerNoOps(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, name := range []string{"url-referrer", "cookie-missing"} {
		rec := do(t, srv, http.MethodPost, "/api/remove",
			`{"page":{"url":"https://a.example/?x=1","referrer":"https://ads.example/"},"name":"`+name+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp RemoveResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "https://a.example/?x=1", resp.Page.URL)
		assert.Equal(t, "https://ads.example/", resp.Page.Referrer)
		assert.True(t, resp.Verdict.IsAdInfluenced)
		assert.Empty(t, resp.SetCookie)
	}

	rec := do(t, srv, http.MethodPost, "/api/remove", `{"page":{"url":"https://a.example/"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWidgetHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/widget?url=https%3A%2F%2Fa.example%2F%3Futm_source%3Dx&referrer=https%3A%2F%2Fads.example%2F&diagnostics=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Ad Tracking Detected", doc.Find(".panel-header").Text())
	assert.Equal(t, 2, doc.Find(".beneficiary").Length())
	assert.Equal(t, 1, doc.Find("button[data-name]").Length(), "referrer row has no remove button")
	assert.Contains(t, doc.Find(".diagnostics-content pre").Text(), "Referrer: https://ads.example/")

	rec = do(t, srv, http.MethodGet, "/api/widget", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInspectRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "http://shop.example.com/inspect/landing?fbclid=abc", nil)
	req.Header.Set("Cookie", "session=1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(middleware.InfluenceHeader))

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "http://shop.example.com/inspect/landing?fbclid=abc", resp.Page.URL)
	require.Len(t, resp.Verdict.Beneficiaries, 1)
	assert.Equal(t, "url-fbclid", resp.Verdict.Beneficiaries[0].Name)
}

func TestInspectRouteRemoval(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "http://shop.example.com/inspect/landing?fbclid=abc&adsignal_remove=url-fbclid", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/inspect/landing", rec.Header().Get("Location"))
	assert.Equal(t, "false", rec.Header().Get(middleware.InfluenceHeader))
}

func TestAPIRateLimited(t *testing.T) {
	metrics := observability.NewMockMetricsRegistry()
	engine := logic.NewEngine(logic.DefaultPatterns(), zap.NewNop(), metrics)
	srv, err := NewServer(zap.NewNop(), engine, metrics, config.Config{
		RateLimitEnabled:    true,
		RateLimitCapacity:   1,
		RateLimitRefillRate: 1,
	})
	require.NoError(t, err)

	body := `{"url":"https://a.example/"}`
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/evaluate", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, srv, http.MethodPost, "/api/evaluate", body).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", "").Code, "health is not limited")
	assert.Equal(t, 1, metrics.RateLimited["api"])
}
