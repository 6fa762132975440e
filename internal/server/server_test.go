package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/recommend"
	"github.com/spigell/vendor-matcher/internal/sheets"
	"github.com/spigell/vendor-matcher/internal/vendors"
)

type stubService struct {
	resp       *recommend.Response
	err        error
	roster     *vendors.Vendors
	vendorsErr error
	lastReq    ranking.Request
	refresh    bool
	panicOn    bool
}

func (s *stubService) Recommend(_ context.Context, req ranking.Request) (*recommend.Response, error) {
	if s.panicOn {
		panic("boom")
	}
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubService) Vendors(_ context.Context, refresh bool) (*vendors.Vendors, error) {
	s.refresh = refresh
	return s.roster, s.vendorsErr
}

func doRequest(t *testing.T, svc Service, logger *zap.Logger, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	router := NewRouter(svc, logger, Options{})

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) recommend.Response {
	t.Helper()
	var resp recommend.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestRecommendRoute(t *testing.T) {
	svc := &stubService{resp: &recommend.Response{
		Success: true,
		Recommendations: []ranking.Recommendation{
			{Rank: 1, VendorID: "V1", VendorName: "Acme", MatchScore: 88, Strengths: []string{"Strong service match"}, Concerns: []string{}},
		},
		Explanation: "why",
		Source:      ranking.SourceFallback,
	}}

	body := []byte(`{"projectTitle":"Audit","serviceCategory":"SEO","projectDescription":"Technical SEO"}`)
	rec := doRequest(t, svc, nil, http.MethodPost, "/api/recommendations", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastReq.ServiceCategory != "SEO" || svc.lastReq.ProjectTitle != "Audit" {
		t.Fatalf("unexpected request: %+v", svc.lastReq)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || len(resp.Recommendations) != 1 || resp.Source != ranking.SourceFallback {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRecommendRouteNoCandidates(t *testing.T) {
	svc := &stubService{resp: &recommend.Response{Success: false, Message: recommend.NoCandidatesMessage}}

	rec := doRequest(t, svc, nil, http.MethodPost, "/api/recommendations", []byte(`{"projectTitle":"a","serviceCategory":"b","projectDescription":"c"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["success"] != false || raw["message"] != recommend.NoCandidatesMessage {
		t.Fatalf("unexpected body: %v", raw)
	}
	if _, ok := raw["recommendations"]; ok {
		t.Fatalf("expected recommendations to be omitted, got %v", raw)
	}
}

func TestRecommendRouteErrors(t *testing.T) {
	tests := []struct {
		name   string
		svc    *stubService
		body   string
		status int
	}{
		{
			name:   "malformed body",
			svc:    &stubService{},
			body:   `{"projectTitle":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing fields",
			svc:    &stubService{err: &recommend.ValidationError{Fields: []string{"serviceCategory"}}},
			body:   `{"projectTitle":"a"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "data source",
			svc:    &stubService{err: &sheets.DataSourceError{Table: "Vendors", Err: errors.New("403")}},
			body:   `{"projectTitle":"a","serviceCategory":"b","projectDescription":"c"}`,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, tt.svc, nil, http.MethodPost, "/api/recommendations", []byte(tt.body))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Success || resp.Message == "" {
				t.Fatalf("expected failure message, got %+v", resp)
			}
		})
	}
}

func TestVendorsRoute(t *testing.T) {
	svc := &stubService{roster: &vendors.Vendors{Items: []*vendors.Vendor{{ID: "V1", Name: "Acme", Status: vendors.StatusActive}}}}

	rec := doRequest(t, svc, nil, http.MethodGet, "/api/vendors?refresh=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.refresh {
		t.Fatalf("expected refresh to be forwarded")
	}

	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0]["vendor_id"] != "V1" || items[0]["status"] != "Active" {
		t.Fatalf("unexpected vendors: %v", items)
	}

	doRequest(t, svc, nil, http.MethodGet, "/api/vendors", nil)
	if svc.refresh {
		t.Fatalf("expected refresh to default to false")
	}
}

func TestVendorsRouteError(t *testing.T) {
	svc := &stubService{vendorsErr: &sheets.DataSourceError{Table: "Vendors", Err: errors.New("quota exceeded")}}

	rec := doRequest(t, svc, nil, http.MethodGet, "/api/vendors", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Failed to fetch vendors" || body.Details != "quota exceeded" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthRoute(t *testing.T) {
	rec := doRequest(t, &stubService{}, nil, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMiddlewareLogsAndRecovers(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	router := NewRouter(&stubService{panicOn: true}, logger, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", bytes.NewBufferString(`{"projectTitle":"a"}`))
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected incoming request id to be reused")
	}

	if entries := observed.FilterMessage("panic").All(); len(entries) != 1 {
		t.Fatalf("expected panic to be logged, got %d entries", len(entries))
	}

	entries := observed.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access log entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["request_id"] != "req-42" || ctx["path"] != "/api/recommendations" {
		t.Fatalf("unexpected access log fields: %v", ctx)
	}
	if status, _ := ctx["status"].(int64); status != http.StatusInternalServerError {
		t.Fatalf("expected status 500 in access log, got %v", ctx["status"])
	}
}
