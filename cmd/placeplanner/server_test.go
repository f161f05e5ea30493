package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"placeplanner/shared/go/config"
	"placeplanner/shared/go/middleware"
)

func TestHandlerChain(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.ImagesDir = t.TempDir()
	cfg.RateLimit.Requests = 1
	cfg.RateLimit.Window = time.Minute
	handler := newHTTPHandler(cfg, newSQLiteStore(t))

	req := httptest.NewRequest(http.MethodOptions, "/user-places", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected CORS origin echo, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/places", nil)
	req.Header.Set("Authorization", "Bearer alice")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the second request to be rate limited, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Requests = 0
	handler := newHTTPHandler(cfg, newSQLiteStore(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "placeplanner_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
