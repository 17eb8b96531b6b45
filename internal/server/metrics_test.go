package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/mask"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest("GET", "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_Collectors(t *testing.T) {
	m := NewMetrics()
	if m.handler == nil {
		t.Fatal("Metrics.handler should be initialized")
	}

	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	m.DecrementActiveRequests()
	m.ObserveRequest("/api/price", 3*time.Millisecond)
	m.RecordMask(mask.Result{Mode: mask.Phone, Matched: 4, Skipped: 1, Failed: 1,
		Handles: []mask.Handle{{Mode: mask.Phone}, {Mode: mask.Phone}}})

	body := scrape(t, m)
	for _, want := range []string{
		"fieldfmt_active_requests 1",
		`fieldfmt_requests_total{path="/api/price"} 1`,
		`fieldfmt_request_duration_seconds_count{path="/api/price"} 1`,
		`fieldfmt_masks_applied_total{mode="phone"} 2`,
		`fieldfmt_mask_failures_total{mode="phone"} 1`,
		`fieldfmt_elements_skipped_total{mode="phone"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %s", want)
		}
	}
}

// TestMetrics_Isolated checks that two Metrics do not share counters.
func TestMetrics_Isolated(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveRequest("/health", time.Millisecond)
	if strings.Contains(scrape(t, b), `fieldfmt_requests_total{path="/health"}`) {
		t.Error("requests observed on one Metrics leaked into another")
	}
}

func TestServer_metricsMiddleware(t *testing.T) {
	s := &Server{metrics: NewMetrics()}

	called := false
	handler := s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/bytes", http.NoBody))

	if !called {
		t.Fatal("next handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	body := scrape(t, s.metrics)
	if !strings.Contains(body, "fieldfmt_active_requests 0") {
		t.Error("active requests gauge should be back to 0")
	}
	if !strings.Contains(body, `fieldfmt_requests_total{path="/api/bytes"} 1`) {
		t.Error("request should be counted under its path")
	}
}

func TestServer_handleMetrics(t *testing.T) {
	tests := []struct {
		method string
		want   int
	}{
		{"GET", http.StatusOK},
		{"POST", http.StatusMethodNotAllowed},
		{"PUT", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			s := &Server{metrics: NewMetrics(), logger: newTestLogger()}
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(tt.method, "/metrics", http.NoBody))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && !strings.Contains(rec.Body.String(), "fieldfmt_") {
				t.Error("response should contain fieldfmt metrics")
			}
		})
	}
}

// testLogger is a minimal logger for testing that implements logging.Logger.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}
