package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(nil, "test")
	h.SetReady(false)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp HealthResponse
	decodeHealth(t, rec, &resp)
	if resp.Status != healthStatusOK {
		t.Errorf("Status = %q, want %q", resp.Status, healthStatusOK)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		shutdown   bool
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "ready",
			ready:      true,
			wantCode:   http.StatusOK,
			wantStatus: healthStatusOK,
			wantChecks: map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK},
		},
		{
			name:       "not ready",
			ready:      false,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: healthStatusNotReady,
			wantChecks: map[string]string{"ready": healthStatusNotReady, "shutdown": healthStatusOK},
		},
		{
			name:       "shutting down",
			ready:      true,
			shutdown:   true,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: healthStatusNotReady,
			wantChecks: map[string]string{"ready": healthStatusOK, "shutdown": healthStatusShuttingDown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestServerContext(t)
			if tt.shutdown {
				_ = sc.Shutdown()
			}
			h := NewHealthChecker(sc, "test")
			h.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp HealthResponse
			decodeHealth(t, rec, &resp)
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantStatus)
			}
			for k, v := range tt.wantChecks {
				if resp.Checks[k] != v {
					t.Errorf("Checks[%q] = %q, want %q", k, resp.Checks[k], v)
				}
			}
		})
	}
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newTestServerContext(t)
	h := NewHealthChecker(sc, "1.2.3")

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp DetailedHealthResponse
	decodeHealth(t, rec, &resp)
	if resp.Version != "1.2.3" || resp.Uptime == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Calendar != healthStatusPending {
		t.Errorf("Calendar = %q, want %q before first use", resp.Calendar, healthStatusPending)
	}
	if resp.DefaultTimezone != "UTC" {
		t.Errorf("DefaultTimezone = %q, want UTC", resp.DefaultTimezone)
	}

	sc.SetCalendarClient(stubSource{})
	rec = httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
	decodeHealth(t, rec, &resp)
	if resp.Calendar != healthStatusOK {
		t.Errorf("Calendar = %q, want %q", resp.Calendar, healthStatusOK)
	}
}
