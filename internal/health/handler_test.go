// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

var (
	up   = CheckFunc(func(context.Context) error { return nil })
	down = CheckFunc(func(context.Context) error { return errors.New("connection refused") })
)

func readiness(t *testing.T, h *Handler) (int, ReadinessResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp ReadinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, resp
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all healthy",
			deps:       []Dependency{{Name: "database", Checker: up}, {Name: "redis", Checker: up}},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "optional down",
			deps:       []Dependency{{Name: "database", Checker: up}, {Name: "content", Checker: down, Optional: true}},
			wantStatus: http.StatusOK,
			wantBody:   "degraded",
		},
		{
			name:       "required down",
			deps:       []Dependency{{Name: "database", Checker: down}, {Name: "content", Checker: down, Optional: true}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unavailable",
		},
		{
			name:       "missing checker",
			deps:       []Dependency{{Name: "redis"}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := readiness(t, NewHandler(tt.deps...))
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("body status = %q, want %q", resp.Status, tt.wantBody)
			}
			if len(resp.Checks) != len(tt.deps) {
				t.Errorf("got %d checks, want %d", len(resp.Checks), len(tt.deps))
			}
		})
	}
}

func TestReadiness_HidesErrorDetail(t *testing.T) {
	_, resp := readiness(t, NewHandler(Dependency{Name: "database", Checker: down}))

	if resp.Checks[0].Message != "ping failed" {
		t.Errorf("message = %q, want generic", resp.Checks[0].Message)
	}
}

func TestShutdown(t *testing.T) {
	h := NewHandler(Dependency{Name: "database", Checker: up})
	h.SetShutdown(true)

	for _, path := range []string{"/livez", "/readyz"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if path == "/livez" {
			h.Liveness(rec, req)
		} else {
			h.Readiness(rec, req)
		}
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rec.Code)
		}
	}
}
