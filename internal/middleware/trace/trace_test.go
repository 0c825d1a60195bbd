package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "cashflow/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf})

	h := applog.Middleware(logger)(NewMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).Info("inside")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cash-flows", nil))

	id := rec.Header().Get(HeaderRequestID)
	if !strings.HasPrefix(id, "req_") {
		t.Errorf("request id = %q, want req_ prefix", id)
	}
	if !strings.Contains(buf.String(), "request_id="+id) {
		t.Errorf("handler logger should carry request_id=%s: %s", id, buf.String())
	}
}

func TestMiddleware_ReusesIncomingRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"well formed", "abc-123", true},
		{"with spaces", "abc 123", false},
		{"too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/cash-flows", nil)
			req.Header.Set(HeaderRequestID, tt.incoming)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get(HeaderRequestID) == tt.incoming; got != tt.reused {
				t.Errorf("reused = %v, want %v (header %q)", got, tt.reused, rec.Header().Get(HeaderRequestID))
			}
		})
	}
}

func TestMiddleware_AccessLogAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf})

	m := NewMiddleware(func(*http.Request) string { return "10.0.0.7" })
	h := applog.Middleware(logger)(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/cash-flows", nil))

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=500", "client_ip=10.0.0.7", "request_id=req_", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("access log missing %q: %s", want, out)
		}
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 1 || metrics.ServerErrors != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate request id %s", id)
		}
		seen[id] = true
	}
}
