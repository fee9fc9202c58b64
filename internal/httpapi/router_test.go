package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"interview-prep/internal/visitor"
)

func TestStatusRecorderWriteTracksAndTruncates(t *testing.T) {
	base := httptest.NewRecorder()
	recorder := &statusRecorder{
		ResponseWriter: base,
		statusCode:     http.StatusOK,
		maxLogBytes:    10,
	}

	payload := []byte("abcdefghijklmnopqrstuvwxyz")
	written, err := recorder.Write(payload)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != len(payload) {
		t.Fatalf("written bytes = %d, want %d", written, len(payload))
	}
	if recorder.bytesWritten != len(payload) {
		t.Fatalf("bytesWritten = %d, want %d", recorder.bytesWritten, len(payload))
	}
	if recorder.logBody.Len() != 10 {
		t.Fatalf("log body length = %d, want 10", recorder.logBody.Len())
	}
	if !recorder.truncated {
		t.Fatalf("expected truncated flag to be true")
	}
	if base.Body.Len() != len(payload) {
		t.Fatalf("client body length = %d, want %d", base.Body.Len(), len(payload))
	}
}

func TestRouterMethodNotAllowedListsMethods(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		target string
		allow  string
	}{
		{method: http.MethodPost, target: "/api/sections", allow: "GET"},
		{method: http.MethodGet, target: "/api/quizzes/caching/results", allow: "POST"},
		{method: http.MethodPost, target: "/api/progress", allow: "DELETE, GET"},
		{method: http.MethodDelete, target: "/api/progress/theme", allow: "PUT"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := doRequest(t, env.handler, tc.method, tc.target, "")
			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", rec.Code)
			}
			if got := rec.Header().Get("Allow"); got != tc.allow {
				t.Fatalf("Allow = %q, want %q", got, tc.allow)
			}
		})
	}
}

func TestRouterUnknownAPIPathIsJSON404(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload healthResponse
	decodeBody(t, rec, &payload)
	if payload.Status != "ok" || payload.Stats.Sections != 2 || payload.Stats.Questions != 3 {
		t.Fatalf("unexpected health payload: %+v", payload)
	}
}

func TestRequestLoggerLogsErrorBodies(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := newTestEnv(t)

	router := NewRouter(env.api)
	router.Use(RequestLogger(zap.New(core), 8))
	handler := withVisitor(testVisitorID, router)

	doRequest(t, handler, http.MethodGet, "/api/sections", "")
	doRequest(t, handler, http.MethodGet, "/api/sections/nope", "")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("success should log at info, got %s", entries[0].Level)
	}

	failed := entries[1].ContextMap()
	if entries[1].Level != zapcore.WarnLevel || failed["status"] != int64(http.StatusNotFound) {
		t.Fatalf("unexpected failure entry: %s %+v", entries[1].Level, failed)
	}
	if failed["body"] != `{"error"` || failed["truncated"] != true {
		t.Fatalf("expected truncated body capture, got %+v", failed)
	}
	if failed["visitor_id"] != testVisitorID {
		t.Fatalf("visitor id not logged: %+v", failed)
	}
}

func TestVisitorMiddlewareWithAPI(t *testing.T) {
	env := newTestEnv(t)
	issuer, err := visitor.NewIssuer(visitor.Config{Secret: "test"})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}

	router := NewRouter(env.api)
	router.Use(issuer.Middleware(nil))

	rec := doRequest(t, router, http.MethodGet, "/api/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("expected visitor cookie to be issued")
	}
}
