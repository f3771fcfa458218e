package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/rehearse/internal/interview"
	"github.com/MikeSquared-Agency/rehearse/internal/session"
	"github.com/MikeSquared-Agency/rehearse/internal/store/memory"
)

type tailsRand struct{}

func (tailsRand) Float64() float64 { return 0.1 }
func (tailsRand) IntN(int) int     { return 0 }

func newTestServer(t *testing.T, apiToken string) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := session.New(memory.New(), nil, tailsRand{}, logger)
	return NewServer(8760, apiToken, svc)
}

func do(t *testing.T, srv *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func startSession(t *testing.T, srv *Server, user, role string) session.Session {
	t.Helper()
	w := do(t, srv, "POST", "/api/v1/sessions", user, `{"role":"`+role+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[session.Session](t, w)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv, "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, "secret")

	w := do(t, srv, "GET", "/api/v1/status", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["service"] != "rehearse" {
		t.Errorf("expected service rehearse, got %v", body["service"])
	}
	if body["required_exchanges"] != float64(6) {
		t.Errorf("expected 6 required exchanges, got %v", body["required_exchanges"])
	}
	if _, ok := body["metrics"].(map[string]any); !ok {
		t.Errorf("expected metrics object, got %v", body["metrics"])
	}
}

func TestRolesEndpoint(t *testing.T) {
	srv := newTestServer(t, "secret")

	w := do(t, srv, "GET", "/api/v1/roles", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[struct {
		Roles []roleSummary `json:"roles"`
	}](t, w)
	if len(body.Roles) != 5 {
		t.Fatalf("expected 5 roles, got %d", len(body.Roles))
	}
	if body.Roles[1].Key != interview.RoleEngineer || body.Roles[1].Title != "Software Engineer" {
		t.Errorf("unexpected second role: %+v", body.Roles[1])
	}
	if body.Roles[0].QuestionCount != 6 {
		t.Errorf("expected 6 questions, got %d", body.Roles[0].QuestionCount)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv, "GET", "/nonexistent", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t, "secret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/history", nil)
			req.Header.Set("X-User-ID", "u1")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestMissingUser(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv, "POST", "/api/v1/sessions", "", `{"role":"sales"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestStartSession(t *testing.T) {
	srv := newTestServer(t, "")

	sess := startSession(t, srv, "u1", "Marketing")
	if sess.Role != interview.RoleMarketing || sess.Status != session.StatusInProgress {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.CurrentQuestion != "Tell me about your background in marketing." {
		t.Errorf("unexpected first question: %q", sess.CurrentQuestion)
	}

	tests := []struct {
		name string
		body string
	}{
		{"unknown role", `{"role":"pilot"}`},
		{"malformed", `{"role":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/v1/sessions", "u1", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestInterviewFlow(t *testing.T) {
	srv := newTestServer(t, "")
	sess := startSession(t, srv, "u1", "retail_associate")
	base := "/api/v1/sessions/" + sess.ID.String()

	w := do(t, srv, "GET", base+"/feedback", "u1", "")
	if w.Code != http.StatusConflict {
		t.Errorf("feedback before completion: expected 409, got %d", w.Code)
	}

	w = do(t, srv, "POST", base+"/responses", "u1", `{"response":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank response: expected 400, got %d", w.Code)
	}

	var last session.RespondResult
	for i := 0; i < 6; i++ {
		w = do(t, srv, "POST", base+"/responses", "u1", `{"response":"I like it."}`)
		if w.Code != http.StatusOK {
			t.Fatalf("response %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
		last = decode[session.RespondResult](t, w)
	}
	if !last.Completed || last.Next != nil {
		t.Errorf("expected completion, got %+v", last)
	}

	w = do(t, srv, "POST", base+"/responses", "u1", `{"response":"extra"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("answer after completion: expected 409, got %d", w.Code)
	}

	w = do(t, srv, "GET", base, "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get session: expected 200, got %d", w.Code)
	}
	got := decode[sessionResponse](t, w)
	if len(got.Exchanges) != 6 || got.Session.Status != session.StatusCompleted {
		t.Errorf("unexpected session state: %d exchanges, status %s", len(got.Exchanges), got.Session.Status)
	}

	w = do(t, srv, "GET", base+"/feedback", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("feedback: expected 200, got %d", w.Code)
	}
	fb := decode[session.Feedback](t, w)
	if fb.OverallScore != 6 || fb.Strengths != "Completed the interview and showed interest" {
		t.Errorf("unexpected feedback: %+v", fb)
	}

	w = do(t, srv, "GET", "/api/v1/history", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	hist := decode[historyResponse](t, w)
	if hist.Count != 1 || hist.History[0].Feedback == nil {
		t.Errorf("unexpected history: %+v", hist)
	}
}

func TestSessionVisibility(t *testing.T) {
	srv := newTestServer(t, "")
	sess := startSession(t, srv, "owner", "sales")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"other user", "/api/v1/sessions/" + sess.ID.String(), http.StatusNotFound},
		{"unknown id", "/api/v1/sessions/6f1c2a8e-8d3b-4f4e-9a57-5f0d3c1b2a90", http.StatusNotFound},
		{"malformed id", "/api/v1/sessions/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "GET", tt.path, "intruder", "")
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestHistoryLimit(t *testing.T) {
	srv := newTestServer(t, "")

	for _, q := range []string{"?limit=0", "?limit=abc", "?limit=-3"} {
		w := do(t, srv, "GET", "/api/v1/history"+q, "u1", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}

	w := do(t, srv, "GET", "/api/v1/history?limit=500", "u1", "")
	if w.Code != http.StatusOK {
		t.Errorf("oversized limit should be capped, got %d", w.Code)
	}
	hist := decode[historyResponse](t, w)
	if hist.Count != 0 || hist.History == nil {
		t.Errorf("expected an empty history list, got %+v", hist)
	}
}
