package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rehearse/internal/interview"
	"github.com/MikeSquared-Agency/rehearse/internal/session"
)

const maxHistoryLimit = 50

type roleSummary struct {
	Key           interview.Role `json:"key"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	QuestionCount int            `json:"question_count"`
}

type startRequest struct {
	Role string `json:"role"`
}

type respondRequest struct {
	Response string `json:"response"`
}

type sessionResponse struct {
	Session   *session.Session   `json:"session"`
	Exchanges []session.Exchange `json:"exchanges"`
}

type historyResponse struct {
	History []session.HistoryEntry `json:"history"`
	Count   int                    `json:"count"`
}

// listRoles handles GET /api/v1/roles
func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	out := make([]roleSummary, 0, len(interview.Roles))
	for _, role := range interview.Roles {
		cfg, err := interview.Config(role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, roleSummary{
			Key:           role,
			Title:         cfg.Title,
			Description:   cfg.Description,
			QuestionCount: len(cfg.Questions),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": out})
}

// startSession handles POST /api/v1/sessions
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	role, err := interview.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.svc.Start(r.Context(), userFrom(r.Context()), role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// getSession handles GET /api/v1/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, exchanges, err := s.svc.Get(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if exchanges == nil {
		exchanges = []session.Exchange{}
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Exchanges: exchanges})
}

// respond handles POST /api/v1/sessions/{id}/responses
func (s *Server) respond(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := s.svc.Respond(r.Context(), userFrom(r.Context()), id, req.Response)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// feedback handles GET /api/v1/sessions/{id}/feedback
func (s *Server) feedback(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	fb, err := s.svc.Feedback(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// history handles GET /api/v1/history
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit := session.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.svc.History(r.Context(), userFrom(r.Context()), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{History: entries, Count: len(entries)})
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, session.ErrSessionInProgress),
		errors.Is(err, session.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrEmptyResponse),
		errors.Is(err, interview.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrMissingUser):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
