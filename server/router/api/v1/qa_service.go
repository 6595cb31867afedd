package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/andyjacy/aicommonplatform/qa"
	"github.com/andyjacy/aicommonplatform/store"
)

// AskRequest is the ask endpoint payload.
type AskRequest struct {
	Question  string         `json:"question"`
	UserID    string         `json:"user_id"`
	SessionID string         `json:"session_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// AskQuestion runs the pipeline for one question and returns the answer with
// its execution trace. Collaborator failures never surface as HTTP errors;
// they show up as lowered confidence and fewer sources in the payload.
func (s *APIV1Service) AskQuestion(c echo.Context) error {
	if s.askLimiter != nil && !s.askLimiter.Allow() {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}

	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	resp := s.Orchestrator.Ask(c.Request().Context(), qa.Question{
		Text:      req.Question,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Extra:     req.Context,
	})

	s.saveHistory(c, req.UserID, resp)

	return c.JSON(http.StatusOK, resp)
}

// saveHistory persists a completed run. Persistence is best-effort: a storage
// failure must not fail a request that already has an answer.
func (s *APIV1Service) saveHistory(c echo.Context, userID string, resp *qa.Response) {
	if s.Store == nil || resp.Status == qa.StatusCached {
		return
	}

	sources, err := json.Marshal(resp.Sources)
	if err != nil {
		sources = []byte("[]")
	}
	traceID := ""
	traceData := []byte("{}")
	if resp.Trace != nil {
		traceID = resp.Trace.RunID
		if data, err := json.Marshal(resp.Trace); err == nil {
			traceData = data
		}
	}

	if _, err := s.Store.CreateQAHistory(c.Request().Context(), &store.QAHistory{
		QAID:          resp.ID,
		UserID:        userID,
		Question:      resp.Question,
		Answer:        resp.Answer,
		Intent:        string(resp.Intent),
		Confidence:    resp.Confidence,
		Sources:       string(sources),
		ExecutionTime: resp.ExecutionTime,
		TraceID:       traceID,
		TraceData:     string(traceData),
	}); err != nil {
		slog.Warn("failed to save qa history", "id", resp.ID, "error", err)
	}
}

// GetQuestionHistory returns one persisted run by its question id.
func (s *APIV1Service) GetQuestionHistory(c echo.Context) error {
	id := c.Param("id")
	history, err := s.Store.GetQAHistory(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch history").SetInternal(err)
	}
	if history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "qa record not found")
	}

	var sources []string
	if err := json.Unmarshal([]byte(history.Sources), &sources); err != nil {
		sources = []string{}
	}
	var traceData map[string]any
	if err := json.Unmarshal([]byte(history.TraceData), &traceData); err != nil {
		traceData = map[string]any{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":             history.QAID,
		"user_id":        history.UserID,
		"question":       history.Question,
		"answer":         history.Answer,
		"intent":         history.Intent,
		"confidence":     history.Confidence,
		"sources":        sources,
		"execution_time": history.ExecutionTime,
		"trace_id":       history.TraceID,
		"trace":          traceData,
		"created_ts":     history.CreatedTs,
	})
}

// GetStats returns aggregate counters.
func (s *APIV1Service) GetStats(c echo.Context) error {
	total, err := s.Store.CountQAHistory(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count history").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total_questions": total,
	})
}
