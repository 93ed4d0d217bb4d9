package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/middleware"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

// RemoveRequest is the body of POST /api/remove.
type RemoveRequest struct {
	Page models.PageSnapshot `json:"page"`
	Name string              `json:"name"`
}

// RemoveResponse carries the page after removal, the Set-Cookie lines a
// browser would have received and the refreshed verdict.
type RemoveResponse struct {
	Page      models.PageSnapshot `json:"page"`
	SetCookie []string            `json:"set_cookie"`
	Verdict   models.Verdict      `json:"verdict"`
}

// RemoveHandler strips one named beneficiary from the submitted page.
// Names that are unknown or not removable leave the page unchanged.
func (s *Server) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "RemoveHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/api/remove"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "/api/remove"
	const method = "POST"

	data, err := s.readBody(w, r, s.schemas.remove)
	if err != nil {
		status := statusFor(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid body")
		s.observe(endpoint, method, status, start)
		http.Error(w, err.Error(), status)
		return
	}
	var req RemoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("beneficiary", req.Name))

	env := page.NewMemory(req.Page)
	v, err := s.Engine.RemoveByName(env, req.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remove failed")
		logger.Error("remove beneficiary", zap.String("name", req.Name), zap.Error(err))
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "remove failed", http.StatusInternalServerError)
		return
	}

	resp := RemoveResponse{
		Page:      env.Snapshot(),
		SetCookie: models.CookieLines(env.CookieWrites()),
		Verdict:   v,
	}

	s.observe(endpoint, method, http.StatusOK, start)
	s.writeJSON(w, http.StatusOK, resp)
}
