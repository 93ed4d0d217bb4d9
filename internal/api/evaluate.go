package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/middleware"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

// EvaluateResponse is the body of POST /api/evaluate.
type EvaluateResponse struct {
	Verdict     models.Verdict     `json:"verdict"`
	Diagnostics *logic.Diagnostics `json:"diagnostics,omitempty"`
	Report      string             `json:"report,omitempty"`
}

// EvaluateHandler classifies the page snapshot in the request body.
// Diagnostics are attached with ?diagnostics=1 or when DebugDiagnostics is set.
func (s *Server) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "EvaluateHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/api/evaluate"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "/api/evaluate"
	const method = "POST"

	data, err := s.readBody(w, r, s.schemas.page)
	if err != nil {
		status := statusFor(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid body")
		logger.Debug("rejected evaluate body", zap.Error(err))
		s.observe(endpoint, method, status, start)
		http.Error(w, err.Error(), status)
		return
	}
	var snap models.PageSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	env := page.NewMemory(snap)
	resp := EvaluateResponse{Verdict: s.Engine.Evaluate(env)}
	if wantDiagnostics(r) || s.Config.DebugDiagnostics {
		d := s.Engine.Diagnose(env)
		resp.Diagnostics = &d
		resp.Report = d.Format()
	}
	span.SetAttributes(
		attribute.Bool("ad_influenced", resp.Verdict.IsAdInfluenced),
		attribute.Int("beneficiaries", len(resp.Verdict.Beneficiaries)),
	)

	s.observe(endpoint, method, http.StatusOK, start)
	s.writeJSON(w, http.StatusOK, resp)
}

func wantDiagnostics(r *http.Request) bool {
	switch r.URL.Query().Get("diagnostics") {
	case "1", "true", "yes":
		return true
	}
	return false
}
