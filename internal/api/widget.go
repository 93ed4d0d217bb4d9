package api

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/middleware"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
	"github.com/patrickwarner/adsignal/internal/panel"
)

// WidgetHandler renders the panel fragment for the page described by the
// url, cookie, referrer and user_agent query fields.
func (s *Server) WidgetHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "/api/widget"
	const method = "GET"

	q := r.URL.Query()
	snap := models.PageSnapshot{
		URL:       q.Get("url"),
		Cookie:    q.Get("cookie"),
		Referrer:  q.Get("referrer"),
		UserAgent: q.Get("user_agent"),
	}
	if snap.URL == "" {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "url required", http.StatusBadRequest)
		return
	}
	if snap.UserAgent == "" {
		snap.UserAgent = r.UserAgent()
	}

	s.observe(endpoint, method, http.StatusOK, start)
	s.renderPanel(w, logger, snap, wantDiagnostics(r))
}

// renderPanel evaluates snap and writes the HTML panel.
func (s *Server) renderPanel(w http.ResponseWriter, logger *zap.Logger, snap models.PageSnapshot, diagnostics bool) {
	env := page.NewMemory(snap)
	view := panel.Panel{DiagnosticsOpen: diagnostics}.View(s.Engine.Evaluate(env), s.Engine.Diagnose(env))

	var buf bytes.Buffer
	if err := panel.Render(&buf, view); err != nil {
		logger.Error("render panel", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
