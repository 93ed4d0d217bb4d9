package api

import (
	"net/http"
	"time"

	"github.com/patrickwarner/adsignal/internal/middleware"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

// InspectResponse is the JSON body of GET /inspect/... .
type InspectResponse struct {
	Page    models.PageSnapshot `json:"page"`
	Verdict models.Verdict      `json:"verdict"`
}

// InspectHandler reports the verdict AdInfluence computed for this very
// request. format=html renders the panel instead of JSON.
func (s *Server) InspectHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "/inspect"
	const method = "GET"

	snap := page.SnapshotFromRequest(r)
	if r.URL.Query().Get("format") == "html" {
		s.observe(endpoint, method, http.StatusOK, start)
		s.renderPanel(w, logger, snap, wantDiagnostics(r))
		return
	}

	v, ok := middleware.VerdictFromContext(r.Context())
	if !ok {
		v = s.Engine.Evaluate(page.NewMemory(snap))
	}
	s.observe(endpoint, method, http.StatusOK, start)
	s.writeJSON(w, http.StatusOK, InspectResponse{Page: snap, Verdict: v})
}
