package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

const (
	// InfluenceHeader reports the verdict for the current request.
	InfluenceHeader = "X-Ad-Influenced"
	// RemoveParam names a beneficiary to strip from the current request.
	RemoveParam = "adsignal_remove"
)

type verdictKey struct{}

// WithVerdict returns a copy of ctx carrying v.
func WithVerdict(ctx context.Context, v models.Verdict) context.Context {
	return context.WithValue(ctx, verdictKey{}, v)
}

// VerdictFromContext returns the verdict stored by AdInfluence.
func VerdictFromContext(ctx context.Context) (models.Verdict, bool) {
	v, ok := ctx.Value(verdictKey{}).(models.Verdict)
	return v, ok
}

// AdInfluence treats each request as the page being inspected. The verdict
// is stored in the request context and reported in the X-Ad-Influenced
// header. A request carrying adsignal_remove=<name> is answered with a 303
// to the cleaned URL instead, with Set-Cookie headers expiring any removed
// cookie.
func AdInfluence(engine *logic.Engine, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := LoggerFromRequest(r, logger)
			snap := page.SnapshotFromRequest(r)

			if name := r.URL.Query().Get(RemoveParam); name != "" {
				cleaned, _ := logic.StripQueryKey(snap.URL, RemoveParam)
				snap.URL = cleaned
				env := page.NewResponse(snap, w)
				v, err := engine.RemoveByName(env, name)
				if err != nil {
					log.Warn("remove beneficiary", zap.String("name", name), zap.Error(err))
				}
				target := cleaned
				if u, ok := env.Redirect(); ok {
					target = u
				}
				log.Debug("redirecting after removal",
					zap.String("name", name),
					zap.String("location", target),
					zap.Bool("influenced", v.IsAdInfluenced))
				w.Header().Set(InfluenceHeader, strconv.FormatBool(v.IsAdInfluenced))
				http.Redirect(w, r, localTarget(target), http.StatusSeeOther)
				return
			}

			v := engine.Evaluate(page.NewMemory(snap))
			w.Header().Set(InfluenceHeader, strconv.FormatBool(v.IsAdInfluenced))
			next.ServeHTTP(w, r.WithContext(WithVerdict(r.Context(), v)))
		})
	}
}

// localTarget keeps redirects on the current host by dropping scheme and
// authority from rawURL.
func localTarget(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	return u.RequestURI()
}
