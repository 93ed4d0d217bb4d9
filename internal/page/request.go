package page

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/patrickwarner/adsignal/internal/models"
)

// SnapshotFromRequest treats an incoming HTTP request as the page: the
// request URL (with scheme and host) is the page URL, the raw Cookie header
// is the cookie string and the Referer header is the referrer.
func SnapshotFromRequest(r *http.Request) models.PageSnapshot {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return models.PageSnapshot{
		URL:       scheme + "://" + r.Host + r.URL.RequestURI(),
		Cookie:    strings.Join(r.Header.Values("Cookie"), "; "),
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
	}
}

// Response is an Environment for a page served over HTTP. Reads come from
// the request snapshot; cookie writes are sent to the client as Set-Cookie
// headers and URL writes become the redirect target. Both are also applied
// to the in-request view so a re-evaluation sees them.
type Response struct {
	*Memory
	w        http.ResponseWriter
	redirect string
}

// NewResponse wraps the snapshot of the current request and its writer.
func NewResponse(s models.PageSnapshot, w http.ResponseWriter) *Response {
	return &Response{Memory: NewMemory(s), w: w}
}

// WriteURL records rawURL as the location the client should be sent to.
func (p *Response) WriteURL(rawURL string) error {
	p.redirect = rawURL
	return p.Memory.WriteURL(rawURL)
}

// WriteCookie emits a Set-Cookie header and updates the request view.
func (p *Response) WriteCookie(c *http.Cookie) error {
	if c == nil || c.Name == "" {
		return nil
	}
	line := models.CookieLine(c)
	if line == "" {
		return fmt.Errorf("invalid cookie %q", c.Name)
	}
	p.w.Header().Add("Set-Cookie", line)
	return p.Memory.WriteCookie(c)
}

// Redirect returns the URL written by remediation, if any.
func (p *Response) Redirect() (string, bool) {
	return p.redirect, p.redirect != ""
}
