package logic

import (
	"net/http"
	"strings"

	"github.com/patrickwarner/adsignal/internal/models"

	"go.uber.org/zap"
)

// Environment is the narrow capability through which the engine reads and
// mutates the ambient page state. Implementations live in internal/page.
type Environment interface {
	// ReadURL returns the full page URL.
	ReadURL() (string, error)
	// WriteURL replaces the visible page URL without reloading the page.
	WriteURL(rawURL string) error
	// ReadCookies returns the raw document cookie string.
	ReadCookies() (string, error)
	// WriteCookie applies a cookie assignment to the document cookie store.
	WriteCookie(c *http.Cookie) error
	// ReadReferrer returns the raw document referrer, possibly empty.
	ReadReferrer() (string, error)
	// ReadUserAgent returns the host user agent string.
	ReadUserAgent() (string, error)
}

// Extractor pulls raw observations out of an Environment. It never filters
// or interprets them and keeps no state between calls.
type Extractor struct {
	Logger *zap.Logger
}

func (e Extractor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Extract reads all three sources.
func (e Extractor) Extract(env Environment) models.Observations {
	return models.Observations{
		Params:   e.URLParams(env),
		Cookies:  e.Cookies(env),
		Referrer: e.Referrer(env),
	}
}

// URLParams decodes the page query string in order, keeping duplicates.
func (e Extractor) URLParams(env Environment) []models.Observation {
	raw, err := env.ReadURL()
	if err != nil {
		e.logger().Debug("read url", zap.Error(err))
		return []models.Observation{}
	}
	return ParseQuery(rawQuery(raw))
}

// Cookies splits the raw document cookie string into observations.
func (e Extractor) Cookies(env Environment) []models.Observation {
	raw, err := env.ReadCookies()
	if err != nil {
		e.logger().Debug("read cookies", zap.Error(err))
		return []models.Observation{}
	}
	return ParseCookies(raw)
}

// Referrer returns the raw referrer, or "" when it cannot be read.
func (e Extractor) Referrer(env Environment) string {
	ref, err := env.ReadReferrer()
	if err != nil {
		e.logger().Debug("read referrer", zap.Error(err))
		return ""
	}
	return ref
}

// rawQuery returns the encoded query of a URL string: the text between the
// first '?' and the fragment marker.
func rawQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	i := strings.IndexByte(rawURL, '?')
	if i < 0 {
		return ""
	}
	return rawURL[i+1:]
}

// ParseQuery decodes an encoded query string the way URLSearchParams does:
// pairs separated by '&', '+' decoded as a space, percent escapes decoded
// when valid and kept literally otherwise, empty segments ignored.
func ParseQuery(query string) []models.Observation {
	out := []models.Observation{}
	query = strings.TrimPrefix(query, "?")
	for _, segment := range strings.Split(query, "&") {
		if segment == "" {
			continue
		}
		k, v, _ := strings.Cut(segment, "=")
		out = append(out, models.Observation{
			Source: models.SourceURLParam,
			Key:    decodeComponent(k),
			Value:  decodeComponent(v),
		})
	}
	return out
}

// decodeComponent decodes '+' and each valid %XX escape on its own; an
// invalid escape is kept literally without spoiling its neighbours.
func decodeComponent(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '+':
			buf = append(buf, ' ')
		case s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

// ParseCookies splits a document cookie string on ';'. Each trimmed entry
// is cut on its first '='; entries without '=' or with an empty name are
// skipped. Values are returned exactly as stored.
func ParseCookies(header string) []models.Observation {
	out := []models.Observation{}
	for _, entry := range strings.Split(header, ";") {
		entry = strings.TrimSpace(entry)
		k, v, ok := strings.Cut(entry, "=")
		if !ok || k == "" {
			continue
		}
		out = append(out, models.Observation{
			Source: models.SourceCookie,
			Key:    k,
			Value:  v,
		})
	}
	return out
}
