// Package page provides Environment implementations: an in-memory page
// built from a snapshot, an HTTP request/response pair and a live browser
// tab driven through go-rod.
package page

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickwarner/adsignal/internal/models"
)

// Memory is an in-memory page. It is not safe for concurrent use.
type Memory struct {
	url       string
	cookies   []string // trimmed raw cookie entries, document order
	referrer  string
	userAgent string

	writes []*http.Cookie
	now    func() time.Time
}

// NewMemory builds a page from a snapshot.
func NewMemory(s models.PageSnapshot) *Memory {
	m := &Memory{
		url:       s.URL,
		referrer:  s.Referrer,
		userAgent: s.UserAgent,
		now:       time.Now,
	}
	for _, entry := range strings.Split(s.Cookie, ";") {
		if entry = strings.TrimSpace(entry); entry != "" {
			m.cookies = append(m.cookies, entry)
		}
	}
	return m
}

// Snapshot returns the current page state.
func (m *Memory) Snapshot() models.PageSnapshot {
	return models.PageSnapshot{
		URL:       m.url,
		Cookie:    strings.Join(m.cookies, "; "),
		Referrer:  m.referrer,
		UserAgent: m.userAgent,
	}
}

// CookieWrites returns every cookie assignment applied so far.
func (m *Memory) CookieWrites() []*http.Cookie {
	return m.writes
}

func (m *Memory) ReadURL() (string, error) { return m.url, nil }

func (m *Memory) WriteURL(rawURL string) error {
	m.url = rawURL
	return nil
}

func (m *Memory) ReadCookies() (string, error) {
	return strings.Join(m.cookies, "; "), nil
}

// WriteCookie applies c the way a cookie store would for this single page:
// an expired assignment deletes every entry named c.Name, any other
// assignment replaces the first entry with that name or appends one.
func (m *Memory) WriteCookie(c *http.Cookie) error {
	if c == nil || c.Name == "" {
		return nil
	}
	if models.CookieLine(c) == "" {
		return fmt.Errorf("invalid cookie %q", c.Name)
	}
	m.writes = append(m.writes, c)

	if expired(c, m.now()) {
		kept := m.cookies[:0]
		for _, entry := range m.cookies {
			if entryName(entry) != c.Name {
				kept = append(kept, entry)
			}
		}
		m.cookies = kept
		return nil
	}

	assignment := c.Name + "=" + c.Value
	for i, entry := range m.cookies {
		if entryName(entry) == c.Name {
			m.cookies[i] = assignment
			return nil
		}
	}
	m.cookies = append(m.cookies, assignment)
	return nil
}

func (m *Memory) ReadReferrer() (string, error) { return m.referrer, nil }

func (m *Memory) ReadUserAgent() (string, error) { return m.userAgent, nil }

func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func entryName(entry string) string {
	name, _, _ := strings.Cut(entry, "=")
	return name
}
