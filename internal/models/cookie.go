package models

import (
	"net/http"
	"strconv"
	"strings"
)

// CookieLine returns the Set-Cookie / document.cookie assignment for c.
// Names that document.cookie accepts but net/http rejects as tokens, such
// as "trk[1]", are written by hand. It returns "" when c cannot be written
// at all: an empty name, or a name or value holding ';', control bytes or
// whitespace, or a name holding '='.
func CookieLine(c *http.Cookie) string {
	if c == nil || c.Name == "" {
		return ""
	}
	if s := c.String(); s != "" {
		return s
	}
	if !validCookiePart(c.Name) || strings.ContainsRune(c.Name, '=') || !validCookiePart(c.Value) {
		return ""
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(http.TimeFormat))
	}
	switch {
	case c.MaxAge < 0:
		b.WriteString("; Max-Age=0")
	case c.MaxAge > 0:
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	return b.String()
}

// CookieLines serializes cs, dropping assignments that cannot be written.
func CookieLines(cs []*http.Cookie) []string {
	out := []string{}
	for _, c := range cs {
		if line := CookieLine(c); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func validCookiePart(s string) bool {
	for i := 0; i < len(s); i++ {
		if ch := s[i]; ch <= ' ' || ch == ';' || ch == 0x7f {
			return false
		}
	}
	return true
}
