package logic

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickwarner/adsignal/internal/models"
)

// CookieEpoch is the expiry written to delete a cookie.
var CookieEpoch = time.Unix(0, 0).UTC()

// Remove neutralizes a beneficiary by mutating its source in env. URL
// parameters are dropped from the query string, cookies are overwritten
// with an expired copy. A key that is already gone is a no-op. Referrer
// beneficiaries return ErrNotRemovable and leave env untouched.
//
// Remove does not refresh anything; callers evaluate env again to obtain
// the new verdict.
func Remove(env Environment, b models.Beneficiary) error {
	if env == nil {
		return ErrNilEnvironment
	}
	switch b.Type {
	case models.SourceURLParam:
		return removeURLParam(env, b.Key)
	case models.SourceCookie:
		return removeCookie(env, b.Key)
	default:
		return fmt.Errorf("%w: %s", ErrNotRemovable, b.Name)
	}
}

func removeURLParam(env Environment, key string) error {
	raw, err := env.ReadURL()
	if err != nil {
		return fmt.Errorf("read url: %w", err)
	}
	cleaned, removed := StripQueryKey(raw, key)
	if !removed {
		return nil
	}
	if err := env.WriteURL(cleaned); err != nil {
		return fmt.Errorf("write url: %w", err)
	}
	return nil
}

// StripQueryKey removes every query pair whose decoded key equals key. The
// remaining pairs keep their order and raw encoding; everything before the
// query and the fragment are preserved. The '?' is dropped when the query
// ends up empty. removed reports whether any pair was dropped.
func StripQueryKey(rawURL, key string) (cleaned string, removed bool) {
	fragment := ""
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL, fragment = rawURL[:i], rawURL[i:]
	}
	base, query, hasQuery := strings.Cut(rawURL, "?")
	if !hasQuery {
		return base + fragment, false
	}

	var kept []string
	for _, segment := range strings.Split(query, "&") {
		if segment == "" {
			continue
		}
		k, _, _ := strings.Cut(segment, "=")
		if decodeComponent(k) == key {
			removed = true
			continue
		}
		kept = append(kept, segment)
	}
	if !removed {
		return rawURL + fragment, false
	}
	if len(kept) == 0 {
		return base + fragment, true
	}
	return base + "?" + strings.Join(kept, "&") + fragment, true
}

func removeCookie(env Environment, key string) error {
	raw, err := env.ReadCookies()
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	present := false
	for _, o := range ParseCookies(raw) {
		if o.Key == key {
			present = true
			break
		}
	}
	if !present {
		return nil
	}

	host := ""
	if pageURL, err := env.ReadURL(); err == nil {
		if u, err := url.Parse(pageURL); err == nil {
			host = u.Hostname()
		}
	}
	c := ExpiredCookie(key, host)
	if models.CookieLine(c) == "" {
		return fmt.Errorf("%w: cookie %q cannot be expired", ErrNotRemovable, key)
	}
	if err := env.WriteCookie(c); err != nil {
		return fmt.Errorf("write cookie: %w", err)
	}
	return nil
}

// ExpiredCookie returns the assignment that deletes cookie name for host.
func ExpiredCookie(name, host string) *http.Cookie {
	return &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		Domain:  host,
		Expires: CookieEpoch,
		MaxAge:  -1,
	}
}
