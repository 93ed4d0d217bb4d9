package page

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/patrickwarner/adsignal/internal/models"
)

// Browser is an Environment backed by a live browser tab. URL removal uses
// history.replaceState, so the tab is never reloaded.
type Browser struct {
	page *rod.Page
}

// NewBrowser wraps an already navigated rod page.
func NewBrowser(p *rod.Page) *Browser {
	return &Browser{page: p}
}

// BrowserOptions controls how OpenBrowser launches Chrome.
type BrowserOptions struct {
	// ControlURL attaches to a running browser instead of launching one.
	ControlURL string
	Headless   bool
	Timeout    time.Duration
}

// OpenBrowser launches (or attaches to) Chrome, opens pageURL and waits for
// the load event. The returned close function releases the tab, the browser
// and the timeout.
func OpenBrowser(ctx context.Context, pageURL string, opts BrowserOptions) (*Browser, func(), error) {
	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}

	controlURL := opts.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(opts.Headless)
		u, err := l.Launch()
		if err != nil {
			cancel()
			return nil, nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Cleanup()
		}
		cancel()
		return nil, nil, fmt.Errorf("connect to chrome: %w", err)
	}

	var p *rod.Page
	closeFn := func() {
		if l != nil {
			_ = browser.Close()
			l.Cleanup()
		} else if p != nil {
			// attached browsers outlive the tab
			_ = p.Close()
		}
		cancel()
	}

	p, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("wait load: %w", err)
	}
	return NewBrowser(p), closeFn, nil
}

func (b *Browser) eval(js string, args ...interface{}) (string, error) {
	res, err := b.page.Eval(js, args...)
	if err != nil {
		return "", err
	}
	if res == nil || res.Value.Nil() {
		return "", nil
	}
	return res.Value.String(), nil
}

func (b *Browser) ReadURL() (string, error) {
	return b.eval(`() => location.href`)
}

func (b *Browser) WriteURL(rawURL string) error {
	_, err := b.eval(`(u) => { history.replaceState({}, '', u) }`, rawURL)
	return err
}

func (b *Browser) ReadCookies() (string, error) {
	return b.eval(`() => document.cookie`)
}

// WriteCookie assigns the serialized cookie to document.cookie.
func (b *Browser) WriteCookie(c *http.Cookie) error {
	if c == nil {
		return nil
	}
	assignment := models.CookieLine(c)
	if assignment == "" {
		return fmt.Errorf("invalid cookie %q", c.Name)
	}
	_, err := b.eval(`(c) => { document.cookie = c }`, assignment)
	return err
}

func (b *Browser) ReadReferrer() (string, error) {
	return b.eval(`() => document.referrer`)
}

func (b *Browser) ReadUserAgent() (string, error) {
	return b.eval(`() => navigator.userAgent`)
}
