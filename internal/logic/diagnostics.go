package logic

import (
	"fmt"
	"strings"

	"github.com/avct/uasurfer"

	"github.com/patrickwarner/adsignal/internal/models"
)

// ClientInfo summarizes a User-Agent string for the diagnostics view.
type ClientInfo struct {
	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// Diagnostics is a read-only dump of what the classifier matched on the
// current page. It is informational only and never mutates the environment.
type Diagnostics struct {
	Parameters []models.Observation `json:"parameters"`
	Cookies    []models.Observation `json:"cookies"`
	Referrer   string               `json:"referrer"`
	UserAgent  string               `json:"user_agent"`
	Client     ClientInfo           `json:"client"`
}

// ResolveClient parses a raw User-Agent string with uasurfer.
func ResolveClient(uaString string) ClientInfo {
	u := uasurfer.Parse(uaString)

	var deviceType string
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		deviceType = "desktop"
	case uasurfer.DevicePhone:
		deviceType = "mobile"
	case uasurfer.DeviceTablet:
		deviceType = "tablet"
	default:
		deviceType = "other"
	}

	v := u.OS.Version
	osName := fmt.Sprintf("%s %d.%d.%d", strings.TrimPrefix(u.OS.Name.String(), "OS"), v.Major, v.Minor, v.Patch)
	bv := u.Browser.Version
	browser := fmt.Sprintf("%s %d.%d.%d", strings.TrimPrefix(u.Browser.Name.String(), "Browser"), bv.Major, bv.Minor, bv.Patch)

	return ClientInfo{
		DeviceType: deviceType,
		OS:         osName,
		Browser:    browser,
		IsBot:      u.IsBot(),
	}
}

// Diagnose collects the matched parameters and cookies of env together with
// the raw referrer and user agent.
func Diagnose(env Environment, x Extractor, c *Classifier) Diagnostics {
	obs := x.Extract(env)
	ua, err := env.ReadUserAgent()
	if err != nil {
		ua = ""
	}
	return Diagnostics{
		Parameters: c.Matched(obs.Params),
		Cookies:    c.Matched(obs.Cookies),
		Referrer:   obs.Referrer,
		UserAgent:  ua,
		Client:     ResolveClient(ua),
	}
}

// Format renders the diagnostics as the plain-text block shown by the panel.
func (d Diagnostics) Format() string {
	var b strings.Builder
	b.WriteString("Detected parameters:\n")
	writePairs(&b, d.Parameters)
	b.WriteString("\nDetected cookies:\n")
	writePairs(&b, d.Cookies)
	b.WriteString("\nReferrer: ")
	b.WriteString(orNone(d.Referrer))
	b.WriteString("\n\nUser agent:\n")
	b.WriteString(d.UserAgent)
	b.WriteString("\n")
	return b.String()
}

func writePairs(b *strings.Builder, obs []models.Observation) {
	if len(obs) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, o := range obs {
		fmt.Fprintf(b, "%s: %s\n", o.Key, o.Value)
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
