package panel

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
)

func influencedVerdict() models.Verdict {
	return models.NewVerdict([]models.Beneficiary{
		{Type: models.SourceURLParam, Key: "utm_campaign", Value: "summer", Name: "url-utm_campaign"},
		{Type: models.SourceCookie, Key: "_fbclid", Value: "xyz", Name: "cookie-_fbclid"},
		{Type: models.SourceReferrer, Value: "https://doubleclick.net/", Name: "url-referrer"},
	})
}

func TestViewNeutral(t *testing.T) {
	v := Panel{}.View(models.NeutralVerdict(), logic.Diagnostics{})
	assert.Equal(t, StateNeutral, v.State)
	assert.Equal(t, HeaderClean, v.Header)
	assert.Empty(t, v.Entries)
	assert.Empty(t, v.Diagnostics)
}

func TestViewInfluenced(t *testing.T) {
	v := Panel{}.View(influencedVerdict(), logic.Diagnostics{})
	assert.Equal(t, StateAlert, v.State)
	assert.Equal(t, HeaderDetected, v.Header)
	require.Len(t, v.Entries, 3)
	assert.True(t, v.Entries[0].Removable)
	assert.True(t, v.Entries[1].Removable)
	assert.False(t, v.Entries[2].Removable)
}

func TestToggleDiagnostics(t *testing.T) {
	p := Panel{}
	p = p.Toggle()
	assert.True(t, p.DiagnosticsOpen)

	d := logic.Diagnostics{UserAgent: "agent"}
	v := p.View(models.NeutralVerdict(), d)
	assert.Contains(t, v.Diagnostics, "User agent:\nagent")

	p = p.Toggle()
	assert.False(t, p.DiagnosticsOpen)
	assert.Empty(t, p.View(models.NeutralVerdict(), d).Diagnostics)
}

func TestRenderPanel(t *testing.T) {
	p := Panel{DiagnosticsOpen: true}
	view := p.View(influencedVerdict(), logic.Diagnostics{Referrer: "https://doubleclick.net/"})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, view))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, HeaderDetected, doc.Find(".panel-header").Text())
	assert.Equal(t, 3, doc.Find(".beneficiary").Length())
	assert.Equal(t, 2, doc.Find(".beneficiary button").Length(), "referrer row has no remove button")

	first := doc.Find(".beneficiary button").First()
	name, _ := first.Attr("data-name")
	assert.Equal(t, "url-utm_campaign", name)
	assert.Equal(t, "cookie-_fbclid", doc.Find(".beneficiary strong").Eq(1).Text())
	assert.Contains(t, doc.Find(".diagnostics-content pre").Text(), "Referrer: https://doubleclick.net/")
}

func TestRenderEscapesValues(t *testing.T) {
	view := Panel{}.View(models.NewVerdict([]models.Beneficiary{
		{Type: models.SourceURLParam, Key: "utm_source", Value: "<script>alert(1)</script>", Name: "url-utm_source"},
	}), logic.Diagnostics{})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, view))
	assert.NotContains(t, buf.String(), "<script>")

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "<script>alert(1)</script>", doc.Find(".beneficiary span").Text())
}
