package logic

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/adsignal/internal/models"
)

// failingEnv returns an error from every read.
type failingEnv struct{}

var errUnavailable = errors.New("unavailable")

func (failingEnv) ReadURL() (string, error)         { return "", errUnavailable }
func (failingEnv) WriteURL(string) error            { return errUnavailable }
func (failingEnv) ReadCookies() (string, error)     { return "", errUnavailable }
func (failingEnv) WriteCookie(*http.Cookie) error   { return errUnavailable }
func (failingEnv) ReadReferrer() (string, error)    { return "", errUnavailable }
func (failingEnv) ReadUserAgent() (string, error)   { return "", errUnavailable }

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []models.Observation
	}{
		{"empty", "", []models.Observation{}},
		{"question mark only", "?", []models.Observation{}},
		{
			name:  "order and duplicates",
			query: "b=2&a=1&b=3",
			want: []models.Observation{
				{Source: models.SourceURLParam, Key: "b", Value: "2"},
				{Source: models.SourceURLParam, Key: "a", Value: "1"},
				{Source: models.SourceURLParam, Key: "b", Value: "3"},
			},
		},
		{
			name:  "decoding",
			query: "q=red+shoes&utm_source=news%20letter&x=%zz",
			want: []models.Observation{
				{Source: models.SourceURLParam, Key: "q", Value: "red shoes"},
				{Source: models.SourceURLParam, Key: "utm_source", Value: "news letter"},
				{Source: models.SourceURLParam, Key: "x", Value: "%zz"},
			},
		},
		{
			name:  "invalid escape keeps valid neighbours decoded",
			query: "k=x%20y%zz&t=50%&u=%4",
			want: []models.Observation{
				{Source: models.SourceURLParam, Key: "k", Value: "x y%zz"},
				{Source: models.SourceURLParam, Key: "t", Value: "50%"},
				{Source: models.SourceURLParam, Key: "u", Value: "%4"},
			},
		},
		{
			name:  "empty segments and bare keys",
			query: "&&flag&k=&=v",
			want: []models.Observation{
				{Source: models.SourceURLParam, Key: "flag", Value: ""},
				{Source: models.SourceURLParam, Key: "k", Value: ""},
				{Source: models.SourceURLParam, Key: "", Value: "v"},
			},
		},
		{
			name:  "value keeps later equals signs",
			query: "ref=source=mail",
			want: []models.Observation{
				{Source: models.SourceURLParam, Key: "ref", Value: "source=mail"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(tt.query))
		})
	}
}

func TestRawQueryIgnoresFragment(t *testing.T) {
	assert.Equal(t, "a=1", rawQuery("https://x.example/p?a=1#frag?b=2"))
	assert.Equal(t, "", rawQuery("https://x.example/p#a?b=1"))
	assert.Equal(t, "", rawQuery("https://x.example/p"))
}

func TestParseCookies(t *testing.T) {
	got := ParseCookies(" session=abc ;_ga=GA1.2.3; malformed; =nokey;token=a=b;;empty=")
	want := []models.Observation{
		{Source: models.SourceCookie, Key: "session", Value: "abc"},
		{Source: models.SourceCookie, Key: "_ga", Value: "GA1.2.3"},
		{Source: models.SourceCookie, Key: "token", Value: "a=b"},
		{Source: models.SourceCookie, Key: "empty", Value: ""},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []models.Observation{}, ParseCookies(""))
}

func TestCookieValuesStayEncoded(t *testing.T) {
	got := ParseCookies("pref=a%20b")
	assert.Equal(t, "a%20b", got[0].Value)
}

func TestExtractAbsorbsReadErrors(t *testing.T) {
	obs := Extractor{}.Extract(failingEnv{})
	assert.Empty(t, obs.Params)
	assert.Empty(t, obs.Cookies)
	assert.Equal(t, "", obs.Referrer)

	v := newTestEngine().Evaluate(failingEnv{})
	assert.False(t, v.IsAdInfluenced)
}
