package logic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatternOverrides is the on-disk form of a rule override file. Empty
// fields keep the built-in rule. Patterns are used as written, so a
// case-insensitive override must carry its own (?i) flag.
//
//	strict: true
//	cookie_key: '(_|^)(ga|utm|gclid|_fbp)'
type PatternOverrides struct {
	Strict          bool   `yaml:"strict"`
	ParamKey        string `yaml:"param_key"`
	CookieKey       string `yaml:"cookie_key"`
	ReferrerKeyword string `yaml:"referrer_keyword"`
	ValueKeyword    string `yaml:"value_keyword"`
}

// BuildPatterns resolves the effective PatternSet. strict selects the
// token-delimited parameter key rule unless the overrides replace it.
func BuildPatterns(o PatternOverrides, strict bool) (PatternSet, error) {
	p := DefaultPatterns()
	if strict || o.Strict {
		p = StrictPatterns()
	}

	overrides := []struct {
		field   string
		pattern string
		dst     *Rule
	}{
		{"param_key", o.ParamKey, &p.ParamKey},
		{"cookie_key", o.CookieKey, &p.CookieKey},
		{"referrer_keyword", o.ReferrerKeyword, &p.ReferrerKeyword},
		{"value_keyword", o.ValueKeyword, &p.ValueKeyword},
	}
	for _, ov := range overrides {
		if ov.pattern == "" {
			continue
		}
		rule, err := NewRegexRule(ov.pattern)
		if err != nil {
			return PatternSet{}, fmt.Errorf("%s: %w", ov.field, err)
		}
		*ov.dst = rule
	}
	return p, nil
}

// ParsePatterns decodes a YAML override document and builds the PatternSet.
func ParsePatterns(data []byte, strict bool) (PatternSet, error) {
	var o PatternOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return PatternSet{}, fmt.Errorf("parse patterns: %w", err)
	}
	return BuildPatterns(o, strict)
}

// LoadPatterns returns the PatternSet for the given override file. An empty
// path yields the built-in rules.
func LoadPatterns(path string, strict bool) (PatternSet, error) {
	if path == "" {
		return BuildPatterns(PatternOverrides{}, strict)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PatternSet{}, fmt.Errorf("read patterns file: %w", err)
	}
	return ParsePatterns(data, strict)
}
