package logic

import (
	"fmt"
	"regexp"
)

// Default rule sources. They are matched with Go's RE2 engine; \b is the
// ASCII word boundary, the same as the browser rules they mirror.
const (
	// DefaultParamKeyPattern flags tracking-style query parameter names.
	// The trailing bare "ad" alternative deliberately over-matches names such
	// as "address" or "adult"; use StrictParamKeyPattern to tighten it.
	DefaultParamKeyPattern = `^(utm_|gad|gclid|fbclid|msclkid|trk_|adid|dclid)|ad`
	// StrictParamKeyPattern only accepts "ad"/"ads" as an underscore- or
	// edge-delimited token.
	StrictParamKeyPattern = `^(utm_|gad|gclid|fbclid|msclkid|trk_|adid|dclid)|(^|_)ads?(_|$)`
	// DefaultCookieKeyPattern flags tracking cookie names.
	DefaultCookieKeyPattern = `(_|^)(ga|utm|gclid|fbclid|msclkid|trk|adid|targeting)`
	// DefaultReferrerKeywordPattern flags marketing vocabulary in the referrer.
	DefaultReferrerKeywordPattern = `(\b|_)(ads?|track|analytics|marketing|doubleclick|affiliate|promo)`
	// DefaultValueKeywordPattern flags campaign key=value fragments inside a
	// parameter value, case-insensitively.
	DefaultValueKeywordPattern = `(?i)(source=|medium=|campaign=|term=|content=|affiliate|promo)`
)

// Rule is a predicate over a raw string.
type Rule interface {
	Matches(s string) bool
}

// RuleFunc adapts an ordinary function to the Rule interface.
type RuleFunc func(s string) bool

// Matches calls f(s).
func (f RuleFunc) Matches(s string) bool { return f(s) }

// RegexRule is a Rule backed by a compiled regular expression.
type RegexRule struct {
	re *regexp.Regexp
}

// NewRegexRule compiles pattern into a Rule.
func NewRegexRule(pattern string) (*RegexRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile rule %q: %w", pattern, err)
	}
	return &RegexRule{re: re}, nil
}

// MustRegexRule is like NewRegexRule but panics on an invalid pattern.
// It is meant for the package-level defaults only.
func MustRegexRule(pattern string) *RegexRule {
	r, err := NewRegexRule(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// Matches reports whether s contains a match of the rule.
func (r *RegexRule) Matches(s string) bool {
	if r == nil || r.re == nil {
		return false
	}
	return r.re.MatchString(s)
}

// String returns the source pattern.
func (r *RegexRule) String() string {
	if r == nil || r.re == nil {
		return ""
	}
	return r.re.String()
}

// PatternSet holds the four independent rule groups used by the classifier.
// A PatternSet is built once at startup and not modified afterwards.
type PatternSet struct {
	ParamKey        Rule
	CookieKey       Rule
	ReferrerKeyword Rule
	ValueKeyword    Rule
}

// DefaultPatterns returns the reference rule set.
func DefaultPatterns() PatternSet {
	return PatternSet{
		ParamKey:        MustRegexRule(DefaultParamKeyPattern),
		CookieKey:       MustRegexRule(DefaultCookieKeyPattern),
		ReferrerKeyword: MustRegexRule(DefaultReferrerKeywordPattern),
		ValueKeyword:    MustRegexRule(DefaultValueKeywordPattern),
	}
}

// StrictPatterns returns the reference rule set with the token-delimited
// parameter key rule.
func StrictPatterns() PatternSet {
	p := DefaultPatterns()
	p.ParamKey = MustRegexRule(StrictParamKeyPattern)
	return p
}

// normalized replaces nil rules with never-matching ones so a partially
// populated PatternSet cannot cause a nil dereference.
func (p PatternSet) normalized() PatternSet {
	never := RuleFunc(func(string) bool { return false })
	if p.ParamKey == nil {
		p.ParamKey = never
	}
	if p.CookieKey == nil {
		p.CookieKey = never
	}
	if p.ReferrerKeyword == nil {
		p.ReferrerKeyword = never
	}
	if p.ValueKeyword == nil {
		p.ValueKeyword = never
	}
	return p
}
