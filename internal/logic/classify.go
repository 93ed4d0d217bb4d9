package logic

import "github.com/patrickwarner/adsignal/internal/models"

// Classifier tags observations as ad-related using a PatternSet.
type Classifier struct {
	patterns PatternSet
}

// NewClassifier returns a Classifier for the given rules. Nil rules never match.
func NewClassifier(p PatternSet) *Classifier {
	return &Classifier{patterns: p.normalized()}
}

// IsAdRelated applies the predicate for the observation's source:
//   - URL params match on the key rule OR the value rule,
//   - cookies match on the key rule only,
//   - the referrer matches when non-empty and the keyword rule finds a token.
func (c *Classifier) IsAdRelated(source models.SourceType, key, value string) bool {
	switch source {
	case models.SourceURLParam:
		return c.patterns.ParamKey.Matches(key) || c.patterns.ValueKeyword.Matches(value)
	case models.SourceCookie:
		return c.patterns.CookieKey.Matches(key)
	case models.SourceReferrer:
		return value != "" && c.patterns.ReferrerKeyword.Matches(value)
	default:
		return false
	}
}

// Matched returns the observations of obs that are ad-related, in order.
func (c *Classifier) Matched(obs []models.Observation) []models.Observation {
	out := []models.Observation{}
	for _, o := range obs {
		if c.IsAdRelated(o.Source, o.Key, o.Value) {
			out = append(out, o)
		}
	}
	return out
}

// Classify builds the Verdict for one extraction pass. Beneficiaries are
// ordered URL params first, then cookies, then the referrer.
func (c *Classifier) Classify(obs models.Observations) models.Verdict {
	var beneficiaries []models.Beneficiary
	for _, o := range c.Matched(obs.Params) {
		beneficiaries = append(beneficiaries, models.NewBeneficiary(o))
	}
	for _, o := range c.Matched(obs.Cookies) {
		beneficiaries = append(beneficiaries, models.NewBeneficiary(o))
	}
	if c.IsAdRelated(models.SourceReferrer, "", obs.Referrer) {
		beneficiaries = append(beneficiaries, models.NewBeneficiary(models.Observation{
			Source: models.SourceReferrer,
			Value:  obs.Referrer,
		}))
	}
	return models.NewVerdict(beneficiaries)
}
