package models

// SourceType identifies where an observation was read from. The string value
// doubles as the prefix of a Beneficiary name ("url-utm_source").
type SourceType string

const (
	// SourceURLParam is a query parameter of the page URL.
	SourceURLParam SourceType = "url"
	// SourceCookie is an entry of the document cookie string.
	SourceCookie SourceType = "cookie"
	// SourceReferrer is the document referrer. It has no key and cannot be removed.
	SourceReferrer SourceType = "referrer"
)

// ReferrerBeneficiaryName is the fixed name given to a flagged referrer.
const ReferrerBeneficiaryName = "url-referrer"

// Observation is a single raw key/value pair read from the page environment.
// Observations are extracted fresh on every evaluation pass and never mutated.
type Observation struct {
	Source SourceType `json:"source"`
	Key    string     `json:"key,omitempty"`
	Value  string     `json:"value"`
}

// Observations groups the ordered results of one extraction pass.
// Params keep query-string order (duplicate keys included), Cookies keep
// cookie-string order and Referrer is the raw referrer, possibly empty.
type Observations struct {
	Params   []Observation `json:"params"`
	Cookies  []Observation `json:"cookies"`
	Referrer string        `json:"referrer"`
}

// Beneficiary is a signal attributed as ad-related by the classifier.
// Name is the stable display/removal identifier: "<type>-<key>" for URL
// parameters and cookies, ReferrerBeneficiaryName for the referrer.
type Beneficiary struct {
	Type  SourceType `json:"type"`
	Key   string     `json:"key,omitempty"`
	Value string     `json:"value"`
	Name  string     `json:"name"`
}

// NewBeneficiary builds the Beneficiary for a flagged observation.
func NewBeneficiary(o Observation) Beneficiary {
	if o.Source == SourceReferrer {
		return Beneficiary{Type: SourceReferrer, Value: o.Value, Name: ReferrerBeneficiaryName}
	}
	return Beneficiary{
		Type:  o.Source,
		Key:   o.Key,
		Value: o.Value,
		Name:  string(o.Source) + "-" + o.Key,
	}
}

// Removable reports whether remediation can neutralize this signal.
func (b Beneficiary) Removable() bool {
	return b.Type == SourceURLParam || b.Type == SourceCookie
}

// Verdict is the classifier output for one evaluation pass. IsAdInfluenced
// is true exactly when Beneficiaries is non-empty.
type Verdict struct {
	IsAdInfluenced bool          `json:"isAdInfluenced"`
	Beneficiaries  []Beneficiary `json:"beneficiaries"`
}

// NewVerdict derives a Verdict from an ordered beneficiary list.
func NewVerdict(beneficiaries []Beneficiary) Verdict {
	if beneficiaries == nil {
		beneficiaries = []Beneficiary{}
	}
	return Verdict{
		IsAdInfluenced: len(beneficiaries) > 0,
		Beneficiaries:  beneficiaries,
	}
}

// NeutralVerdict is the verdict reported when no signal was found or when
// evaluation could not complete.
func NeutralVerdict() Verdict {
	return NewVerdict(nil)
}

// Find returns the first beneficiary with the given name.
func (v Verdict) Find(name string) (Beneficiary, bool) {
	for _, b := range v.Beneficiaries {
		if b.Name == name {
			return b, true
		}
	}
	return Beneficiary{}, false
}

// Label returns "influenced" or "clean"; used for metrics and log fields.
func (v Verdict) Label() string {
	if v.IsAdInfluenced {
		return "influenced"
	}
	return "clean"
}
