// Package panel turns a verdict into the view model of the on-page widget.
// The panel owns its UI state (whether diagnostics are open); the engine
// stays stateless.
package panel

import (
	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
)

const (
	HeaderDetected = "Ad Tracking Detected"
	HeaderClean    = "No Ad Tracking Found"

	StateAlert   = "alert"
	StateNeutral = "neutral"
)

// Panel is the presentation-side state of one widget instance.
type Panel struct {
	DiagnosticsOpen bool
}

// Toggle flips the diagnostics section and returns the new panel state.
func (p Panel) Toggle() Panel {
	p.DiagnosticsOpen = !p.DiagnosticsOpen
	return p
}

// Entry is one row of the beneficiary list.
type Entry struct {
	Name      string            `json:"name"`
	Value     string            `json:"value"`
	Type      models.SourceType `json:"type"`
	Key       string            `json:"key,omitempty"`
	Removable bool              `json:"removable"`
}

// View is everything needed to draw the widget.
type View struct {
	State       string  `json:"state"`
	Header      string  `json:"header"`
	Entries     []Entry `json:"entries"`
	Diagnostics string  `json:"diagnostics,omitempty"`
}

// View builds the view model for v. The diagnostics text is included only
// while the section is open.
func (p Panel) View(v models.Verdict, d logic.Diagnostics) View {
	view := View{
		State:   StateNeutral,
		Header:  HeaderClean,
		Entries: []Entry{},
	}
	if v.IsAdInfluenced {
		view.State = StateAlert
		view.Header = HeaderDetected
	}
	for _, b := range v.Beneficiaries {
		view.Entries = append(view.Entries, Entry{
			Name:      b.Name,
			Value:     b.Value,
			Type:      b.Type,
			Key:       b.Key,
			Removable: b.Removable(),
		})
	}
	if p.DiagnosticsOpen {
		view.Diagnostics = d.Format()
	}
	return view
}
