package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/panel"
)

// output selects how a result is printed.
type output struct {
	json        bool
	html        bool
	diagnostics bool
}

// result is the JSON form printed by every subcommand.
type result struct {
	Page        *models.PageSnapshot `json:"page,omitempty"`
	SetCookie   []string             `json:"set_cookie,omitempty"`
	Verdict     models.Verdict       `json:"verdict"`
	Diagnostics *logic.Diagnostics   `json:"diagnostics,omitempty"`
}

func (o output) print(w io.Writer, r result, d logic.Diagnostics) error {
	if o.diagnostics {
		r.Diagnostics = &d
	}
	switch {
	case o.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case o.html:
		view := panel.Panel{DiagnosticsOpen: o.diagnostics}.View(r.Verdict, d)
		return panel.Render(w, view)
	}
	return printText(w, r, d, o.diagnostics)
}

func printText(w io.Writer, r result, d logic.Diagnostics, diagnostics bool) error {
	view := panel.Panel{DiagnosticsOpen: diagnostics}.View(r.Verdict, d)

	var b strings.Builder
	b.WriteString(view.Header + "\n")
	for _, e := range view.Entries {
		marker := ""
		if !e.Removable {
			marker = " (not removable)"
		}
		fmt.Fprintf(&b, "  %s: %s%s\n", e.Name, e.Value, marker)
	}
	if r.Page != nil {
		fmt.Fprintf(&b, "\nPage URL: %s\nCookies: %s\n", r.Page.URL, r.Page.Cookie)
	}
	for _, c := range r.SetCookie {
		fmt.Fprintf(&b, "Set-Cookie: %s\n", c)
	}
	if view.Diagnostics != "" {
		b.WriteString("\n" + view.Diagnostics)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
