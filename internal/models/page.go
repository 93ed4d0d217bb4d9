package models

// PageSnapshot is a serializable copy of the ambient page state the engine
// reads. It is the wire format of the HTTP API, the MCP tools and the CLI.
type PageSnapshot struct {
	// URL is the full page URL including query string and fragment.
	URL string `json:"url"`
	// Cookie is the raw document cookie string ("a=1; b=2").
	Cookie string `json:"cookie,omitempty"`
	// Referrer is the raw document referrer.
	Referrer string `json:"referrer,omitempty"`
	// UserAgent is only used by the diagnostics view.
	UserAgent string `json:"user_agent,omitempty"`
}
