package panel

import (
	"html/template"
	"io"
)

var panelTemplate = template.Must(template.New("panel").Parse(`<div id="adInfluencePanel" class="{{.State}}">
<div class="panel-header">{{.Header}}</div>
{{- range .Entries}}
<div class="beneficiary">
<div><strong>{{.Name}}</strong><span>{{.Value}}</span></div>
{{- if .Removable}}
<button data-type="{{.Type}}" data-key="{{.Key}}" data-name="{{.Name}}">Remove</button>
{{- end}}
</div>
{{- end}}
<button class="diagnostics-btn">Show Diagnostics</button>
{{- if .Diagnostics}}
<div class="diagnostics-content"><strong>Diagnostics</strong><pre>{{.Diagnostics}}</pre></div>
{{- end}}
</div>
`))

// Render writes the widget panel as an HTML fragment. Values are escaped.
func Render(w io.Writer, v View) error {
	return panelTemplate.Execute(w, v)
}
