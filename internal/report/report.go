// Package report renders a completed assessment as a standalone printable
// HTML document, the server-side counterpart of the browser print action.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/kmclabs/medassist/internal/content"
	"github.com/kmclabs/medassist/internal/domain/analysis"
)

var tmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.App.Title}} — Assessment Report</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 2rem auto; color: #1e293b; }
h1 { font-size: 1.5rem; margin-bottom: 0; }
.meta { color: #64748b; font-size: 0.85rem; margin-bottom: 2rem; }
.emergency { border: 3px solid #dc2626; background: #fef2f2; padding: 1rem; font-weight: bold; }
section { margin: 1.25rem 0; }
h2 { font-size: 1rem; text-transform: uppercase; letter-spacing: 0.1em; color: #475569; }
ol { padding-left: 1.25rem; }
.disclaimer { font-size: 0.8rem; color: #64748b; border-top: 1px solid #e2e8f0; padding-top: 1rem; }
</style>
</head>
<body>
<h1>{{.App.Title}}</h1>
<div class="meta">{{.App.Institution}} &middot; {{.App.Authors}} &middot; Generated {{.GeneratedAt.Format "Jan 2, 2006 15:04 MST"}}</div>
{{if .Result.IsEmergencyOverride}}<div class="emergency">EMERGENCY: {{.Result.RedFlagDetails}} Contact local emergency services immediately.</div>{{end}}
<section><h2>Submitted Description</h2><p>{{.Input}}</p></section>
<section><h2>Summary</h2><p>{{.Result.Summary}}</p></section>
<section><h2>Educational Considerations</h2>
{{if .Result.Considerations}}<ol>{{range .Result.Considerations}}<li>{{.}}</li>{{end}}</ol>{{else}}<p>None listed.</p>{{end}}
</section>
<section><h2>Triage Status</h2><p>{{.Result.RedFlagStatus}}{{if .Result.RedFlagDetails}} &mdash; {{.Result.RedFlagDetails}}{{end}}</p></section>
<section><h2>Next Steps</h2><p>{{.Result.NextSteps}}</p></section>
<section><h2>Medical Education</h2><p>{{.Result.MedicalEducation}}</p></section>
<p class="disclaimer">{{.Result.Disclaimer}}</p>
<p class="disclaimer">{{.App.Copyright}}</p>
</body>
</html>
`))

type data struct {
	App         content.AppConfig
	Input       string
	Result      *analysis.Result
	GeneratedAt time.Time
}

// Render produces the printable document for one result.
func Render(input string, r *analysis.Result, generatedAt time.Time) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("no result to render")
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data{
		App:         content.App,
		Input:       input,
		Result:      r,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
