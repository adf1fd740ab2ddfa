// Package renderer renders the reconciliation reports as markdown.
//
// Reports are text/template files embedded from the templates folder. Amounts
// are formatted in the currency passed to each function. The comparative
// table can also be exported as a spreadsheet.
package renderer

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/etnz/reconcile"
)

//go:embed templates/*.md
var templates embed.FS

// funcs returns the template functions, formatting amounts in currency.
func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(a reconcile.Amount) string { return a.Format(currency) },
		"cell":  cell,
		"short": func(id reconcile.GroupID) string { return shortID(id) },
		"pct":   func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
		"status": func(s reconcile.Status) string {
			switch s {
			case reconcile.StatusOK:
				return "✅ ok"
			case reconcile.StatusDifference:
				return "❌ difference"
			case reconcile.StatusMissingClosing:
				return "⚠️ missing closing"
			default:
				return string(s)
			}
		},
	}
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// shortID returns the first characters of a group id, enough to tell groups apart.
func shortID(id reconcile.GroupID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// renderTemplate executes the named template with data. Every template of
// the folder is available to it as a partial.
func renderTemplate(name, currency string, data any) string {
	tmpl, err := template.New(name).Funcs(funcs(currency)).ParseFS(templates, "templates/*.md")
	if err != nil {
		return fmt.Sprintf("error parsing templates: %v", err)
	}
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
