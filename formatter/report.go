// Package formatter renders shortening results for people and for tools.
package formatter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnolang/pygolf/internal/types"
)

var (
	errorStyle  = color.New(color.FgRed, color.Bold)
	headerStyle = color.New(color.FgGreen, color.Bold)
	fileStyle   = color.New(color.FgCyan, color.Bold)
	lineStyle   = color.New(color.FgHiBlue, color.Bold)
	ruleStyle   = color.New(color.FgYellow)
	numberStyle = color.New(color.FgHiWhite, color.Bold)
)

const invalidInput = "Input code is not a valid python code"

const resultTemplate = `{{- if .Filename}}{{file .Filename}}
{{end -}}
{{- if .ShowCode}}{{header "Reduced code:"}}
{{.Output}}
{{end -}}
Saved {{number .Saved}} characters
The reduced code has {{number .Shortened}} characters ({{percent .Percent}} saved)
{{- range .Rules}}
{{rule .}}
{{- end}}
`

var resultTmpl = template.Must(template.New("result").Funcs(template.FuncMap{
	"file":    func(name string) string { return lineStyle.Sprint("--> ") + fileStyle.Sprint(name) },
	"header":  func(s string) string { return headerStyle.Sprint(s) },
	"number":  func(n int) string { return numberStyle.Sprint(n) },
	"percent": func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
	"rule":    func(s string) string { return lineStyle.Sprint("  = ") + ruleStyle.Sprint(s) },
}).Parse(resultTemplate))

type resultData struct {
	Filename  string
	ShowCode  bool
	Output    string
	Saved     int
	Shortened int
	Percent   float64
	Rules     []string
}

// FormatResult renders res as the reduced code, when showCode is set,
// followed by the savings and the rules applied.
func FormatResult(res *tt.Result, showCode bool) string {
	data := resultData{
		Filename:  res.Filename,
		ShowCode:  showCode,
		Output:    res.Output,
		Saved:     res.Stats.Saved(),
		Shortened: res.Stats.Shortened,
		Percent:   res.Stats.Percent(),
		Rules:     appliedRules(res.Applied),
	}

	var buf bytes.Buffer
	if err := resultTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting result: %v", err)
	}
	return buf.String()
}

func appliedRules(applied map[string]int) []string {
	names := make([]string, 0, len(applied))
	for name := range applied {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fmt.Sprintf("%s x%d", name, applied[name])
	}
	return out
}

// FormatSummary totals the savings over several results.
func FormatSummary(results []*tt.Result) string {
	var total tt.Stats
	for _, res := range results {
		total.Original += res.Stats.Original
		total.Shortened += res.Stats.Shortened
	}
	return fmt.Sprintf("%s %d files, saved %s of %d characters (%.1f%%)\n",
		headerStyle.Sprint("Total:"), len(results),
		numberStyle.Sprint(total.Saved()), total.Original, total.Percent())
}

// FormatError renders a failure on one input. Invalid programs get a fixed
// headline followed by the syntax error.
func FormatError(name string, err error, invalid bool) string {
	var b strings.Builder
	if name != "" {
		b.WriteString(lineStyle.Sprint("--> ") + fileStyle.Sprint(name) + "\n")
	}
	if invalid {
		b.WriteString(errorStyle.Sprint(invalidInput) + "\n")
		b.WriteString(lineStyle.Sprint("  = ") + err.Error())
	} else {
		b.WriteString(errorStyle.Sprint("error: ") + err.Error())
	}
	b.WriteString("\n")
	return b.String()
}
