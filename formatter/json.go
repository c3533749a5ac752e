package formatter

import (
	"encoding/json"
	"io"

	tt "github.com/gnolang/pygolf/internal/types"
)

type jsonReport struct {
	Results []*tt.Result `json:"results"`
	Errors  []string     `json:"errors,omitempty"`
	Total   tt.Stats     `json:"total"`
}

// WriteJSON writes results and errors as one JSON document.
func WriteJSON(w io.Writer, results []*tt.Result, errs []error) error {
	report := jsonReport{Results: results}
	if report.Results == nil {
		report.Results = []*tt.Result{}
	}
	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())
	}
	for _, res := range results {
		report.Total.Original += res.Stats.Original
		report.Total.Shortened += res.Stats.Shortened
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
