package types

import "unicode/utf8"

// ConfigRule toggles a rewrite rule. Rules missing from the configuration
// are enabled.
type ConfigRule struct {
	Enabled bool `yaml:"enabled"`
}

// Stats compares the length of a program before and after shortening,
// counted in characters.
type Stats struct {
	Original  int `json:"original"`
	Shortened int `json:"shortened"`
}

// Measure returns the stats of shortening src into out.
func Measure(src, out string) Stats {
	return Stats{
		Original:  utf8.RuneCountInString(src),
		Shortened: utf8.RuneCountInString(out),
	}
}

func (s Stats) Saved() int {
	return s.Original - s.Shortened
}

// Percent returns the share of characters saved, from 0 to 100.
func (s Stats) Percent() float64 {
	if s.Original == 0 {
		return 0
	}
	return float64(s.Saved()) * 100 / float64(s.Original)
}

// Result is the outcome of shortening one program.
type Result struct {
	Filename string         `json:"filename,omitempty"`
	Output   string         `json:"output"`
	Stats    Stats          `json:"stats"`
	Applied  map[string]int `json:"applied,omitempty"`
	Cached   bool           `json:"cached,omitempty"`
}
