// Package report renders recommendations and comparisons as terminal text,
// JSON, CSV or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Formats
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json, csv or yaml)", s)
}

// ════════════════════════════════════════════════════════════════════
// Document
// ════════════════════════════════════════════════════════════════════

// Document is one rendered evaluation run.
type Document struct {
	RunID           string                   `json:"run_id,omitempty"`
	GeneratedAt     time.Time                `json:"generated_at"`
	RiskTolerance   models.RiskTolerance     `json:"risk_tolerance,omitempty"`
	Recommendations []models.Recommendation  `json:"recommendations"`
	Comparison      *models.ComparisonResult `json:"comparison,omitempty"`
	Failures        map[string]string        `json:"failures,omitempty"`
	// Names maps index ids to display names for the text renderer.
	Names map[string]string `json:"-"`
}

// NewDocument builds a document from a batch of recommendations, sorted by
// index id. failures may be nil.
func NewDocument(runID string, at time.Time, risk models.RiskTolerance, recs map[string]models.Recommendation, failures map[string]error) Document {
	d := Document{RunID: runID, GeneratedAt: at, RiskTolerance: risk}
	for _, r := range recs {
		d.Recommendations = append(d.Recommendations, r)
	}
	sort.Slice(d.Recommendations, func(i, j int) bool {
		return d.Recommendations[i].IndexID < d.Recommendations[j].IndexID
	})
	if len(failures) > 0 {
		d.Failures = make(map[string]string, len(failures))
		for id, err := range failures {
			d.Failures[id] = err.Error()
		}
	}
	return d
}

// Write renders d to w in format f.
func Write(w io.Writer, f Format, d Document) error {
	switch f {
	case FormatText, "":
		_, err := io.WriteString(w, Text(d))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatCSV:
		return writeCSV(w, d)
	case FormatYAML:
		return writeYAML(w, d)
	}
	return fmt.Errorf("unsupported format %q", f)
}

func (d Document) name(id string) string {
	if n, ok := d.Names[id]; ok && n != "" {
		return n
	}
	return id
}

// ════════════════════════════════════════════════════════════════════
// Utility
// ════════════════════════════════════════════════════════════════════

func pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

func num(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

// categoryLabel renders a category the way it is shown to investors.
func categoryLabel(c models.Category) string {
	return strings.ToUpper(strings.ReplaceAll(string(c), "_", " "))
}

// FormatDuration renders d in the largest unit below it, e.g. "4.2s".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
