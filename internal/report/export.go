package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// csvHeader is the column layout of the CSV export.
var csvHeader = []string{
	"run_id", "index_id", "evaluated_at", "risk_tolerance", "category", "score", "confidence",
	"price", "dip_pct", "rsi", "trend", "monetary_yoy_pct", "currency_change_pct",
	"sentiment", "reasons", "risk_factors",
}

// writeCSV writes one row per recommendation.
func writeCSV(w io.Writer, d Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range d.Recommendations {
		row := []string{
			r.RunID, r.IndexID, r.EvaluatedAt.UTC().Format(time.RFC3339), string(r.RiskTolerance),
			string(r.Category), strconv.Itoa(r.Score), strconv.FormatFloat(r.DisplayConfidence(), 'f', 2, 64),
			"", "", "", "", "", "", "",
			strings.Join(r.Reasons, "; "), strings.Join(r.RiskFactors, "; "),
		}
		if f := r.Factors; f != nil {
			row[7] = strconv.FormatFloat(f.Technical.CurrentPrice, 'f', 2, 64)
			row[8] = strconv.FormatFloat(f.Technical.DipPct, 'f', 2, 64)
			row[9] = optFloat(f.Technical.RSI)
			row[10] = string(f.Technical.Trend)
			if f.Monetary != nil {
				row[11] = optFloat(f.Monetary.YoYGrowthPct)
			}
			if f.Currency != nil {
				row[12] = strconv.FormatFloat(f.Currency.ChangePct, 'f', 2, 64)
			}
			if !f.Sentiment.Unavailable {
				row[13] = strconv.FormatFloat(f.Sentiment.Overall.WeightedScore, 'f', 3, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// writeYAML renders the JSON shape of d as block YAML, so field names match
// the JSON export.
func writeYAML(w io.Writer, d Document) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// blockStyle clears the flow and quoting styles JSON input carries.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
