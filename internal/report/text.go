package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// Text renders d for the terminal.
func Text(d Document) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  INDEX INVESTMENT ADVISOR\n")
	fmt.Fprintf(&sb, "  Generated: %s", d.GeneratedAt.Format("02 Jan 2006, 15:04 MST"))
	if d.RiskTolerance != "" {
		fmt.Fprintf(&sb, " | Risk: %s", d.RiskTolerance)
	}
	sb.WriteString("\n")
	if d.RunID != "" {
		fmt.Fprintf(&sb, "  Run: %s\n", d.RunID)
	}
	sb.WriteString(line + "\n")

	for _, r := range d.Recommendations {
		writeRecommendation(&sb, d.name(r.IndexID), r)
		sb.WriteString(thinLine + "\n")
	}

	if len(d.Failures) > 0 {
		sb.WriteString("\n  ■ FAILED EVALUATIONS\n")
		ids := make([]string, 0, len(d.Failures))
		for id := range d.Failures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&sb, "    %s: %s\n", d.name(id), d.Failures[id])
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.Comparison != nil {
		writeComparison(&sb, d, *d.Comparison)
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Disclaimer: generated for educational purposes.\n")
	sb.WriteString("  Not financial advice.\n")
	sb.WriteString(line + "\n")
	return sb.String()
}

func writeRecommendation(sb *strings.Builder, name string, r models.Recommendation) {
	fmt.Fprintf(sb, "\n  ★ %s: %s\n", name, categoryLabel(r.Category))
	fmt.Fprintf(sb, "  Score: %d | Confidence: %.0f%%\n", r.Score, r.DisplayConfidence()*100)

	if f := r.Factors; f != nil {
		writeFactors(sb, *f)
	}

	if len(r.Reasons) > 0 {
		sb.WriteString("\n  Reasons:\n")
		for _, s := range r.Reasons {
			fmt.Fprintf(sb, "    + %s\n", s)
		}
	}
	if len(r.RiskFactors) > 0 {
		sb.WriteString("\n  Risk factors:\n")
		for _, s := range r.RiskFactors {
			fmt.Fprintf(sb, "    - %s\n", s)
		}
	}
}

func writeFactors(sb *strings.Builder, f models.DecisionFactors) {
	t := f.Technical
	sb.WriteString("\n  ■ Technical\n")
	fmt.Fprintf(sb, "    %-22s %.2f (high %.2f, dip %+.2f%%)\n", "Price", t.CurrentPrice, t.RecentHigh, t.DipPct)
	fmt.Fprintf(sb, "    %-22s %s (%s)\n", "RSI", num(t.RSI), t.RSIStatus)
	fmt.Fprintf(sb, "    %-22s %s\n", "Trend", t.Trend)
	fmt.Fprintf(sb, "    %-22s %s / %s\n", "vs MA50 / MA200", pct(t.PriceVsMA50), pct(t.PriceVsMA200))
	fmt.Fprintf(sb, "    %-22s %s (%s)\n", "Annual volatility", pct(t.AnnualVolatilityPct), t.VolatilityLevel)

	s := f.Sentiment
	sb.WriteString("  ■ Sentiment\n")
	if s.Unavailable {
		sb.WriteString("    unavailable\n")
	} else {
		fmt.Fprintf(sb, "    %-22s %+.2f (%s, %d articles)\n", "Overall", s.Overall.WeightedScore, s.Overall.Label, s.TotalArticles)
		fmt.Fprintf(sb, "    %-22s %s\n", "Market tone", s.MarketTone)
		fmt.Fprintf(sb, "    %-22s %.0f%% / %.0f%%\n", "Recession / bubble", s.RecessionProbability*100, s.BubbleRisk*100)
	}

	sb.WriteString("  ■ Monetary\n")
	if m := f.Monetary; m == nil {
		sb.WriteString("    unavailable\n")
	} else {
		fmt.Fprintf(sb, "    %-22s %s YoY (%s, %+d)\n", m.Region+" "+m.SeriesID, pct(m.YoYGrowthPct), m.Impact, m.FavorabilityScore)
	}

	sb.WriteString("  ■ Currency\n")
	switch c := f.Currency; {
	case !f.CurrencyExposure:
		sb.WriteString("    no exposure\n")
	case c == nil:
		sb.WriteString("    unavailable\n")
	default:
		fmt.Fprintf(sb, "    %-22s %.4f, %+.2f%% over %d days (%s, %s risk)\n", c.Pair, c.Current, c.ChangePct, c.Window, c.Trend, c.RiskLevel)
	}
}

func writeComparison(sb *strings.Builder, d Document, c models.ComparisonResult) {
	sb.WriteString("\n  ■ COMPARISON\n")
	for i, id := range c.Ranking {
		fmt.Fprintf(sb, "    %d. %-20s %4d\n", i+1, d.name(id), c.Scores[id])
	}
	fmt.Fprintf(sb, "\n  %s\n", c.Narrative)
	fmt.Fprintf(sb, "\n  Overall: %s\n  %s\n", c.Overall, c.Action)

	for _, a := range c.Allocations {
		fmt.Fprintf(sb, "\n  Example allocation (%s):\n", a.Label)
		for _, s := range a.Slices {
			label := d.name(s.IndexID)
			if s.IndexID == models.CashID {
				label = "Cash"
			}
			fmt.Fprintf(sb, "    %-20s %5.1f%%\n", label, s.Pct)
		}
	}
}
