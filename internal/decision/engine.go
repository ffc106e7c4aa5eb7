// Package decision fuses the four factor families of one index into an
// additive score and classifies it against risk-tolerance thresholds.
package decision

import (
	"fmt"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Thresholds are the minimum scores for each category; below Hold is avoid.
type Thresholds struct {
	StrongBuy int `mapstructure:"strong_buy" yaml:"strong_buy" json:"strong_buy"`
	Buy       int `mapstructure:"buy"        yaml:"buy"        json:"buy"`
	Hold      int `mapstructure:"hold"       yaml:"hold"       json:"hold"`
}

// Ordered reports whether StrongBuy >= Buy >= Hold.
func (t Thresholds) Ordered() bool {
	return t.StrongBuy >= t.Buy && t.Buy >= t.Hold
}

// Classify maps a score to its category.
func (t Thresholds) Classify(score int) models.Category {
	switch {
	case score >= t.StrongBuy:
		return models.StrongBuy
	case score >= t.Buy:
		return models.Buy
	case score >= t.Hold:
		return models.Hold
	}
	return models.Avoid
}

// Config holds the per-tolerance thresholds.
type Config struct {
	Profiles map[models.RiskTolerance]Thresholds `mapstructure:"profiles" yaml:"profiles"`
}

// DefaultConfig returns the standard profiles.
func DefaultConfig() Config {
	return Config{Profiles: map[models.RiskTolerance]Thresholds{
		models.RiskConservative: {StrongBuy: 60, Buy: 40, Hold: 20},
		models.RiskModerate:     {StrongBuy: 50, Buy: 30, Hold: 10},
		models.RiskAggressive:   {StrongBuy: 40, Buy: 20, Hold: 0},
	}}
}

// Engine scores DecisionFactors. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
	now func() time.Time
}

// NewEngine creates an engine stamping recommendations with time.Now.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the engine using now for EvaluatedAt.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	c := *e
	c.now = now
	return &c
}

// Thresholds returns the profile for risk, falling back to moderate when
// risk is not configured.
func (e *Engine) Thresholds(risk models.RiskTolerance) Thresholds {
	if t, ok := e.cfg.Profiles[risk]; ok {
		return t
	}
	if t, ok := e.cfg.Profiles[models.RiskModerate]; ok {
		return t
	}
	return DefaultConfig().Profiles[models.RiskModerate]
}

// Score computes the recommendation for f. Terms are evaluated in a fixed
// order so reasons and risk factors come out the same way on every call.
func (e *Engine) Score(f models.DecisionFactors, risk models.RiskTolerance) models.Recommendation {
	s := scorecard{reasons: []string{}, risks: []string{}}
	tf := f.Technical

	// Dip. The major and significant cutoffs come from the technical
	// extractor's configuration through the flags.
	switch {
	case tf.MajorDip:
		s.add(30, "Major dip: %.1f%% below recent high", tf.DipPct)
	case tf.SignificantDip:
		s.add(20, "Significant dip: %.1f%% below recent high", tf.DipPct)
	case tf.DipPct < -1:
		s.add(10, "Small dip: %.1f%% below recent high", tf.DipPct)
	default:
		s.add(-5, "Near high (%+.1f%%), limited upside", tf.DipPct)
	}

	// RSI
	if tf.RSI != nil {
		rsi := *tf.RSI
		switch {
		case tf.RSIStatus == models.RSIOversold:
			s.add(25, "Oversold (RSI %.0f)", rsi)
		case tf.RSIStatus == models.RSIOverbought:
			s.add(-20, "Overbought (RSI %.0f), pullback risk", rsi)
		case rsi < 40:
			s.add(15, "Approaching oversold (RSI %.0f)", rsi)
		case rsi > 60:
			s.add(-10, "Elevated RSI (%.0f)", rsi)
		}
	}

	// Trend
	switch {
	case tf.Trend.IsUp():
		s.add(10, "Trend: %s", tf.Trend)
	case tf.Trend.IsDown():
		s.add(-15, "Trend: %s", tf.Trend)
	}
	if tf.GoldenCross {
		s.add(5, "Golden cross")
	}

	// MACD
	if tf.MACD != nil {
		if tf.MACDBullish {
			s.add(10, "MACD above signal line")
		} else {
			s.add(-5, "MACD below signal line")
		}
	}

	// Monetary
	switch m := f.Monetary; {
	case m == nil:
		s.unavailable(f, models.SignalMonetary, "Monetary data")
	case m.YoYGrowthPct == nil:
		s.risk("Money supply growth unknown (%s history too short)", m.SeriesID)
	default:
		yoy := *m.YoYGrowthPct
		switch {
		case m.FavorabilityScore >= 20:
			s.add(m.FavorabilityScore, "Strong money supply expansion (%+.1f%% YoY)", yoy)
		case m.FavorabilityScore >= 10:
			s.add(m.FavorabilityScore, "Money supply expanding (%+.1f%% YoY)", yoy)
		case m.FavorabilityScore <= -15:
			s.add(m.FavorabilityScore, "Money supply contracting (%+.1f%% YoY), liquidity headwind", yoy)
		default:
			s.score += m.FavorabilityScore
		}
	}

	// Sentiment
	sf := f.Sentiment
	if sf.Unavailable {
		s.unavailable(f, models.SignalNews, "News sentiment")
	} else {
		ov := sf.Overall.WeightedScore
		switch {
		case ov > 0.2:
			s.add(20, "Strong positive sentiment (%+.2f)", ov)
		case ov > 0.05:
			s.add(10, "Positive sentiment (%+.2f)", ov)
		case ov < -0.2:
			s.add(-20, "Negative sentiment (%+.2f)", ov)
		case ov < -0.05:
			s.add(-10, "Slightly negative sentiment (%+.2f)", ov)
		}

		switch {
		case sf.MarketTone == models.ToneBullish && sf.BullishRatio > 0.25:
			s.add(10, "Bullish market tone (%.0f%% bullish articles)", sf.BullishRatio*100)
		case sf.MarketTone == models.ToneBearish:
			s.add(-15, "Bearish market tone (%.0f%% bearish articles)", sf.BearishRatio*100)
		}

		switch p := sf.RecessionProbability; {
		case p > 0.6:
			s.add(-40, "High recession risk (%.0f%%)", p*100)
		case p > 0.3:
			s.add(-20, "Moderate recession risk (%.0f%%)", p*100)
		case p < 0.1:
			s.add(5, "Low recession risk")
		}

		switch b := sf.BubbleRisk; {
		case b > 0.6:
			s.add(-30, "High AI/tech bubble risk (%.0f%%)", b*100)
		case b > 0.4:
			s.add(-15, "Moderate AI/tech bubble concerns (%.0f%%)", b*100)
		case b < 0.2:
			s.add(5, "Low bubble risk")
		}
	}

	// Volatility
	switch tf.VolatilityLevel {
	case models.VolatilityHigh:
		s.add(-10, "High volatility")
	case models.VolatilityLow:
		s.add(5, "Low volatility")
	}

	// Currency
	switch c := f.Currency; {
	case !f.CurrencyExposure:
		s.add(5, "No currency risk (home currency)")
	case c == nil:
		s.unavailable(f, models.SignalCurrency, "Currency data")
	case c.RiskLevel == models.LevelHigh:
		s.add(-25, "Currency drag: %s moved %+.1f%%, index currency weakening", c.Pair, c.ChangePct)
	case c.RiskLevel == models.LevelModerate:
		s.add(-15, "Currency headwind: %s moved %+.1f%%", c.Pair, c.ChangePct)
	case c.Trend == models.CurrencyStrengthening:
		s.add(10, "Currency tailwind: index currency strengthening (%s %+.1f%%)", c.Pair, c.ChangePct)
	}

	snapshot := f
	return models.Recommendation{
		IndexID:       f.IndexID,
		RiskTolerance: risk,
		Category:      e.Thresholds(risk).Classify(s.score),
		Score:         s.score,
		Confidence:    float64(s.score) / 100,
		Reasons:       s.reasons,
		RiskFactors:   s.risks,
		EvaluatedAt:   e.now(),
		Factors:       &snapshot,
	}
}

// scorecard accumulates terms. A positive term appends a reason, a negative
// one a risk factor.
type scorecard struct {
	score   int
	reasons []string
	risks   []string
}

func (s *scorecard) add(points int, format string, args ...any) {
	s.score += points
	msg := fmt.Sprintf(format, args...)
	if points >= 0 {
		s.reasons = append(s.reasons, msg)
	} else {
		s.risks = append(s.risks, msg)
	}
}

func (s *scorecard) risk(format string, args ...any) {
	s.risks = append(s.risks, fmt.Sprintf(format, args...))
}

// unavailable notes a defaulted optional signal among the reasons, with the
// cause when the collector recorded one.
func (s *scorecard) unavailable(f models.DecisionFactors, signal, what string) {
	msg := what + " unavailable, scored neutral"
	if m, ok := f.MissingSignal(signal); ok && m.Err != nil {
		msg += fmt.Sprintf(" (%v)", m.Err)
	}
	s.reasons = append(s.reasons, msg)
}
