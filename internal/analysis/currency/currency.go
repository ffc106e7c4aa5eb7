// Package currency classifies exchange-rate moves for indices denominated
// in a currency other than the investor's base.
//
// Rates are quoted as units of the index currency per one unit of the base
// currency (EURUSD=X for a EUR investor holding a USD index). A rising rate
// therefore means the index currency is weakening: the same USD buys fewer
// EUR when converted back.
package currency

import (
	"math"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Config holds the window and classification cutoffs.
type Config struct {
	Window        int     `mapstructure:"window"         yaml:"window"`         // observations
	TrendCutoff   float64 `mapstructure:"trend_cutoff"   yaml:"trend_cutoff"`   // |change| above is a trend
	HighRiskAbove float64 `mapstructure:"high_risk_above" yaml:"high_risk_above"` // weakening beyond is high risk
}

// DefaultConfig returns a 30-observation window with 2% and 5% cutoffs.
func DefaultConfig() Config {
	return Config{Window: 30, TrendCutoff: 2, HighRiskAbove: 5}
}

// Extractor computes CurrencyFactors.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given parameters.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract computes the trailing change of the rate series. With fewer than
// window+1 observations the change is measured from the first one. An
// invalid series yields a *models.DataIntegrityError.
func (e *Extractor) Extract(pair string, series models.PriceSeries) (*models.CurrencyFactors, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	closes := series.Closes()
	n := len(closes)
	start := 0
	if n > e.cfg.Window {
		start = n - 1 - e.cfg.Window
	}
	cur, past := closes[n-1], closes[start]
	change := (cur - past) / past * 100

	trend, risk := e.Classify(change)
	return &models.CurrencyFactors{
		Pair:      pair,
		Current:   cur,
		Window:    n - 1 - start,
		ChangePct: change,
		Trend:     trend,
		RiskLevel: risk,
	}, nil
}

// Classify maps a rate change to trend and risk. Strengthening and stable
// are low risk; weakening is moderate up to HighRiskAbove and high beyond.
func (e *Extractor) Classify(changePct float64) (models.CurrencyTrend, models.RiskLevel) {
	switch {
	case changePct < -e.cfg.TrendCutoff:
		return models.CurrencyStrengthening, models.LevelLow
	case changePct > e.cfg.TrendCutoff:
		if math.Abs(changePct) > e.cfg.HighRiskAbove {
			return models.CurrencyWeakening, models.LevelHigh
		}
		return models.CurrencyWeakening, models.LevelModerate
	}
	return models.CurrencyStable, models.LevelLow
}
