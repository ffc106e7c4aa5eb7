// Package monetary derives money-supply growth and its favorability score
// from a regional M2 series.
package monetary

import (
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Band maps YoY growth at or above Min to a score and label.
type Band struct {
	Min    float64               `mapstructure:"min"    yaml:"min"`
	Score  int                   `mapstructure:"score"  yaml:"score"`
	Impact models.MonetaryImpact `mapstructure:"impact" yaml:"impact"`
}

// Config holds the lookback and the favorability step function.
type Config struct {
	YoYLookback int `mapstructure:"yoy_lookback" yaml:"yoy_lookback"` // periods, 12 for monthly data
	// Bands are checked in descending Min order; growth below every band
	// gets FloorScore.
	Bands      []Band `mapstructure:"bands"       yaml:"bands"`
	FloorScore int    `mapstructure:"floor_score" yaml:"floor_score"`
}

// DefaultConfig returns the monthly-series parameters. Each band includes
// its lower bound: 5.0 scores +20, 2.0 scores +10, -2.0 scores 0.
func DefaultConfig() Config {
	return Config{
		YoYLookback: 12,
		Bands: []Band{
			{Min: 5, Score: 20, Impact: models.ImpactVeryPositive},
			{Min: 2, Score: 10, Impact: models.ImpactPositive},
			{Min: -2, Score: 0, Impact: models.ImpactNeutral},
		},
		FloorScore: -15,
	}
}

// Extractor computes MonetaryFactors.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given parameters.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract computes growth and favorability for region. Growth needs
// lookback+1 points (YoY) or 2 points (MoM); with fewer the field stays nil
// and the impact is unknown. A malformed series is a *models.DataIntegrityError.
func (e *Extractor) Extract(region string, series models.MonetarySeries) (models.MonetaryFactors, error) {
	if err := series.Validate(); err != nil {
		return models.MonetaryFactors{}, err
	}
	mf := models.MonetaryFactors{
		Region:   region,
		SeriesID: series.SeriesID,
		Impact:   models.ImpactUnknown,
	}
	pts := series.Points
	n := len(pts)
	if n == 0 {
		return mf, nil
	}
	mf.Latest = pts[n-1].Value
	mf.LatestDate = pts[n-1].Date

	mf.YoYGrowthPct = growth(pts, e.cfg.YoYLookback)
	mf.MoMGrowthPct = growth(pts, 1)
	mf.FavorabilityScore, mf.Impact = e.Favorability(mf.YoYGrowthPct)
	return mf, nil
}

// Favorability applies the step function. A nil growth scores 0 and is
// labelled unknown.
func (e *Extractor) Favorability(yoy *float64) (int, models.MonetaryImpact) {
	if yoy == nil {
		return 0, models.ImpactUnknown
	}
	for _, b := range e.cfg.Bands {
		if *yoy >= b.Min {
			return b.Score, b.Impact
		}
	}
	return e.cfg.FloorScore, models.ImpactNegative
}

// growth returns the percent change over lookback periods, or nil when the
// history is too short or the base value is zero.
func growth(pts []models.MonetaryPoint, lookback int) *float64 {
	n := len(pts)
	if lookback <= 0 || n < lookback+1 {
		return nil
	}
	past := pts[n-1-lookback].Value
	if past == 0 {
		return nil
	}
	g := (pts[n-1].Value - past) / past * 100
	return &g
}
