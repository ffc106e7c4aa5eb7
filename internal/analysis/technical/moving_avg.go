package technical

import (
	"github.com/markcheno/go-talib"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// SMA returns the simple moving average series, or nil when data is
// shorter than period. Values before index period-1 are zero.
func SMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return nil
	}
	return talib.Sma(data, period)
}

// SMALatest returns the most recent SMA value.
func SMALatest(data []float64, period int) *float64 {
	return last(SMA(data, period))
}

// GoldenCross reports whether the short average is above the long average
// and both have risen over the last lookback bars. ok is false when there
// is not enough history to judge the slopes.
func GoldenCross(closes []float64, short, long, lookback int) (cross bool, ok bool) {
	if lookback < 1 || len(closes) < long+lookback {
		return false, false
	}
	s := SMA(closes, short)
	l := SMA(closes, long)
	n := len(closes) - 1
	rising := s[n] > s[n-lookback] && l[n] > l[n-lookback]
	return s[n] > l[n] && rising, true
}

// classifyTrend is the decision table over price position relative to the
// two averages and the golden-cross flag. When the long average is unknown
// it falls back to the short one alone.
func classifyTrend(vs50, vs200 *float64, golden bool) models.Trend {
	if vs50 == nil {
		return models.TrendSideways
	}
	above50, below50 := *vs50 > 0, *vs50 < 0
	if vs200 == nil {
		switch {
		case above50:
			return models.TrendUp
		case below50:
			return models.TrendDown
		}
		return models.TrendSideways
	}
	above200, below200 := *vs200 > 0, *vs200 < 0
	switch {
	case above50 && above200 && golden:
		return models.TrendStrongUp
	case above50 && above200:
		return models.TrendUp
	case below50 && below200 && !golden:
		return models.TrendStrongDown
	case below50 && below200:
		return models.TrendDown
	}
	return models.TrendSideways
}
