package technical

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Dip describes the current close relative to its trailing-window high.
type Dip struct {
	RecentHigh    float64
	DipPct        float64
	DaysSinceHigh int
}

// DetectDip scans the last window bars (all bars if fewer) for the highest
// close. Equal highs resolve to the most recent one.
func DetectDip(bars []models.OHLCV, window int) Dip {
	if len(bars) == 0 {
		return Dip{}
	}
	start := 0
	if window > 0 && len(bars) > window {
		start = len(bars) - window
	}
	hi := start
	for i := start + 1; i < len(bars); i++ {
		if bars[i].Close >= bars[hi].Close {
			hi = i
		}
	}
	cur := bars[len(bars)-1]
	return Dip{
		RecentHigh:    bars[hi].Close,
		DipPct:        pct(cur.Close, bars[hi].Close),
		DaysSinceHigh: int(cur.Timestamp.Sub(bars[hi].Timestamp).Hours() / 24),
	}
}

// SupportResistance returns the lowest low and highest high over the last
// window bars.
func SupportResistance(bars []models.OHLCV, window int) (support, resistance float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	start := 0
	if window > 0 && len(bars) > window {
		start = len(bars) - window
	}
	support, resistance = math.Inf(1), math.Inf(-1)
	for _, b := range bars[start:] {
		lo, hi := b.Low, b.High
		// Feeds without intraday range carry only the close.
		if lo <= 0 {
			lo = b.Close
		}
		if hi <= 0 {
			hi = b.Close
		}
		support = math.Min(support, lo)
		resistance = math.Max(resistance, hi)
	}
	return support, resistance
}

// AnnualizedVolatility returns the annualized standard deviation of daily
// log returns over the last window returns, in percent. Needs window+1
// closes and window >= 2.
func AnnualizedVolatility(closes []float64, window int) *float64 {
	if window < 2 || len(closes) < window+1 {
		return nil
	}
	tail := closes[len(closes)-window-1:]
	returns := make([]float64, window)
	for i := 1; i < len(tail); i++ {
		returns[i-1] = math.Log(tail[i] / tail[i-1])
	}
	v := stat.StdDev(returns, nil) * math.Sqrt(252) * 100
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
