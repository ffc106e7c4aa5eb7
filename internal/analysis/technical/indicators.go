// Package technical computes the technical factor snapshot of a daily price
// series: drawdown from recent high, moving-average trend, momentum
// oscillators, volatility and trailing support/resistance.
//
// Indicator math is delegated to go-talib. talib pads its lookback region
// with zeros, so every *Latest helper checks the history length first and
// returns nil when the series is too short or the result is not finite.
package technical

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RSILatest returns the most recent RSI value (0–100).
// Needs period+1 closes. A series with no gain and no loss is neutral (50);
// talib reports 0 there, which would read as deeply oversold.
func RSILatest(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}
	if unchanged(closes) {
		v := 50.0
		return &v
	}
	return last(talib.Rsi(closes, period))
}

// unchanged reports whether every close equals the first. talib smooths
// gains and losses over the whole series, so only a fully flat series
// leaves both averages at zero.
func unchanged(closes []float64) bool {
	for _, c := range closes[1:] {
		if c != closes[0] {
			return false
		}
	}
	return true
}

// MACDResult holds the latest MACD point.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// Bullish reports whether the MACD line is above its signal line.
func (m MACDResult) Bullish() bool { return m.MACD > m.Signal }

// MACDLatest returns the most recent MACD values.
// Needs slow+signal-1 closes.
func MACDLatest(closes []float64, fast, slow, signal int) *MACDResult {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow+signal-1 {
		return nil
	}
	macd, sig, hist := talib.Macd(closes, fast, slow, signal)
	m, s, h := last(macd), last(sig), last(hist)
	if m == nil || s == nil || h == nil {
		return nil
	}
	return &MACDResult{MACD: *m, Signal: *s, Histogram: *h}
}

// StochasticResult holds the latest fast stochastic %K and its %D average.
type StochasticResult struct {
	K float64
	D float64
}

// StochasticLatest returns the most recent fast stochastic oscillator.
// Needs kPeriod+dPeriod-1 bars.
func StochasticLatest(highs, lows, closes []float64, kPeriod, dPeriod int) *StochasticResult {
	if kPeriod <= 0 || dPeriod <= 0 || len(closes) < kPeriod+dPeriod-1 {
		return nil
	}
	k, d := talib.StochF(highs, lows, closes, kPeriod, dPeriod, talib.SMA)
	kv, dv := last(k), last(d)
	if kv == nil || dv == nil {
		return nil
	}
	return &StochasticResult{K: *kv, D: *dv}
}

// BollingerResult holds the latest band values.
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// PositionPct returns where price sits inside the band, 0 at the lower band
// and 100 at the upper band. A collapsed band reports 50.
func (b BollingerResult) PositionPct(price float64) float64 {
	width := b.Upper - b.Lower
	if width <= 0 {
		return 50
	}
	return (price - b.Lower) / width * 100
}

// BollingerLatest returns the most recent Bollinger bands.
func BollingerLatest(closes []float64, period int, mult float64) *BollingerResult {
	if period <= 1 || len(closes) < period {
		return nil
	}
	upper, middle, lower := talib.BBands(closes, period, mult, mult, talib.SMA)
	u, m, l := last(upper), last(middle), last(lower)
	if u == nil || m == nil || l == nil {
		return nil
	}
	return &BollingerResult{Upper: *u, Middle: *m, Lower: *l}
}

// ATRLatest returns the most recent average true range.
// Needs period+1 bars.
func ATRLatest(highs, lows, closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}
	return last(talib.Atr(highs, lows, closes, period))
}

// last returns a pointer to the final finite element of vals, or nil.
func last(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	v := vals[len(vals)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// pct returns (a-b)/b*100.
func pct(a, b float64) float64 {
	return (a - b) / b * 100
}

func ptr(v float64) *float64 { return &v }
