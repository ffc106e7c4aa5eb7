package technical

import (
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Config holds the technical parameters. It is copied into the Extractor
// and never mutated afterwards.
type Config struct {
	RSIPeriod     int     `mapstructure:"rsi_period"     yaml:"rsi_period"`
	RSIOversold   float64 `mapstructure:"rsi_oversold"   yaml:"rsi_oversold"`
	RSIOverbought float64 `mapstructure:"rsi_overbought" yaml:"rsi_overbought"`

	MAShort       int `mapstructure:"ma_short"       yaml:"ma_short"`
	MALong        int `mapstructure:"ma_long"        yaml:"ma_long"`
	SlopeLookback int `mapstructure:"slope_lookback" yaml:"slope_lookback"` // bars used to judge rising averages

	MACDFast   int `mapstructure:"macd_fast"   yaml:"macd_fast"`
	MACDSlow   int `mapstructure:"macd_slow"   yaml:"macd_slow"`
	MACDSignal int `mapstructure:"macd_signal" yaml:"macd_signal"`

	StochK int `mapstructure:"stoch_k" yaml:"stoch_k"`
	StochD int `mapstructure:"stoch_d" yaml:"stoch_d"`

	BollingerPeriod int     `mapstructure:"bollinger_period" yaml:"bollinger_period"`
	BollingerStdDev float64 `mapstructure:"bollinger_stddev" yaml:"bollinger_stddev"`
	ATRPeriod       int     `mapstructure:"atr_period"       yaml:"atr_period"`

	VolatilityWindow   int     `mapstructure:"volatility_window"   yaml:"volatility_window"`
	VolatilityHigh     float64 `mapstructure:"volatility_high"     yaml:"volatility_high"`     // annualized %, above is high
	VolatilityModerate float64 `mapstructure:"volatility_moderate" yaml:"volatility_moderate"` // annualized %, above is moderate

	DipWindow      int     `mapstructure:"dip_window"      yaml:"dip_window"`
	SignificantDip float64 `mapstructure:"significant_dip" yaml:"significant_dip"`
	MajorDip       float64 `mapstructure:"major_dip"       yaml:"major_dip"`

	SupportWindow int `mapstructure:"support_window" yaml:"support_window"`
}

// DefaultConfig returns the standard daily-bar parameters.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:          14,
		RSIOversold:        30,
		RSIOverbought:      70,
		MAShort:            50,
		MALong:             200,
		SlopeLookback:      5,
		MACDFast:           12,
		MACDSlow:           26,
		MACDSignal:         9,
		StochK:             14,
		StochD:             3,
		BollingerPeriod:    20,
		BollingerStdDev:    2,
		ATRPeriod:          14,
		VolatilityWindow:   30,
		VolatilityHigh:     20,
		VolatilityModerate: 10,
		DipWindow:          30,
		SignificantDip:     -3,
		MajorDip:           -5,
		SupportWindow:      90,
	}
}

// Extractor computes TechnicalFactors from a price series.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given parameters.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract validates the series and computes its technical snapshot.
// A malformed series yields a *models.DataIntegrityError. Short history
// never fails: each measure that cannot be computed is left nil and
// listed in Omitted.
func (e *Extractor) Extract(series models.PriceSeries) (models.TechnicalFactors, error) {
	if err := series.Validate(); err != nil {
		return models.TechnicalFactors{}, err
	}
	cfg := e.cfg
	bars := series.Bars
	closes, highs, lows := series.Closes(), series.Highs(), series.Lows()
	n := len(closes)
	cur := series.Last()

	tf := models.TechnicalFactors{
		AsOf:            cur.Timestamp,
		Observations:    n,
		CurrentPrice:    cur.Close,
		RSIStatus:       models.RSINeutral,
		VolatilityLevel: models.VolatilityModerate,
	}
	omit := func(measure string, need int) {
		tf.Omitted = append(tf.Omitted, models.InsufficientHistoryError{Measure: measure, Need: need, Have: n})
	}

	// Dip
	dip := DetectDip(bars, cfg.DipWindow)
	tf.RecentHigh = dip.RecentHigh
	tf.DipPct = dip.DipPct
	tf.DaysSinceHigh = dip.DaysSinceHigh
	tf.SignificantDip = dip.DipPct < cfg.SignificantDip
	tf.MajorDip = dip.DipPct < cfg.MajorDip

	// Trend
	if ma := SMALatest(closes, cfg.MAShort); ma != nil {
		tf.MA50 = ma
		tf.PriceVsMA50 = ptr(pct(cur.Close, *ma))
	} else {
		omit("ma_short", cfg.MAShort)
	}
	if ma := SMALatest(closes, cfg.MALong); ma != nil {
		tf.MA200 = ma
		tf.PriceVsMA200 = ptr(pct(cur.Close, *ma))
	} else {
		omit("ma_long", cfg.MALong)
	}
	if tf.MA200 != nil {
		cross, ok := GoldenCross(closes, cfg.MAShort, cfg.MALong, cfg.SlopeLookback)
		if ok {
			tf.GoldenCross = cross
		} else {
			omit("golden_cross", cfg.MALong+cfg.SlopeLookback)
		}
	}
	tf.Trend = classifyTrend(tf.PriceVsMA50, tf.PriceVsMA200, tf.GoldenCross)

	// Momentum
	if rsi := RSILatest(closes, cfg.RSIPeriod); rsi != nil {
		tf.RSI = rsi
		switch {
		case *rsi < cfg.RSIOversold:
			tf.RSIStatus = models.RSIOversold
		case *rsi > cfg.RSIOverbought:
			tf.RSIStatus = models.RSIOverbought
		}
	} else {
		omit("rsi", cfg.RSIPeriod+1)
	}
	if m := MACDLatest(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal); m != nil {
		tf.MACD = ptr(m.MACD)
		tf.MACDSignal = ptr(m.Signal)
		tf.MACDHistogram = ptr(m.Histogram)
		tf.MACDBullish = m.Bullish()
	} else {
		omit("macd", cfg.MACDSlow+cfg.MACDSignal-1)
	}
	if st := StochasticLatest(highs, lows, closes, cfg.StochK, cfg.StochD); st != nil {
		tf.StochasticK = ptr(st.K)
		tf.StochasticD = ptr(st.D)
	} else {
		omit("stochastic", cfg.StochK+cfg.StochD-1)
	}

	// Volatility
	if vol := AnnualizedVolatility(closes, cfg.VolatilityWindow); vol != nil {
		tf.AnnualVolatilityPct = vol
		switch {
		case *vol > cfg.VolatilityHigh:
			tf.VolatilityLevel = models.VolatilityHigh
		case *vol > cfg.VolatilityModerate:
			tf.VolatilityLevel = models.VolatilityModerate
		default:
			tf.VolatilityLevel = models.VolatilityLow
		}
	} else {
		omit("volatility", cfg.VolatilityWindow+1)
	}
	if bb := BollingerLatest(closes, cfg.BollingerPeriod, cfg.BollingerStdDev); bb != nil {
		tf.BollingerPositionPct = ptr(bb.PositionPct(cur.Close))
	} else {
		omit("bollinger", cfg.BollingerPeriod)
	}
	if atr := ATRLatest(highs, lows, closes, cfg.ATRPeriod); atr != nil {
		tf.ATRPct = ptr(*atr / cur.Close * 100)
	} else {
		omit("atr", cfg.ATRPeriod+1)
	}

	tf.Support, tf.Resistance = SupportResistance(bars, cfg.SupportWindow)
	return tf, nil
}
