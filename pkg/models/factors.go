package models

import "time"

// Trend classifies price structure relative to its moving averages.
type Trend string

const (
	TrendStrongUp   Trend = "strong_up"
	TrendUp         Trend = "up"
	TrendSideways   Trend = "sideways"
	TrendDown       Trend = "down"
	TrendStrongDown Trend = "strong_down"
)

// IsUp reports whether the trend is up or strong_up.
func (t Trend) IsUp() bool { return t == TrendUp || t == TrendStrongUp }

// IsDown reports whether the trend is down or strong_down.
func (t Trend) IsDown() bool { return t == TrendDown || t == TrendStrongDown }

// RSIStatus buckets the relative strength index.
type RSIStatus string

const (
	RSIOversold   RSIStatus = "oversold"
	RSINeutral    RSIStatus = "neutral"
	RSIOverbought RSIStatus = "overbought"
)

// VolatilityLevel buckets annualized volatility.
type VolatilityLevel string

const (
	VolatilityLow      VolatilityLevel = "low"
	VolatilityModerate VolatilityLevel = "moderate"
	VolatilityHigh     VolatilityLevel = "high"
)

// TechnicalFactors is the technical snapshot of one price series.
// Pointer fields are nil when the series is too short for that measure;
// Omitted lists every measure skipped that way.
type TechnicalFactors struct {
	AsOf          time.Time `json:"as_of"`
	Observations  int       `json:"observations"`
	CurrentPrice  float64   `json:"current_price"`
	RecentHigh    float64   `json:"recent_high"`
	DipPct        float64   `json:"dip_pct"`
	DaysSinceHigh int       `json:"days_since_high"`
	// SignificantDip is set below -3%, MajorDip below -5%.
	SignificantDip bool `json:"significant_dip"`
	MajorDip       bool `json:"major_dip"`

	Trend        Trend    `json:"trend"`
	MA50         *float64 `json:"ma50,omitempty"`
	MA200        *float64 `json:"ma200,omitempty"`
	PriceVsMA50  *float64 `json:"price_vs_ma50_pct,omitempty"`
	PriceVsMA200 *float64 `json:"price_vs_ma200_pct,omitempty"`
	GoldenCross  bool     `json:"golden_cross"`

	RSI           *float64  `json:"rsi,omitempty"`
	RSIStatus     RSIStatus `json:"rsi_status"`
	MACD          *float64  `json:"macd,omitempty"`
	MACDSignal    *float64  `json:"macd_signal,omitempty"`
	MACDHistogram *float64  `json:"macd_histogram,omitempty"`
	MACDBullish   bool      `json:"macd_bullish"`
	StochasticK   *float64  `json:"stochastic_k,omitempty"`
	StochasticD   *float64  `json:"stochastic_d,omitempty"`

	AnnualVolatilityPct  *float64        `json:"annual_volatility_pct,omitempty"`
	VolatilityLevel      VolatilityLevel `json:"volatility_level"`
	BollingerPositionPct *float64        `json:"bollinger_position_pct,omitempty"`
	ATRPct               *float64        `json:"atr_pct,omitempty"`

	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`

	Omitted []InsufficientHistoryError `json:"omitted,omitempty"`
}

// SentimentLabel is the sign bucket of a weighted sentiment score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// CategorySentiment is the time-decayed aggregate for one news category.
type CategorySentiment struct {
	Category      string         `json:"category"`
	WeightedScore float64        `json:"weighted_score"`
	ArticleCount  int            `json:"article_count"`
	PositiveCount int            `json:"positive_count"`
	NegativeCount int            `json:"negative_count"`
	Label         SentimentLabel `json:"label"`
}

// MarketTone is the keyword-derived tone across all articles.
type MarketTone string

const (
	ToneBullish MarketTone = "bullish"
	ToneBearish MarketTone = "bearish"
	ToneNeutral MarketTone = "neutral"
)

// SentimentFactors is the news snapshot used for one index.
type SentimentFactors struct {
	Categories map[string]CategorySentiment `json:"categories"`
	// Overall pools the categories the index focuses on.
	Overall CategorySentiment `json:"overall"`

	RecessionProbability float64 `json:"recession_probability"`
	RecessionArticles    int     `json:"recession_articles"`
	BubbleRisk           float64 `json:"bubble_risk"`
	BubbleArticles       int     `json:"bubble_articles"`

	MarketTone   MarketTone `json:"market_tone"`
	BullishRatio float64    `json:"bullish_ratio"`
	BearishRatio float64    `json:"bearish_ratio"`

	TotalArticles int  `json:"total_articles"`
	Unavailable   bool `json:"unavailable"`
}

// MonetaryImpact labels the favorability of money-supply growth.
type MonetaryImpact string

const (
	ImpactVeryPositive MonetaryImpact = "very_positive"
	ImpactPositive     MonetaryImpact = "positive"
	ImpactNeutral      MonetaryImpact = "neutral"
	ImpactNegative     MonetaryImpact = "negative"
	ImpactUnknown      MonetaryImpact = "unknown"
)

// MonetaryFactors is the money-supply snapshot of one region. Growth fields
// are nil when the series is too short; zero is a real growth value.
type MonetaryFactors struct {
	Region            string         `json:"region"`
	SeriesID          string         `json:"series_id"`
	Latest            float64        `json:"latest"`
	LatestDate        time.Time      `json:"latest_date"`
	YoYGrowthPct      *float64       `json:"yoy_growth_pct,omitempty"`
	MoMGrowthPct      *float64       `json:"mom_growth_pct,omitempty"`
	FavorabilityScore int            `json:"favorability_score"`
	Impact            MonetaryImpact `json:"impact_label"`
}

// CurrencyTrend describes the foreign currency against the investor's base.
type CurrencyTrend string

const (
	CurrencyStrengthening CurrencyTrend = "strengthening"
	CurrencyWeakening     CurrencyTrend = "weakening"
	CurrencyStable        CurrencyTrend = "stable"
)

// RiskLevel is a three-step risk bucket.
type RiskLevel string

const (
	LevelLow      RiskLevel = "low"
	LevelModerate RiskLevel = "moderate"
	LevelHigh     RiskLevel = "high"
)

// CurrencyFactors is the exchange-rate snapshot for a foreign-denominated
// index. The rate is quoted as index currency per unit of the base currency
// (EURUSD: USD per EUR), so a rising rate means the index currency is
// weakening against the investor's base.
type CurrencyFactors struct {
	Pair      string        `json:"pair"`
	Current   float64       `json:"current"`
	Window    int           `json:"window"`
	ChangePct float64       `json:"change_pct"`
	Trend     CurrencyTrend `json:"trend"`
	RiskLevel RiskLevel     `json:"risk_level"`
}

// DecisionFactors bundles the four factor families for one index at one
// evaluation instant.
type DecisionFactors struct {
	IndexID   string           `json:"index_id"`
	Technical TechnicalFactors `json:"technical"`
	Sentiment SentimentFactors `json:"sentiment"`
	// Monetary is nil when the regional series was unavailable.
	Monetary *MonetaryFactors `json:"monetary,omitempty"`
	// CurrencyExposure is true when the index is denominated in a currency
	// other than the investor's base. Currency is nil when there is no
	// exposure or when the rate series was unavailable.
	CurrencyExposure bool             `json:"currency_exposure"`
	Currency         *CurrencyFactors `json:"currency,omitempty"`

	// Missing records why each defaulted optional signal was unavailable.
	Missing []MissingOptionalSignalError `json:"-"`
}

// MissingSignal returns the recorded failure for an optional signal.
func (f DecisionFactors) MissingSignal(signal string) (MissingOptionalSignalError, bool) {
	for _, m := range f.Missing {
		if m.Signal == signal {
			return m, true
		}
	}
	return MissingOptionalSignalError{}, false
}

// IsMissing reports whether the given optional signal was unavailable.
func (f DecisionFactors) IsMissing(signal string) bool {
	_, ok := f.MissingSignal(signal)
	return ok
}
