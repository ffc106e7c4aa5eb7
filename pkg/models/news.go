package models

import "time"

// News categories collected for the sentiment pass.
const (
	CategorySP500         = "sp500"
	CategoryCW8           = "cw8"
	CategoryMarketGeneral = "market_general"
	CategoryRecession     = "recession"
	CategoryAIBubble      = "ai_bubble"
	CategoryFedPolicy     = "fed_policy"
	CategoryECBPolicy     = "ecb_policy"
	CategoryDollarEUR     = "dollar_eur"
	CategoryM2Liquidity   = "m2_liquidity"
)

// NewsItem is a scored news headline. A zero PublishedAt means the feed
// did not carry a publication date.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Score       float64   `json:"sentiment_score"` // -1.0 (very bearish) to +1.0 (very bullish)
}
