package models

import "strings"

// CashID is the allocation leg for uninvested capital.
const CashID = "CASH"

// IndexProfile is the setup-time record for one evaluable index.
type IndexProfile struct {
	ID       string `json:"id"               mapstructure:"id"`
	Ticker   string `json:"ticker"           mapstructure:"ticker"`
	Name     string `json:"name"             mapstructure:"name"`
	Currency string `json:"currency"         mapstructure:"currency"`
	Region   string `json:"region"           mapstructure:"region"`
	// FXPair is the exchange-rate ticker used when Currency differs from
	// the investor's base currency.
	FXPair string `json:"fx_pair,omitempty" mapstructure:"fx_pair"`
	// NewsCategories are pooled into the index's overall sentiment.
	NewsCategories []string `json:"news_categories" mapstructure:"news_categories"`
}

// HasCurrencyExposure reports whether the index is denominated in a
// currency other than base.
func (p IndexProfile) HasCurrencyExposure(base string) bool {
	return !strings.EqualFold(p.Currency, base)
}

// Region maps a monetary region to its money-supply series.
type Region struct {
	ID       string `json:"id"        mapstructure:"id"`
	Name     string `json:"name"      mapstructure:"name"`
	SeriesID string `json:"series_id" mapstructure:"series_id"`
}
