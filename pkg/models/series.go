// Package models defines the shared data types for index evaluation:
// price and monetary series, news items, per-family factor snapshots,
// recommendations and cross-index comparisons.
package models

import (
	"math"
	"time"
)

// OHLCV represents a single daily price bar.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	AdjClose  float64   `json:"adj_close,omitempty"`
	Volume    int64     `json:"volume"`
}

// PriceSeries is an ordered run of daily bars for one instrument.
// It is used both for index prices and for exchange rates.
type PriceSeries struct {
	Symbol   string  `json:"symbol"`
	Currency string  `json:"currency,omitempty"`
	Bars     []OHLCV `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar. It panics on an empty series.
func (s PriceSeries) Last() OHLCV { return s.Bars[len(s.Bars)-1] }

// Closes returns the close prices in chronological order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the bar highs in chronological order.
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the bar lows in chronological order.
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Validate checks that the series is non-empty, that every bar has a date
// and a finite positive close, and that dates are strictly increasing.
func (s PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return &DataIntegrityError{Series: s.Symbol, Index: -1, Reason: "empty series"}
	}
	for i, b := range s.Bars {
		if b.Timestamp.IsZero() {
			return &DataIntegrityError{Series: s.Symbol, Index: i, Reason: "missing date"}
		}
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			return &DataIntegrityError{Series: s.Symbol, Index: i, Reason: "non-finite or non-positive close"}
		}
		if i > 0 && !b.Timestamp.After(s.Bars[i-1].Timestamp) {
			return &DataIntegrityError{Series: s.Symbol, Index: i, Reason: "dates not strictly increasing"}
		}
	}
	return nil
}

// MonetaryPoint is one observation of a money-supply aggregate.
type MonetaryPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MonetarySeries holds periodic money-supply observations for one region.
type MonetarySeries struct {
	Region   string          `json:"region"`
	SeriesID string          `json:"series_id"`
	Points   []MonetaryPoint `json:"points"`
}

// Validate checks dates are present and strictly increasing and values finite.
func (s MonetarySeries) Validate() error {
	for i, p := range s.Points {
		if p.Date.IsZero() {
			return &DataIntegrityError{Series: s.SeriesID, Index: i, Reason: "missing date"}
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return &DataIntegrityError{Series: s.SeriesID, Index: i, Reason: "non-finite value"}
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return &DataIntegrityError{Series: s.SeriesID, Index: i, Reason: "dates not strictly increasing"}
		}
	}
	return nil
}
