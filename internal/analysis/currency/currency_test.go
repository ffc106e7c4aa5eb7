package currency

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// makeRates builds n daily rates moving linearly from start by totalPct.
func makeRates(n int, start, totalPct float64) models.PriceSeries {
	s := models.PriceSeries{Symbol: "EURUSD=X"}
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		v := start
		if n > 1 {
			v = start * (1 + totalPct/100*float64(i)/float64(n-1))
		}
		s.Bars = append(s.Bars, models.OHLCV{Timestamp: t0.AddDate(0, 0, i), Open: v, High: v, Low: v, Close: v})
	}
	return s
}

func TestRisingRateIsWeakening(t *testing.T) {
	cf, err := NewExtractor(DefaultConfig()).Extract("EURUSD", makeRates(31, 1.08, 3))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if math.Abs(cf.ChangePct-3) > 1e-9 {
		t.Errorf("change: got %.6f, want 3", cf.ChangePct)
	}
	if cf.Trend != models.CurrencyWeakening {
		t.Errorf("a 3%% rise must classify as weakening, got %s", cf.Trend)
	}
	if cf.RiskLevel != models.LevelModerate {
		t.Errorf("risk: got %s, want moderate", cf.RiskLevel)
	}
	if cf.Window != 30 {
		t.Errorf("window: got %d, want 30", cf.Window)
	}
}

func TestFallingRateIsStrengthening(t *testing.T) {
	cf, err := NewExtractor(DefaultConfig()).Extract("EURUSD", makeRates(31, 1.10, -3))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if cf.Trend != models.CurrencyStrengthening || cf.RiskLevel != models.LevelLow {
		t.Errorf("got %s/%s, want strengthening/low", cf.Trend, cf.RiskLevel)
	}
}

func TestWindowUsesTrailingObservation(t *testing.T) {
	// 60 points: flat for the first 29, then a 6% climb. Only the last 31
	// points matter.
	s := makeRates(60, 1.0, 0)
	for i := 29; i < 60; i++ {
		v := 1.0 * (1 + 0.06*float64(i-29)/30)
		s.Bars[i].Close = v
	}
	s.Bars[0].Close = 5 // outside the window
	cf, err := NewExtractor(DefaultConfig()).Extract("EURUSD", s)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if math.Abs(cf.ChangePct-6) > 1e-9 {
		t.Errorf("change: got %.6f, want 6", cf.ChangePct)
	}
	if cf.RiskLevel != models.LevelHigh {
		t.Errorf("risk: got %s, want high", cf.RiskLevel)
	}
}

func TestShortSeriesUsesFirst(t *testing.T) {
	cf, err := NewExtractor(DefaultConfig()).Extract("EURUSD", makeRates(10, 1.0, 1))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if cf.Window != 9 {
		t.Errorf("window: got %d, want 9", cf.Window)
	}
	if cf.Trend != models.CurrencyStable {
		t.Errorf("trend: got %s, want stable", cf.Trend)
	}

	cf, err = NewExtractor(DefaultConfig()).Extract("EURUSD", makeRates(1, 1.0, 0))
	if err != nil {
		t.Fatalf("Extract single: %v", err)
	}
	if cf.ChangePct != 0 || cf.Window != 0 {
		t.Errorf("single point: %+v", cf)
	}
}

func TestClassifyTable(t *testing.T) {
	ext := NewExtractor(DefaultConfig())
	tests := []struct {
		change float64
		trend  models.CurrencyTrend
		risk   models.RiskLevel
	}{
		{-8, models.CurrencyStrengthening, models.LevelLow},
		{-2.01, models.CurrencyStrengthening, models.LevelLow},
		{-2, models.CurrencyStable, models.LevelLow},
		{0, models.CurrencyStable, models.LevelLow},
		{2, models.CurrencyStable, models.LevelLow},
		{2.01, models.CurrencyWeakening, models.LevelModerate},
		{5, models.CurrencyWeakening, models.LevelModerate},
		{5.01, models.CurrencyWeakening, models.LevelHigh},
	}
	for _, tt := range tests {
		trend, risk := ext.Classify(tt.change)
		if trend != tt.trend || risk != tt.risk {
			t.Errorf("Classify(%.2f) = %s/%s, want %s/%s", tt.change, trend, risk, tt.trend, tt.risk)
		}
	}
}

func TestExtractInvalidSeries(t *testing.T) {
	_, err := NewExtractor(DefaultConfig()).Extract("EURUSD", models.PriceSeries{Symbol: "EURUSD=X"})
	var die *models.DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}
