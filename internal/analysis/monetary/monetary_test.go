package monetary

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// makeSeries builds monthly points growing by rate percent per month.
func makeSeries(n int, start, rate float64) models.MonetarySeries {
	s := models.MonetarySeries{Region: "US", SeriesID: "M2SL"}
	v := start
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, models.MonetaryPoint{
			Date:  time.Date(2023, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC),
			Value: v,
		})
		v *= 1 + rate/100
	}
	return s
}

func TestExtractGrowth(t *testing.T) {
	s := makeSeries(13, 100, 0.5)
	mf, err := NewExtractor(DefaultConfig()).Extract("US", s)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if mf.YoYGrowthPct == nil || mf.MoMGrowthPct == nil {
		t.Fatal("expected both growth rates with 13 points")
	}
	wantYoY := (math.Pow(1.005, 12) - 1) * 100
	if math.Abs(*mf.YoYGrowthPct-wantYoY) > 1e-9 {
		t.Errorf("YoY: got %.6f, want %.6f", *mf.YoYGrowthPct, wantYoY)
	}
	if math.Abs(*mf.MoMGrowthPct-0.5) > 1e-9 {
		t.Errorf("MoM: got %.6f, want 0.5", *mf.MoMGrowthPct)
	}
	// 0.5%/month compounds to ~6.17% a year.
	if mf.FavorabilityScore != 20 || mf.Impact != models.ImpactVeryPositive {
		t.Errorf("favorability: got %d %s, want 20 very_positive", mf.FavorabilityScore, mf.Impact)
	}
	if mf.Latest != s.Points[12].Value || !mf.LatestDate.Equal(s.Points[12].Date) {
		t.Errorf("latest: got %.2f at %s", mf.Latest, mf.LatestDate)
	}
}

func TestExtractModerateGrowth(t *testing.T) {
	// 0.3%/month compounds to ~3.66% a year.
	mf, err := NewExtractor(DefaultConfig()).Extract("US", makeSeries(13, 100, 0.3))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	wantYoY := (math.Pow(1.003, 12) - 1) * 100
	if mf.YoYGrowthPct == nil || math.Abs(*mf.YoYGrowthPct-wantYoY) > 1e-9 {
		t.Fatalf("YoY: got %v, want %.6f", mf.YoYGrowthPct, wantYoY)
	}
	if mf.FavorabilityScore != 10 || mf.Impact != models.ImpactPositive {
		t.Errorf("favorability: got %d %s, want 10 positive", mf.FavorabilityScore, mf.Impact)
	}
}

func TestExtractShortHistory(t *testing.T) {
	ext := NewExtractor(DefaultConfig())

	mf, err := ext.Extract("US", makeSeries(12, 100, 1))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if mf.YoYGrowthPct != nil {
		t.Errorf("YoY needs 13 points, got %.2f from 12", *mf.YoYGrowthPct)
	}
	if mf.MoMGrowthPct == nil {
		t.Error("MoM should be available with 12 points")
	}
	if mf.FavorabilityScore != 0 || mf.Impact != models.ImpactUnknown {
		t.Errorf("unknown growth: got %d %s", mf.FavorabilityScore, mf.Impact)
	}

	mf, err = ext.Extract("US", makeSeries(1, 100, 1))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if mf.MoMGrowthPct != nil {
		t.Error("MoM needs 2 points")
	}

	mf, err = ext.Extract("US", models.MonetarySeries{SeriesID: "M2SL"})
	if err != nil {
		t.Fatalf("Extract empty: %v", err)
	}
	if mf.Impact != models.ImpactUnknown || mf.Latest != 0 {
		t.Errorf("empty series: %+v", mf)
	}
}

func TestZeroGrowthIsNotUnknown(t *testing.T) {
	mf, err := NewExtractor(DefaultConfig()).Extract("EUROZONE", makeSeries(13, 100, 0))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if mf.YoYGrowthPct == nil || *mf.YoYGrowthPct != 0 {
		t.Fatalf("expected zero YoY, got %v", mf.YoYGrowthPct)
	}
	if mf.Impact != models.ImpactNeutral {
		t.Errorf("impact: got %s, want neutral", mf.Impact)
	}
}

func TestFavorabilityBands(t *testing.T) {
	ext := NewExtractor(DefaultConfig())
	tests := []struct {
		yoy    float64
		score  int
		impact models.MonetaryImpact
	}{
		{12, 20, models.ImpactVeryPositive},
		{5, 20, models.ImpactVeryPositive},
		{4.99, 10, models.ImpactPositive},
		{2, 10, models.ImpactPositive},
		{1.99, 0, models.ImpactNeutral},
		{0, 0, models.ImpactNeutral},
		{-2, 0, models.ImpactNeutral},
		{-2.01, -15, models.ImpactNegative},
		{-10, -15, models.ImpactNegative},
	}
	for _, tt := range tests {
		yoy := tt.yoy
		score, impact := ext.Favorability(&yoy)
		if score != tt.score || impact != tt.impact {
			t.Errorf("Favorability(%.2f) = %d %s, want %d %s", tt.yoy, score, impact, tt.score, tt.impact)
		}
	}
}

func TestFavorabilityMonotone(t *testing.T) {
	ext := NewExtractor(DefaultConfig())
	prev := math.MinInt
	for g := -10.0; g <= 10; g += 0.25 {
		v := g
		score, _ := ext.Favorability(&v)
		if score < prev {
			t.Fatalf("score dropped at %.2f%%: %d < %d", g, score, prev)
		}
		prev = score
	}
	six, one := 6.0, 1.0
	s6, _ := ext.Favorability(&six)
	s1, _ := ext.Favorability(&one)
	if s6 < s1 {
		t.Errorf("6%% scored %d below 1%% at %d", s6, s1)
	}
}

func TestExtractRejectsBadDates(t *testing.T) {
	s := makeSeries(5, 100, 1)
	s.Points[3].Date = s.Points[1].Date
	_, err := NewExtractor(DefaultConfig()).Extract("US", s)
	var die *models.DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
	if die.Index != 3 {
		t.Errorf("index: got %d, want 3", die.Index)
	}
}

func TestZeroBaseYieldsNil(t *testing.T) {
	s := makeSeries(3, 100, 1)
	s.Points[1].Value = 0
	mf, err := NewExtractor(DefaultConfig()).Extract("US", s)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if mf.MoMGrowthPct != nil {
		t.Errorf("growth from a zero base must be nil, got %.2f", *mf.MoMGrowthPct)
	}
}
