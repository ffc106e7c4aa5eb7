package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 14, 30, 0, 0, time.UTC)
}

func bars(closes ...float64) []models.OHLCV {
	out := make([]models.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = models.OHLCV{Timestamp: day(i + 1), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: int64(100 * (i + 1))}
	}
	return out
}

// ── Prices / rates ──

func TestPricesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.SavePrices(ctx, models.PriceSeries{Symbol: "^GSPC", Currency: "USD", Bars: bars(100, 101, 102)})
	if err != nil || n != 3 {
		t.Fatalf("SavePrices: %d, %v", n, err)
	}

	got, err := s.PriceHistory(ctx, "^GSPC", day(1), day(10))
	if err != nil {
		t.Fatalf("PriceHistory: %v", err)
	}
	if got.Len() != 3 || got.Currency != "USD" {
		t.Fatalf("series: %+v", got)
	}
	if got.Bars[2].Close != 102 || got.Bars[2].Volume != 300 {
		t.Errorf("last bar: %+v", got.Bars[2])
	}
	if !got.Bars[0].Timestamp.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dates are stored by day: %v", got.Bars[0].Timestamp)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("stored series should validate: %v", err)
	}

	// Window filter.
	got, err = s.PriceHistory(ctx, "^GSPC", day(2), day(2))
	if err != nil || got.Len() != 1 {
		t.Errorf("window: %d bars, %v", got.Len(), err)
	}
}

func TestPricesUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SavePrices(ctx, models.PriceSeries{Symbol: "CW8.PA", Bars: bars(500, 501)})
	s.SavePrices(ctx, models.PriceSeries{Symbol: "CW8.PA", Bars: bars(510, 511, 512)})

	got, err := s.PriceHistory(ctx, "CW8.PA", day(1), day(31))
	if err != nil {
		t.Fatalf("PriceHistory: %v", err)
	}
	if got.Len() != 3 || got.Bars[0].Close != 510 {
		t.Errorf("upsert should replace rows: %+v", got.Bars)
	}
}

func TestPriceHistoryNoData(t *testing.T) {
	s := openTestStore(t)
	_, err := s.PriceHistory(context.Background(), "^GSPC", day(1), day(2))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	_, err = s.RateHistory(context.Background(), "EURUSD=X", day(1), day(2))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestRatesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveRates(ctx, models.PriceSeries{Symbol: "EURUSD=X", Bars: bars(1.08, 1.09)}); err != nil {
		t.Fatalf("SaveRates: %v", err)
	}
	got, err := s.RateHistory(ctx, "EURUSD=X", day(1), day(5))
	if err != nil {
		t.Fatalf("RateHistory: %v", err)
	}
	if got.Len() != 2 || got.Last().Close != 1.09 {
		t.Errorf("rates: %+v", got)
	}
}

// ── Monetary ──

func TestMonetaryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	region := models.Region{ID: "US", SeriesID: "M2SL"}

	series := models.MonetarySeries{Region: "US", SeriesID: "M2SL"}
	for m := 1; m <= 13; m++ {
		series.Points = append(series.Points, models.MonetaryPoint{
			Date:  time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
			Value: 20000 + float64(m),
		})
	}
	if _, err := s.SaveMonetary(ctx, series); err != nil {
		t.Fatalf("SaveMonetary: %v", err)
	}

	got, err := s.MonetaryHistory(ctx, region, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonetaryHistory: %v", err)
	}
	if len(got.Points) != 13 || got.Region != "US" {
		t.Errorf("points: %d, region %q", len(got.Points), got.Region)
	}

	_, err = s.MonetaryHistory(ctx, models.Region{ID: "EZ", SeriesID: "NONE"}, time.Time{}, time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

// ── News ──

func TestNewsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	items := []models.NewsItem{
		{Title: "Old story", Category: models.CategorySP500, PublishedAt: now.AddDate(0, 0, -20), Score: -0.5},
		{Title: "Fresh rally", Category: models.CategorySP500, PublishedAt: now.AddDate(0, 0, -1), Score: 0.6, Source: "Reuters"},
		{Title: "Older rally", Category: models.CategorySP500, PublishedAt: now.AddDate(0, 0, -3), Score: 0.2},
		{Title: "Undated", Category: models.CategorySP500, Score: 0},
		{Title: "Fed holds", Category: models.CategoryFedPolicy, PublishedAt: now, Score: 0},
	}
	if n, err := s.SaveNews(ctx, items); err != nil || n != 5 {
		t.Fatalf("SaveNews: %d, %v", n, err)
	}
	// Saving the same headline again updates it in place.
	if _, err := s.SaveNews(ctx, []models.NewsItem{{Title: "FRESH RALLY", Category: models.CategorySP500, Score: 0.9}}); err != nil {
		t.Fatalf("SaveNews again: %v", err)
	}

	got, err := s.News(ctx, models.CategorySP500, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("items: got %d, want 3: %+v", len(got), got)
	}
	if got[0].Title != "Fresh rally" || got[0].Score != 0.9 {
		t.Errorf("newest first with refreshed score: %+v", got[0])
	}
	if !got[0].PublishedAt.Equal(now.AddDate(0, 0, -1)) {
		t.Errorf("published date kept on refresh: %v", got[0].PublishedAt)
	}
	if got[2].Title != "Undated" {
		t.Errorf("undated last: %+v", got[2])
	}

	empty, err := s.News(ctx, models.CategoryAIBubble, now)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty category: %v, %v", empty, err)
	}
}

// ── Recommendations ──

func TestRecommendationsLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rsi := 28.0
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	recs := []models.Recommendation{
		{IndexID: "CW8", RunID: "run-1", RiskTolerance: models.RiskModerate, Category: models.Hold, Score: 15, Confidence: 0.15, EvaluatedAt: at},
		{IndexID: "SP500", RunID: "run-1", RiskTolerance: models.RiskModerate, Category: models.StrongBuy, Score: 65, Confidence: 0.65,
			Reasons: []string{"RSI oversold"}, RiskFactors: []string{"Currency drag"}, EvaluatedAt: at,
			Factors: &models.DecisionFactors{Technical: models.TechnicalFactors{RSI: &rsi}}},
		{IndexID: "SP500", RunID: "run-2", RiskTolerance: models.RiskAggressive, Category: models.Buy, Score: 25, Confidence: 0.25, EvaluatedAt: at.Add(time.Hour)},
	}
	for _, r := range recs {
		if err := s.SaveRecommendation(ctx, r); err != nil {
			t.Fatalf("SaveRecommendation: %v", err)
		}
	}

	last, err := s.LastRunID(ctx)
	if err != nil || last != "run-2" {
		t.Errorf("LastRunID: %q, %v", last, err)
	}

	run1, err := s.Recommendations(ctx, RecommendationFilter{RunID: "run-1"})
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if len(run1) != 2 || run1[0].IndexID != "SP500" {
		t.Fatalf("run-1 newest first: %+v", run1)
	}
	sp := run1[0]
	if sp.Category != models.StrongBuy || sp.Score != 65 || sp.RiskTolerance != models.RiskModerate {
		t.Errorf("fields: %+v", sp)
	}
	if len(sp.Reasons) != 1 || len(sp.RiskFactors) != 1 {
		t.Errorf("lists: %v %v", sp.Reasons, sp.RiskFactors)
	}
	if sp.Factors == nil || sp.Factors.Technical.RSI == nil || *sp.Factors.Technical.RSI != 28 {
		t.Errorf("factors snapshot: %+v", sp.Factors)
	}
	if !sp.EvaluatedAt.Equal(at) {
		t.Errorf("EvaluatedAt: %v", sp.EvaluatedAt)
	}
	if run1[1].Reasons == nil {
		t.Error("empty reasons decode as an empty list")
	}

	limited, err := s.Recommendations(ctx, RecommendationFilter{IndexID: "SP500", Limit: 1})
	if err != nil || len(limited) != 1 || limited[0].RunID != "run-2" {
		t.Errorf("filter by index with limit: %+v, %v", limited, err)
	}
}

func TestLastRunIDEmpty(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LastRunID(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

// ── Metadata / stats ──

func TestMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Metadata(ctx, "last_update"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	s.SetMetadata(ctx, "last_update", "a")
	s.SetMetadata(ctx, "last_update", "b")
	v, err := s.Metadata(ctx, "last_update")
	if err != nil || v != "b" {
		t.Errorf("Metadata: %q, %v", v, err)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SavePrices(ctx, models.PriceSeries{Symbol: "^GSPC", Bars: bars(1, 2, 3)})
	s.SaveRates(ctx, models.PriceSeries{Symbol: "EURUSD=X", Bars: bars(1.1)})
	s.SaveNews(ctx, []models.NewsItem{{Title: "x", Category: "sp500", PublishedAt: day(4)}})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("stats rows: %+v", stats)
	}
	p := stats[0]
	if p.Table != "historical_prices" || p.Series != "^GSPC" || p.Rows != 3 || p.From != "2025-01-01" || p.To != "2025-01-03" {
		t.Errorf("price stats: %+v", p)
	}
	n := stats[2]
	if n.Table != "news_articles" || n.From != "2025-01-04" {
		t.Errorf("news stats: %+v", n)
	}
}
