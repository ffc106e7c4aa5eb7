package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/seenimoa/indexadvisor/internal/infra"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// DefaultYahooURL is the Yahoo Finance v8 chart endpoint.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Yahoo serves daily index bars and exchange rates from the Yahoo Finance
// chart API.
type Yahoo struct {
	client  *infra.Client
	cache   *infra.Cache
	baseURL string
}

// NewYahoo creates a Yahoo Finance source.
func NewYahoo(opts Options) *Yahoo {
	return &Yahoo{
		client:  opts.client(),
		cache:   infra.NewCache(opts.CacheTTL),
		baseURL: opts.baseURL(DefaultYahooURL),
	}
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// PriceHistory returns daily bars for an index ticker such as ^GSPC.
func (y *Yahoo) PriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	return y.chart(ctx, ticker, from, to)
}

// RateHistory returns daily rates for a currency pair ticker such as
// EURUSD=X. The close is the index currency per unit of the base currency.
func (y *Yahoo) RateHistory(ctx context.Context, pair string, from, to time.Time) (models.PriceSeries, error) {
	return y.chart(ctx, pair, from, to)
}

func (y *Yahoo) chart(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	// Day granularity keeps the key stable across calls within a day.
	cacheKey := fmt.Sprintf("chart:%s:%s:%s", ticker, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(models.PriceSeries), nil
	}

	u := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix())
	data, err := y.client.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.PriceSeries{}, fmt.Errorf("parse yahoo chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return models.PriceSeries{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return models.PriceSeries{}, fmt.Errorf("yahoo chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.PriceSeries{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	result := resp.Chart.Result[0]
	series := models.PriceSeries{
		Symbol:   ticker,
		Currency: result.Meta.Currency,
		Bars:     parseYFCandles(result),
	}
	// Keys roll with the date window; drop expired ones before adding.
	y.cache.Cleanup()
	y.cache.Set(cacheKey, series)
	return series, nil
}

// --- Helpers ---

// parseYFCandles converts the columnar chart payload into bars. Bars
// without a close (holidays, the live bar) are skipped; a missing open,
// high or low falls back to the close.
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		cl := at(q.Close, i)
		if cl == nil || math.IsNaN(*cl) {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *cl,
			Open:      valueOr(at(q.Open, i), *cl),
			High:      valueOr(at(q.High, i), *cl),
			Low:       valueOr(at(q.Low, i), *cl),
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if v := at(adjCloses, i); v != nil {
			c.AdjClose = *v
		}
		candles = append(candles, c)
	}
	return candles
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
