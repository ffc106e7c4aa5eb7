package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/indexadvisor/internal/infra"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// DefaultFredURL is the FRED series observations endpoint.
const DefaultFredURL = "https://api.stlouisfed.org/fred/series/observations"

// Fred serves money-supply series from the St. Louis Fed FRED API.
type Fred struct {
	client  *infra.Client
	cache   *infra.Cache
	apiKey  string
	baseURL string
}

// NewFred creates a FRED source. An empty apiKey is allowed; every
// request then fails with ErrMissingAPIKey.
func NewFred(apiKey string, opts Options) *Fred {
	return &Fred{
		client:  opts.client(),
		cache:   infra.NewCache(opts.CacheTTL),
		apiKey:  apiKey,
		baseURL: opts.baseURL(DefaultFredURL),
	}
}

// Name returns the data source name.
func (f *Fred) Name() string { return "FRED" }

type fredResponse struct {
	Observations []fredObservation `json:"observations"`
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// MonetaryHistory returns the region's money-supply observations between
// from and to.
func (f *Fred) MonetaryHistory(ctx context.Context, region models.Region, from, to time.Time) (models.MonetarySeries, error) {
	if f.apiKey == "" {
		return models.MonetarySeries{}, fmt.Errorf("fred %s: %w", region.SeriesID, ErrMissingAPIKey)
	}

	cacheKey := fmt.Sprintf("fred:%s:%s:%s", region.SeriesID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.(models.MonetarySeries), nil
	}

	q := url.Values{}
	q.Set("series_id", region.SeriesID)
	q.Set("api_key", f.apiKey)
	q.Set("file_type", "json")
	q.Set("observation_start", from.Format(time.DateOnly))
	q.Set("observation_end", to.Format(time.DateOnly))

	data, err := f.client.GetBytes(ctx, f.baseURL+"?"+q.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		return models.MonetarySeries{}, fmt.Errorf("fred %s: %w", region.SeriesID, err)
	}

	var resp fredResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.MonetarySeries{}, fmt.Errorf("parse fred %s: %w", region.SeriesID, err)
	}
	if resp.ErrorMessage != "" {
		return models.MonetarySeries{}, fmt.Errorf("fred %s: %s", region.SeriesID, resp.ErrorMessage)
	}

	series, err := parseObservations(region, resp.Observations)
	if err != nil {
		return models.MonetarySeries{}, err
	}
	f.cache.Cleanup()
	f.cache.Set(cacheKey, series)
	return series, nil
}

// parseObservations converts FRED rows; "." marks a missing value and is
// skipped. An unparsable date is a data integrity failure.
func parseObservations(region models.Region, obs []fredObservation) (models.MonetarySeries, error) {
	series := models.MonetarySeries{Region: region.ID, SeriesID: region.SeriesID}
	for i, o := range obs {
		if o.Value == "." || o.Value == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, o.Date)
		if err != nil {
			return models.MonetarySeries{}, &models.DataIntegrityError{Series: region.SeriesID, Index: i, Reason: "bad date " + strconv.Quote(o.Date)}
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		series.Points = append(series.Points, models.MonetaryPoint{Date: d, Value: v})
	}
	return series, nil
}
