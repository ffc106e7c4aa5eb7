package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// maxParallel bounds concurrent per-index evaluations and news fetches.
const maxParallel = 4

// Batch is the outcome of one EvaluateAll run. An index appears in exactly
// one of Recommendations or Failures.
type Batch struct {
	RunID           string
	AsOf            time.Time
	Recommendations map[string]models.Recommendation
	Failures        map[string]error
}

// IDs returns the ids of successful evaluations in sorted order.
func (b *Batch) IDs() []string {
	ids := make([]string, 0, len(b.Recommendations))
	for id := range b.Recommendations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evaluate produces the recommendation for one index.
func (a *Advisor) Evaluate(ctx context.Context, id string, risk models.RiskTolerance) (models.Recommendation, error) {
	b, err := a.EvaluateAll(ctx, []string{id}, risk)
	if err != nil {
		return models.Recommendation{}, err
	}
	if err := b.Failures[id]; err != nil {
		return models.Recommendation{}, err
	}
	return b.Recommendations[id], nil
}

// EvaluateAll evaluates ids (all configured indices when empty) under one
// run id. News is fetched once and shared. A failing index is recorded in
// Failures and does not stop the others; the returned error is non-nil
// only when ctx ends.
func (a *Advisor) EvaluateAll(ctx context.Context, ids []string, risk models.RiskTolerance) (*Batch, error) {
	if len(ids) == 0 {
		ids = a.IndexIDs()
	}
	asOf := a.now()
	batch := &Batch{
		RunID:           uuid.NewString(),
		AsOf:            asOf,
		Recommendations: make(map[string]models.Recommendation),
		Failures:        make(map[string]error),
	}

	news, newsErr := a.fetchNews(ctx, asOf)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, id := range uniq(ids) {
		g.Go(func() error {
			rec, err := a.evaluate(gctx, id, risk, asOf, news, newsErr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.Error().Str("index", id).Err(err).Msg("evaluation failed")
				batch.Failures[id] = err
				return nil
			}
			rec.RunID = batch.RunID
			batch.Recommendations[id] = rec
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return batch, err
	}

	a.persist(ctx, batch)
	a.log.Info().
		Str("run_id", batch.RunID).
		Int("evaluated", len(batch.Recommendations)).
		Int("failed", len(batch.Failures)).
		Msg("evaluation complete")
	return batch, nil
}

// Compare ranks recommendations. It needs at least two.
func (a *Advisor) Compare(recs map[string]models.Recommendation) (models.ComparisonResult, error) {
	return a.ranker.Compare(recs)
}

func (a *Advisor) evaluate(ctx context.Context, id string, risk models.RiskTolerance, asOf time.Time, news []models.NewsItem, newsErr error) (models.Recommendation, error) {
	p, err := a.Profile(id)
	if err != nil {
		return models.Recommendation{}, err
	}
	if a.src.Prices == nil {
		return models.Recommendation{}, fmt.Errorf("%s: no price source configured", id)
	}

	series, err := a.src.Prices.PriceHistory(ctx, p.Ticker, asOf.Add(-a.cfg.PriceHistory), asOf)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("%s prices: %w", id, err)
	}
	f := models.DecisionFactors{
		IndexID:          id,
		CurrencyExposure: p.HasCurrencyExposure(a.cfg.BaseCurrency),
	}
	if f.Technical, err = a.technical.Extract(series); err != nil {
		return models.Recommendation{}, fmt.Errorf("%s technical: %w", id, err)
	}
	for _, skipped := range f.Technical.Omitted {
		a.log.Debug().Str("index", id).Str("measure", skipped.Measure).Int("have", skipped.Have).Msg("measure omitted")
	}

	f.Sentiment = a.sentiment.Extract(news, p.NewsCategories, asOf)
	if f.Sentiment.Unavailable {
		f.Missing = append(f.Missing, a.missing(id, models.SignalNews, newsErr))
	}

	mf, err := a.monetaryFactors(ctx, p, asOf)
	if err != nil {
		if isIntegrity(err) {
			return models.Recommendation{}, fmt.Errorf("%s monetary: %w", id, err)
		}
		f.Missing = append(f.Missing, a.missing(id, models.SignalMonetary, err))
	}
	f.Monetary = mf

	if f.CurrencyExposure {
		cf, err := a.currencyFactors(ctx, p, asOf)
		if err != nil {
			if isIntegrity(err) {
				return models.Recommendation{}, fmt.Errorf("%s currency: %w", id, err)
			}
			f.Missing = append(f.Missing, a.missing(id, models.SignalCurrency, err))
		}
		f.Currency = cf
	}

	return a.engine.Score(f, risk), nil
}

func (a *Advisor) monetaryFactors(ctx context.Context, p models.IndexProfile, asOf time.Time) (*models.MonetaryFactors, error) {
	if a.src.Monetary == nil {
		return nil, errors.New("no monetary source configured")
	}
	region, ok := a.cfg.Regions[p.Region]
	if !ok {
		return nil, fmt.Errorf("no money-supply series for region %q", p.Region)
	}
	if region.ID == "" {
		region.ID = p.Region
	}
	series, err := a.src.Monetary.MonetaryHistory(ctx, region, asOf.Add(-a.cfg.MonetaryHistory), asOf)
	if err != nil {
		return nil, err
	}
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("no observations for %s", region.SeriesID)
	}
	mf, err := a.monetary.Extract(region.ID, series)
	if err != nil {
		return nil, err
	}
	return &mf, nil
}

func (a *Advisor) currencyFactors(ctx context.Context, p models.IndexProfile, asOf time.Time) (*models.CurrencyFactors, error) {
	if a.src.Rates == nil {
		return nil, errors.New("no exchange-rate source configured")
	}
	if p.FXPair == "" {
		return nil, fmt.Errorf("no exchange-rate pair configured for %s", p.Currency)
	}
	series, err := a.src.Rates.RateHistory(ctx, p.FXPair, asOf.Add(-a.cfg.PriceHistory), asOf)
	if err != nil {
		return nil, err
	}
	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("no observations for %s", p.FXPair)
	}
	return a.currency.Extract(p.FXPair, series)
}

// fetchNews gathers every configured category. Failed categories are
// logged and skipped; the error is returned only when nothing was fetched.
func (a *Advisor) fetchNews(ctx context.Context, asOf time.Time) ([]models.NewsItem, error) {
	if a.src.News == nil {
		return nil, errors.New("no news source configured")
	}
	since := asOf.Add(-a.cfg.NewsLookback)
	results := make([][]models.NewsItem, len(a.cfg.NewsCategories))
	errs := make([]error, len(a.cfg.NewsCategories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, cat := range a.cfg.NewsCategories {
		g.Go(func() error {
			items, err := a.src.News.News(gctx, cat, since)
			if err != nil {
				a.log.Warn().Str("category", cat).Err(err).Msg("news fetch failed")
				errs[i] = fmt.Errorf("%s: %w", cat, err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var items []models.NewsItem
	for _, r := range results {
		items = append(items, r...)
	}
	if len(items) == 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (a *Advisor) persist(ctx context.Context, b *Batch) {
	if a.sink == nil {
		return
	}
	for _, id := range b.IDs() {
		if err := a.sink.SaveRecommendation(ctx, b.Recommendations[id]); err != nil {
			a.log.Warn().Str("index", id).Err(err).Msg("save recommendation")
		}
	}
}

func (a *Advisor) missing(id, signal string, err error) models.MissingOptionalSignalError {
	a.log.Warn().Str("index", id).Str("signal", signal).Err(err).Msg("optional signal unavailable")
	return models.MissingOptionalSignalError{Signal: signal, Err: err}
}

func isIntegrity(err error) bool {
	var die *models.DataIntegrityError
	return errors.As(err, &die)
}

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
