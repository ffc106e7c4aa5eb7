package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indexadvisor/internal/advisor"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// MetaLastUpdate is the metadata key holding the last refresh time.
const MetaLastUpdate = "last_update"

// Sink stores fetched data. Every Save is an upsert keyed by series and
// date, so repeated refreshes do not duplicate rows.
type Sink interface {
	SavePrices(ctx context.Context, series models.PriceSeries) (int, error)
	SaveRates(ctx context.Context, series models.PriceSeries) (int, error)
	SaveMonetary(ctx context.Context, series models.MonetarySeries) (int, error)
	SaveNews(ctx context.Context, items []models.NewsItem) (int, error)
	SetMetadata(ctx context.Context, key, value string) error
}

// Plan lists what a refresh fetches.
type Plan struct {
	Tickers    []string
	FXPairs    []string
	Regions    []models.Region
	Categories []string

	PriceHistory    time.Duration
	MonetaryHistory time.Duration
	NewsLookback    time.Duration
}

// PlanFor derives the refresh plan from the advisor configuration: every
// index ticker, the FX pair of every index with currency exposure, every
// region an index uses and every news category.
func PlanFor(cfg advisor.Config) Plan {
	p := Plan{
		Categories:      append([]string(nil), cfg.NewsCategories...),
		PriceHistory:    cfg.PriceHistory,
		MonetaryHistory: cfg.MonetaryHistory,
		NewsLookback:    cfg.NewsLookback,
	}
	fx := map[string]bool{}
	regions := map[string]bool{}
	for _, ip := range cfg.Indices {
		p.Tickers = append(p.Tickers, ip.Ticker)
		if ip.HasCurrencyExposure(cfg.BaseCurrency) && ip.FXPair != "" && !fx[ip.FXPair] {
			fx[ip.FXPair] = true
			p.FXPairs = append(p.FXPairs, ip.FXPair)
		}
		if r, ok := cfg.Regions[ip.Region]; ok && !regions[r.ID] {
			regions[r.ID] = true
			p.Regions = append(p.Regions, r)
		}
	}
	sort.Strings(p.Tickers)
	sort.Strings(p.FXPairs)
	sort.Slice(p.Regions, func(i, j int) bool { return p.Regions[i].ID < p.Regions[j].ID })
	return p
}

// RefreshReport summarizes one refresh.
type RefreshReport struct {
	Rows     map[string]int // rows written per item, e.g. "price:^GSPC"
	Errors   []error
	Started  time.Time
	Finished time.Time
}

// Refresher fetches the plan from the upstream sources and writes it to
// a Sink.
type Refresher struct {
	src  advisor.Sources
	sink Sink
	plan Plan
	log  zerolog.Logger
	now  func() time.Time
}

// NewRefresher creates a refresher. Nil sources in src are skipped.
func NewRefresher(src advisor.Sources, sink Sink, plan Plan, log zerolog.Logger) *Refresher {
	return &Refresher{
		src:  src,
		sink: sink,
		plan: plan,
		log:  log.With().Str("component", "refresher").Logger(),
		now:  time.Now,
	}
}

// Refresh fetches every item of the plan concurrently. A failing item is
// recorded in the report and does not stop the others. The error is
// non-nil when ctx ends or when every item failed.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshReport, error) {
	now := r.now()
	rep := &RefreshReport{Rows: map[string]int{}, Started: now}

	var mu sync.Mutex
	record := func(key string, n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("%s: %w", key, err))
			r.log.Warn().Str("item", key).Err(err).Msg("refresh item failed")
			return
		}
		rep.Rows[key] = n
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	if r.src.Prices != nil {
		for _, t := range r.plan.Tickers {
			g.Go(func() error {
				n, err := r.prices(gctx, t, now)
				record("price:"+t, n, err)
				return nil // non-fatal
			})
		}
	}
	if r.src.Rates != nil {
		for _, pair := range r.plan.FXPairs {
			g.Go(func() error {
				n, err := r.rates(gctx, pair, now)
				record("fx:"+pair, n, err)
				return nil
			})
		}
	}
	if r.src.Monetary != nil {
		for _, reg := range r.plan.Regions {
			g.Go(func() error {
				n, err := r.monetary(gctx, reg, now)
				record("monetary:"+reg.ID, n, err)
				return nil
			})
		}
	}
	if r.src.News != nil {
		for _, c := range r.plan.Categories {
			g.Go(func() error {
				n, err := r.news(gctx, c, now)
				record("news:"+c, n, err)
				return nil
			})
		}
	}

	_ = g.Wait()
	rep.Finished = r.now()

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if len(rep.Rows) == 0 && len(rep.Errors) > 0 {
		return rep, fmt.Errorf("refresh: all sources failed: %w", errors.Join(rep.Errors...))
	}
	if err := r.sink.SetMetadata(ctx, MetaLastUpdate, now.UTC().Format(time.RFC3339)); err != nil {
		return rep, fmt.Errorf("record last update: %w", err)
	}

	r.log.Info().
		Int("items", len(rep.Rows)).
		Int("failures", len(rep.Errors)).
		Dur("took", rep.Finished.Sub(rep.Started)).
		Msg("refresh complete")
	return rep, nil
}

func (r *Refresher) prices(ctx context.Context, ticker string, now time.Time) (int, error) {
	s, err := r.src.Prices.PriceHistory(ctx, ticker, now.Add(-r.plan.PriceHistory), now)
	if err != nil {
		return 0, err
	}
	return r.sink.SavePrices(ctx, s)
}

func (r *Refresher) rates(ctx context.Context, pair string, now time.Time) (int, error) {
	s, err := r.src.Rates.RateHistory(ctx, pair, now.Add(-r.plan.PriceHistory), now)
	if err != nil {
		return 0, err
	}
	return r.sink.SaveRates(ctx, s)
}

func (r *Refresher) monetary(ctx context.Context, reg models.Region, now time.Time) (int, error) {
	s, err := r.src.Monetary.MonetaryHistory(ctx, reg, now.Add(-r.plan.MonetaryHistory), now)
	if err != nil {
		return 0, err
	}
	return r.sink.SaveMonetary(ctx, s)
}

func (r *Refresher) news(ctx context.Context, category string, now time.Time) (int, error) {
	items, err := r.src.News.News(ctx, category, now.Add(-r.plan.NewsLookback))
	if err != nil {
		return 0, err
	}
	return r.sink.SaveNews(ctx, items)
}
