// Package advisor wires the data collaborators to the factor extractors,
// the decision engine and the comparative ranker. It exposes the three
// caller operations: Evaluate, EvaluateAll and Compare.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/indexadvisor/internal/analysis/currency"
	"github.com/seenimoa/indexadvisor/internal/analysis/monetary"
	"github.com/seenimoa/indexadvisor/internal/analysis/sentiment"
	"github.com/seenimoa/indexadvisor/internal/analysis/technical"
	"github.com/seenimoa/indexadvisor/internal/compare"
	"github.com/seenimoa/indexadvisor/internal/decision"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ErrUnknownIndex is returned for an index id with no configured profile.
var ErrUnknownIndex = errors.New("unknown index")

// PriceSource returns daily bars for an index ticker.
type PriceSource interface {
	PriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error)
}

// RateSource returns daily exchange rates for a currency pair ticker.
type RateSource interface {
	RateHistory(ctx context.Context, pair string, from, to time.Time) (models.PriceSeries, error)
}

// MonetarySource returns a region's money-supply observations.
type MonetarySource interface {
	MonetaryHistory(ctx context.Context, region models.Region, from, to time.Time) (models.MonetarySeries, error)
}

// NewsSource returns scored news items of one category published since.
type NewsSource interface {
	News(ctx context.Context, category string, since time.Time) ([]models.NewsItem, error)
}

// RecommendationSink persists recommendations. It is write-only.
type RecommendationSink interface {
	SaveRecommendation(ctx context.Context, rec models.Recommendation) error
}

// Sources bundles the data collaborators. News, Monetary and Rates may be
// nil; the matching signal is then reported as missing.
type Sources struct {
	Prices   PriceSource
	Rates    RateSource
	Monetary MonetarySource
	News     NewsSource
}

// Config is the setup-time configuration of an Advisor.
type Config struct {
	Indices      map[string]models.IndexProfile
	Regions      map[string]models.Region
	BaseCurrency string

	PriceHistory    time.Duration // how far back to request bars and rates
	MonetaryHistory time.Duration
	NewsLookback    time.Duration
	// NewsCategories are fetched once per batch and shared by all indices.
	NewsCategories []string

	Technical technical.Config
	Sentiment sentiment.Config
	Monetary  monetary.Config
	Currency  currency.Config
	Decision  decision.Config
	Compare   compare.Config
}

// Advisor evaluates indices. It holds no per-run state and is safe for
// concurrent use.
type Advisor struct {
	cfg  Config
	src  Sources
	sink RecommendationSink
	log  zerolog.Logger
	now  func() time.Time

	technical *technical.Extractor
	sentiment *sentiment.Aggregator
	monetary  *monetary.Extractor
	currency  *currency.Extractor
	engine    *decision.Engine
	ranker    *compare.Ranker
}

// Option customizes an Advisor.
type Option func(*Advisor)

// WithSink persists every recommendation produced.
func WithSink(s RecommendationSink) Option {
	return func(a *Advisor) { a.sink = s }
}

// WithClock replaces time.Now for data windows and EvaluatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Advisor) { a.now = now }
}

// New creates an Advisor.
func New(cfg Config, src Sources, log zerolog.Logger, opts ...Option) *Advisor {
	a := &Advisor{
		cfg: cfg,
		src: src,
		log: log.With().Str("component", "advisor").Logger(),
		now: time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	a.technical = technical.NewExtractor(cfg.Technical)
	a.sentiment = sentiment.NewAggregator(cfg.Sentiment)
	a.monetary = monetary.NewExtractor(cfg.Monetary)
	a.currency = currency.NewExtractor(cfg.Currency)
	a.engine = decision.NewEngine(cfg.Decision).WithClock(a.now)
	a.ranker = compare.NewRanker(cfg.Compare)
	return a
}

// Profile returns the configured profile for id.
func (a *Advisor) Profile(id string) (models.IndexProfile, error) {
	p, ok := a.cfg.Indices[id]
	if !ok {
		return models.IndexProfile{}, fmt.Errorf("%w: %s", ErrUnknownIndex, id)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// IndexIDs returns the configured index ids in sorted order.
func (a *Advisor) IndexIDs() []string {
	ids := make([]string, 0, len(a.cfg.Indices))
	for id := range a.cfg.Indices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
