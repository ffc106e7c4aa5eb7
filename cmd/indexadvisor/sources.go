package main

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/seenimoa/indexadvisor/internal/advisor"
	"github.com/seenimoa/indexadvisor/internal/datasource"
	"github.com/seenimoa/indexadvisor/internal/infra"
	"github.com/seenimoa/indexadvisor/internal/store"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// liveSources builds the network sources from the data config. Without a
// FRED key the monetary source is left nil and reported as unavailable.
func liveSources() advisor.Sources {
	rps := cfg.Data.RequestsPerSecond
	burst := int(math.Ceil(rps))
	if burst < 1 {
		burst = 1
	}
	client := infra.NewClient(
		infra.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Data.TimeoutSec) * time.Second}),
		infra.WithRateLimit(rps, burst),
	)
	opts := datasource.Options{
		Client:   client,
		CacheTTL: time.Duration(cfg.Data.CacheTTL) * time.Second,
	}

	yahoo := datasource.NewYahoo(opts)
	src := advisor.Sources{
		Prices: yahoo,
		Rates:  yahoo,
		News:   datasource.NewNews(opts),
	}
	if cfg.Data.FredAPIKey != "" {
		src.Monetary = datasource.NewFred(cfg.Data.FredAPIKey, opts)
	} else {
		log.Warn().Msg("FRED API key not set; monetary factors unavailable")
	}
	return src
}

// storeSources reads every series from the local database.
func storeSources(db *store.Store) advisor.Sources {
	return advisor.Sources{Prices: db, Rates: db, Monetary: db, News: db}
}

func openStore() (*store.Store, error) {
	db, err := store.Open(cfg.Data.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// newAdvisor builds an advisor over live or stored data. db may be nil
// when not offline and not saving.
func newAdvisor(db *store.Store, offline, save bool) *advisor.Advisor {
	var sources advisor.Sources
	if offline {
		sources = storeSources(db)
	} else {
		sources = liveSources()
	}
	var opts []advisor.Option
	if save && db != nil {
		opts = append(opts, advisor.WithSink(db))
	}
	return advisor.New(cfg.AdvisorConfig(), sources, log, opts...)
}

// indexArgs upper-cases positional index ids.
func indexArgs(args []string) []string {
	ids := make([]string, 0, len(args))
	for _, a := range args {
		ids = append(ids, strings.ToUpper(strings.TrimSpace(a)))
	}
	return ids
}

// riskFlag parses --risk, falling back to the configured default.
func riskFlag(raw string) (models.RiskTolerance, error) {
	if raw == "" {
		return cfg.DefaultRisk(), nil
	}
	return models.ParseRiskTolerance(raw)
}
