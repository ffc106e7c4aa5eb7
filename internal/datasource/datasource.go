// Package datasource fetches price bars, exchange rates, money-supply
// series and news from their upstream providers. Each source implements
// the matching collaborator interface of package advisor.
package datasource

import (
	"errors"
	"time"

	"github.com/seenimoa/indexadvisor/internal/infra"
)

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrMissingAPIKey is returned by sources that need a key and have none.
var ErrMissingAPIKey = errors.New("api key not configured")

// Options are shared by every source constructor.
type Options struct {
	Client   *infra.Client
	CacheTTL time.Duration
	// BaseURL replaces the provider endpoint. Used by tests.
	BaseURL string
}

func (o Options) client() *infra.Client {
	if o.Client != nil {
		return o.Client
	}
	return infra.NewClient()
}

func (o Options) baseURL(def string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return def
}
