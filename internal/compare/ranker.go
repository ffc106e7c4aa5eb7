// Package compare ranks the recommendations of several indices and builds
// the cross-index narrative, overall verdict and example allocations.
// It reads scores and never changes them.
package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ErrNotEnoughRecommendations is returned when fewer than two
// recommendations are given.
var ErrNotEnoughRecommendations = errors.New("compare: need at least two recommendations")

// Config holds the ranking cutoffs and display names.
type Config struct {
	NearTieMargin int     `mapstructure:"near_tie_margin" yaml:"near_tie_margin"` // spread below is a near-tie
	WinnerPct     float64 `mapstructure:"winner_pct"      yaml:"winner_pct"`      // winner share in the tilt template
	// A monetary score at or above DivergenceHigh on one index and at or
	// below DivergenceLow on another is a policy divergence.
	DivergenceHigh int `mapstructure:"divergence_high" yaml:"divergence_high"`
	DivergenceLow  int `mapstructure:"divergence_low"  yaml:"divergence_low"`
	// Names maps index ids to display names; unknown ids display as is.
	Names map[string]string `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns the standard ranking parameters.
func DefaultConfig() Config {
	return Config{
		NearTieMargin:  10,
		WinnerPct:      60,
		DivergenceHigh: 10,
		DivergenceLow:  -15,
		Names: map[string]string{
			"SP500": "S&P 500",
			"CW8":   "MSCI World (CW8)",
		},
	}
}

// Ranker compares recommendations.
type Ranker struct {
	cfg Config
}

// NewRanker creates a ranker with the given parameters.
func NewRanker(cfg Config) *Ranker {
	return &Ranker{cfg: cfg}
}

// Compare ranks recs by score, highest first, with ties broken by index id.
// The input map is not modified.
func (r *Ranker) Compare(recs map[string]models.Recommendation) (models.ComparisonResult, error) {
	if len(recs) < 2 {
		return models.ComparisonResult{}, fmt.Errorf("%w: got %d", ErrNotEnoughRecommendations, len(recs))
	}

	res := models.ComparisonResult{Scores: make(map[string]int, len(recs))}
	for id, rec := range recs {
		res.Scores[id] = rec.Score
		res.Ranking = append(res.Ranking, id)
	}
	sort.Slice(res.Ranking, func(i, j int) bool {
		a, b := res.Ranking[i], res.Ranking[j]
		if res.Scores[a] != res.Scores[b] {
			return res.Scores[a] > res.Scores[b]
		}
		return a < b
	})

	best, second, worst := res.Ranking[0], res.Ranking[1], res.Ranking[len(res.Ranking)-1]
	res.BestIndexID = best
	res.Spread = res.Scores[best] - res.Scores[worst]
	res.TopGap = res.Scores[best] - res.Scores[second]
	res.IsNearTie = res.Spread < r.cfg.NearTieMargin

	var high, low string
	res.Divergence, high, low = r.divergence(res.Ranking, recs)

	res.Narrative = r.narrative(res, high, low)
	res.Overall, res.Action = r.verdict(res, recs)
	res.Allocations = r.allocations(res, recs)
	return res, nil
}

// divergence finds the first pair, in ranking order, where one region's
// monetary score is strongly positive and another's strongly negative.
func (r *Ranker) divergence(ranking []string, recs map[string]models.Recommendation) (bool, string, string) {
	var high, low string
	for _, id := range ranking {
		m := monetaryScore(recs[id])
		if m == nil {
			continue
		}
		if high == "" && *m >= r.cfg.DivergenceHigh {
			high = id
		}
		if low == "" && *m <= r.cfg.DivergenceLow {
			low = id
		}
	}
	if high != "" && low != "" {
		return true, high, low
	}
	return false, "", ""
}

func monetaryScore(rec models.Recommendation) *int {
	if rec.Factors == nil || rec.Factors.Monetary == nil || rec.Factors.Monetary.YoYGrowthPct == nil {
		return nil
	}
	s := rec.Factors.Monetary.FavorabilityScore
	return &s
}

func (r *Ranker) narrative(res models.ComparisonResult, high, low string) string {
	var b strings.Builder
	if res.IsNearTie {
		names := make([]string, len(res.Ranking))
		for i, id := range res.Ranking {
			names[i] = r.name(id)
		}
		fmt.Fprintf(&b, "Scores are within %d points of each other; diversify across %s.",
			res.Spread, joinNames(names))
	} else {
		fmt.Fprintf(&b, "%s shows the stronger opportunity (score %d, %d ahead of %s).",
			r.name(res.BestIndexID), res.Scores[res.BestIndexID], res.TopGap, r.name(res.Ranking[1]))
	}
	if res.Divergence {
		fmt.Fprintf(&b, " Policy divergence: money supply supports %s but is contracting for %s.",
			r.name(high), r.name(low))
	}
	return b.String()
}

func (r *Ranker) verdict(res models.ComparisonResult, recs map[string]models.Recommendation) (models.Verdict, string) {
	var buys []string
	hold := false
	for _, id := range res.Ranking {
		switch c := recs[id].Category; {
		case c.IsBuy():
			buys = append(buys, id)
		case c == models.Hold:
			hold = true
		}
	}
	switch {
	case len(buys) == len(res.Ranking):
		return models.VerdictInvest, "Good time to invest in all evaluated indices"
	case len(buys) > 0:
		if res.IsNearTie {
			return models.VerdictSelective, "Consider investing, with a slight preference for the better-scoring index"
		}
		return models.VerdictSelective, fmt.Sprintf("Consider investing in %s", r.name(buys[0]))
	case hold:
		return models.VerdictWait, "Wait for a better entry point or more clarity"
	}
	return models.VerdictAvoid, "Not a good time to invest: multiple risk factors present"
}

func (r *Ranker) allocations(res models.ComparisonResult, recs map[string]models.Recommendation) []models.Allocation {
	if res.Overall == models.VerdictAvoid {
		return []models.Allocation{{
			Label:  "Stay in cash",
			Slices: []models.AllocationSlice{{IndexID: models.CashID, Pct: 100}},
		}}
	}

	if res.IsNearTie {
		var legs []string
		for _, id := range res.Ranking {
			if recs[id].Category.IsBuy() {
				legs = append(legs, id)
			}
		}
		if len(legs) == 0 {
			legs = res.Ranking
		}
		return []models.Allocation{{Label: "Equal split", Slices: split(legs, 100)}}
	}

	winner := math.Max(0, math.Min(100, r.cfg.WinnerPct))
	slices := []models.AllocationSlice{{IndexID: res.BestIndexID, Pct: winner}}
	slices = append(slices, split(res.Ranking[1:], 100-winner)...)
	return []models.Allocation{{
		Label:  fmt.Sprintf("Tilt to %s", r.name(res.BestIndexID)),
		Slices: slices,
	}}
}

// split divides total evenly across ids.
func split(ids []string, total float64) []models.AllocationSlice {
	out := make([]models.AllocationSlice, len(ids))
	for i, id := range ids {
		out[i] = models.AllocationSlice{IndexID: id, Pct: total / float64(len(ids))}
	}
	return out
}

func (r *Ranker) name(id string) string {
	if n, ok := r.cfg.Names[id]; ok && n != "" {
		return n
	}
	return id
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
