package models

import (
	"fmt"
	"strings"
	"time"
)

// RiskTolerance names a threshold profile.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// ParseRiskTolerance parses a case-insensitive risk tolerance name.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch RiskTolerance(strings.ToLower(strings.TrimSpace(s))) {
	case RiskConservative:
		return RiskConservative, nil
	case RiskModerate, "":
		return RiskModerate, nil
	case RiskAggressive:
		return RiskAggressive, nil
	}
	return "", fmt.Errorf("unknown risk tolerance %q (want conservative, moderate or aggressive)", s)
}

// Category is the recommendation class.
type Category string

const (
	StrongBuy Category = "strong_buy"
	Buy       Category = "buy"
	Hold      Category = "hold"
	Avoid     Category = "avoid"
)

// IsBuy reports whether the category is buy or strong_buy.
func (c Category) IsBuy() bool { return c == StrongBuy || c == Buy }

// Recommendation is the engine output for one index and one risk tolerance.
type Recommendation struct {
	IndexID       string        `json:"index_id"`
	RunID         string        `json:"run_id,omitempty"`
	RiskTolerance RiskTolerance `json:"risk_tolerance"`
	Category      Category      `json:"category"`
	Score         int           `json:"score"`
	// Confidence is Score/100 and may be negative or above one.
	Confidence  float64   `json:"confidence"`
	Reasons     []string  `json:"reasons"`
	RiskFactors []string  `json:"risk_factors"`
	EvaluatedAt time.Time `json:"evaluated_at"`

	Factors *DecisionFactors `json:"factors,omitempty"`
}

// DisplayConfidence clamps Confidence to [0, 1].
func (r Recommendation) DisplayConfidence() float64 {
	switch {
	case r.Confidence < 0:
		return 0
	case r.Confidence > 1:
		return 1
	}
	return r.Confidence
}

// Verdict is the cross-index overall call.
type Verdict string

const (
	VerdictInvest    Verdict = "INVEST"
	VerdictSelective Verdict = "SELECTIVE"
	VerdictWait      Verdict = "WAIT"
	VerdictAvoid     Verdict = "AVOID"
)

// AllocationSlice is one index's share in an allocation template.
type AllocationSlice struct {
	IndexID string  `json:"index_id"` // "CASH" for the cash leg
	Pct     float64 `json:"pct"`
}

// Allocation is a named example split.
type Allocation struct {
	Label  string            `json:"label"`
	Slices []AllocationSlice `json:"slices"`
}

// ComparisonResult ranks recommendations for several indices.
type ComparisonResult struct {
	Scores      map[string]int `json:"scores"`
	Ranking     []string       `json:"ranking"`
	BestIndexID string         `json:"best_index_id"`
	Spread      int            `json:"spread"`
	TopGap      int            `json:"top_gap"`
	IsNearTie   bool           `json:"is_near_tie"`
	Divergence  bool           `json:"policy_divergence"`
	Narrative   string         `json:"narrative"`
	Overall     Verdict        `json:"overall"`
	Action      string         `json:"action"`
	Allocations []Allocation   `json:"allocations,omitempty"`
}
