package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// SaveRecommendation appends rec to the recommendations log.
func (s *Store) SaveRecommendation(ctx context.Context, rec models.Recommendation) error {
	reasons, err := json.Marshal(nonNil(rec.Reasons))
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}
	risks, err := json.Marshal(nonNil(rec.RiskFactors))
	if err != nil {
		return fmt.Errorf("encode risk factors: %w", err)
	}
	var factors sql.NullString
	if rec.Factors != nil {
		b, err := json.Marshal(rec.Factors)
		if err != nil {
			return fmt.Errorf("encode factors: %w", err)
		}
		factors = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recommendations_log
			(run_id, index_id, risk_tolerance, category, score, confidence, reasons, risk_factors, factors, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.IndexID, string(rec.RiskTolerance), string(rec.Category), rec.Score, rec.Confidence,
		string(reasons), string(risks), factors, rec.EvaluatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save recommendation %s: %w", rec.IndexID, err)
	}
	return nil
}

// RecommendationFilter narrows Recommendations. Zero values match all.
type RecommendationFilter struct {
	RunID   string
	IndexID string
	Limit   int
}

// Recommendations returns logged recommendations, newest first.
func (s *Store) Recommendations(ctx context.Context, f RecommendationFilter) ([]models.Recommendation, error) {
	q := `SELECT run_id, index_id, risk_tolerance, category, score, confidence, reasons, risk_factors, factors, evaluated_at
		FROM recommendations_log WHERE 1=1`
	var args []any
	if f.RunID != "" {
		q += ` AND run_id = ?`
		args = append(args, f.RunID)
	}
	if f.IndexID != "" {
		q += ` AND index_id = ?`
		args = append(args, f.IndexID)
	}
	q += ` ORDER BY id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var out []models.Recommendation
	for rows.Next() {
		var (
			rec                  models.Recommendation
			runID, factors       sql.NullString
			risk, category       string
			reasons, riskFactors string
			evaluated            int64
		)
		if err := rows.Scan(&runID, &rec.IndexID, &risk, &category, &rec.Score, &rec.Confidence,
			&reasons, &riskFactors, &factors, &evaluated); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.RunID = runID.String
		rec.RiskTolerance = models.RiskTolerance(risk)
		rec.Category = models.Category(category)
		rec.EvaluatedAt = time.UnixMilli(evaluated).UTC()
		if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
			return nil, fmt.Errorf("decode reasons: %w", err)
		}
		if err := json.Unmarshal([]byte(riskFactors), &rec.RiskFactors); err != nil {
			return nil, fmt.Errorf("decode risk factors: %w", err)
		}
		if factors.Valid {
			rec.Factors = &models.DecisionFactors{}
			if err := json.Unmarshal([]byte(factors.String), rec.Factors); err != nil {
				return nil, fmt.Errorf("decode factors: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return out, nil
}

// LastRunID returns the run id of the most recent logged recommendation.
func (s *Store) LastRunID(ctx context.Context) (string, error) {
	var id sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM recommendations_log ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrNoData
	}
	if err != nil {
		return "", fmt.Errorf("query last run: %w", err)
	}
	return id.String, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
