package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SetMetadata stores a key/value record.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// Metadata returns the value stored under key, or ErrNoData.
func (s *Store) Metadata(ctx context.Context, key string) (string, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("metadata %s: %w", key, ErrNoData)
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return v.String, nil
}

// TableStats summarizes one table.
type TableStats struct {
	Table  string `json:"table"   yaml:"table"`
	Series string `json:"series"  yaml:"series"` // symbol, pair, series id or category
	Rows   int    `json:"rows"    yaml:"rows"`
	From   string `json:"from"    yaml:"from"`
	To     string `json:"to"      yaml:"to"`
}

// Stats reports row counts and date ranges per stored series.
func (s *Store) Stats(ctx context.Context) ([]TableStats, error) {
	queries := []struct {
		table string
		sql   string
	}{
		{"historical_prices", `SELECT symbol, COUNT(*), MIN(date), MAX(date) FROM historical_prices GROUP BY symbol ORDER BY symbol`},
		{"exchange_rates", `SELECT pair, COUNT(*), MIN(date), MAX(date) FROM exchange_rates GROUP BY pair ORDER BY pair`},
		{"monetary_series", `SELECT series_id, COUNT(*), MIN(date), MAX(date) FROM monetary_series GROUP BY series_id ORDER BY series_id`},
		{"news_articles", `SELECT category, COUNT(*), MIN(published_at), MAX(published_at) FROM news_articles GROUP BY category ORDER BY category`},
		{"recommendations_log", `SELECT index_id, COUNT(*), MIN(evaluated_at), MAX(evaluated_at) FROM recommendations_log GROUP BY index_id ORDER BY index_id`},
	}

	var out []TableStats
	for _, q := range queries {
		rows, err := s.db.QueryContext(ctx, q.sql)
		if err != nil {
			return nil, fmt.Errorf("stats %s: %w", q.table, err)
		}
		for rows.Next() {
			var (
				st       = TableStats{Table: q.table}
				from, to any
			)
			if err := rows.Scan(&st.Series, &st.Rows, &from, &to); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan stats %s: %w", q.table, err)
			}
			st.From, st.To = formatBound(q.table, from), formatBound(q.table, to)
			out = append(out, st)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate stats %s: %w", q.table, err)
		}
	}
	return out, nil
}

// formatBound renders a MIN/MAX column: dates are stored as text, news
// times as unix seconds and recommendation times as unix milliseconds.
func formatBound(table string, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		if table == "recommendations_log" {
			return time.UnixMilli(x).UTC().Format(dateLayout)
		}
		return time.Unix(x, 0).UTC().Format(dateLayout)
	}
	return fmt.Sprint(v)
}
