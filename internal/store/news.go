package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// SaveNews upserts items keyed by category and headline. A re-fetched
// headline refreshes its score and summary.
func (s *Store) SaveNews(ctx context.Context, items []models.NewsItem) (int, error) {
	fetched := s.now().Unix()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO news_articles (category, title_key, title, summary, source, url, published_at, sentiment_score, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(category, title_key) DO UPDATE SET
				summary = excluded.summary, source = excluded.source, url = excluded.url,
				published_at = COALESCE(excluded.published_at, news_articles.published_at),
				sentiment_score = excluded.sentiment_score, fetched_at = excluded.fetched_at`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, it := range items {
			var published sql.NullInt64
			if !it.PublishedAt.IsZero() {
				published = sql.NullInt64{Int64: it.PublishedAt.Unix(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, it.Category, titleKey(it.Title), it.Title, it.Summary,
				it.Source, it.URL, published, it.Score, fetched); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save news: %w", err)
	}
	return len(items), nil
}

// News returns stored items of category published at or after since,
// newest first. Undated items are included. An empty result is not an
// error.
func (s *Store) News(ctx context.Context, category string, since time.Time) ([]models.NewsItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, summary, source, url, published_at, sentiment_score
		FROM news_articles
		WHERE category = ? AND (published_at IS NULL OR published_at >= ?)
		ORDER BY published_at IS NULL, published_at DESC, id`,
		category, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query news %s: %w", category, err)
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var (
			it                   models.NewsItem
			summary, source, url sql.NullString
			published            sql.NullInt64
		)
		if err := rows.Scan(&it.Title, &summary, &source, &url, &published, &it.Score); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		it.Category = category
		it.Summary, it.Source, it.URL = summary.String, source.String, url.String
		if published.Valid {
			it.PublishedAt = time.Unix(published.Int64, 0).UTC()
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}
	return items, nil
}

func titleKey(title string) string {
	r := []rune(strings.ToLower(strings.TrimSpace(title)))
	if len(r) > 50 {
		r = r[:50]
	}
	return string(r)
}
