package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// SavePrices upserts index bars keyed by symbol and date.
func (s *Store) SavePrices(ctx context.Context, series models.PriceSeries) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO historical_prices (symbol, date, open, high, low, close, adj_close, volume, currency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(symbol, date) DO UPDATE SET
				open = excluded.open, high = excluded.high, low = excluded.low,
				close = excluded.close, adj_close = excluded.adj_close,
				volume = excluded.volume, currency = excluded.currency`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, b := range series.Bars {
			if _, err := stmt.ExecContext(ctx, series.Symbol, b.Timestamp.UTC().Format(dateLayout),
				b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume, series.Currency); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save prices %s: %w", series.Symbol, err)
	}
	return series.Len(), nil
}

// SaveRates upserts exchange-rate bars keyed by pair and date.
func (s *Store) SaveRates(ctx context.Context, series models.PriceSeries) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO exchange_rates (pair, date, open, high, low, close)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(pair, date) DO UPDATE SET
				open = excluded.open, high = excluded.high,
				low = excluded.low, close = excluded.close`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, b := range series.Bars {
			if _, err := stmt.ExecContext(ctx, series.Symbol, b.Timestamp.UTC().Format(dateLayout),
				b.Open, b.High, b.Low, b.Close); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save rates %s: %w", series.Symbol, err)
	}
	return series.Len(), nil
}

// SaveMonetary upserts money-supply observations keyed by series and date.
func (s *Store) SaveMonetary(ctx context.Context, series models.MonetarySeries) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO monetary_series (series_id, region, date, value)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(series_id, date) DO UPDATE SET
				region = excluded.region, value = excluded.value`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range series.Points {
			if _, err := stmt.ExecContext(ctx, series.SeriesID, series.Region,
				p.Date.UTC().Format(dateLayout), p.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save monetary %s: %w", series.SeriesID, err)
	}
	return len(series.Points), nil
}

// PriceHistory returns stored bars for ticker between from and to,
// inclusive by date.
func (s *Store) PriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, adj_close, volume, currency
		FROM historical_prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		ticker, from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("query prices %s: %w", ticker, err)
	}
	defer rows.Close()

	series := models.PriceSeries{Symbol: ticker}
	for rows.Next() {
		var (
			date     string
			b        models.OHLCV
			adj      sql.NullFloat64
			vol      sql.NullInt64
			currency sql.NullString
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &adj, &vol, &currency); err != nil {
			return models.PriceSeries{}, fmt.Errorf("scan price: %w", err)
		}
		if b.Timestamp, err = time.Parse(dateLayout, date); err != nil {
			return models.PriceSeries{}, &models.DataIntegrityError{Series: ticker, Index: len(series.Bars), Reason: "bad stored date"}
		}
		b.AdjClose, b.Volume = adj.Float64, vol.Int64
		series.Currency = currency.String
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("iterate prices: %w", err)
	}
	if len(series.Bars) == 0 {
		return models.PriceSeries{}, fmt.Errorf("prices %s: %w", ticker, ErrNoData)
	}
	return series, nil
}

// RateHistory returns stored exchange rates for pair between from and to.
func (s *Store) RateHistory(ctx context.Context, pair string, from, to time.Time) (models.PriceSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close
		FROM exchange_rates
		WHERE pair = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		pair, from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("query rates %s: %w", pair, err)
	}
	defer rows.Close()

	series := models.PriceSeries{Symbol: pair}
	for rows.Next() {
		var (
			date string
			b    models.OHLCV
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return models.PriceSeries{}, fmt.Errorf("scan rate: %w", err)
		}
		if b.Timestamp, err = time.Parse(dateLayout, date); err != nil {
			return models.PriceSeries{}, &models.DataIntegrityError{Series: pair, Index: len(series.Bars), Reason: "bad stored date"}
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("iterate rates: %w", err)
	}
	if len(series.Bars) == 0 {
		return models.PriceSeries{}, fmt.Errorf("rates %s: %w", pair, ErrNoData)
	}
	return series, nil
}

// MonetaryHistory returns the stored observations of the region's series.
func (s *Store) MonetaryHistory(ctx context.Context, region models.Region, from, to time.Time) (models.MonetarySeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, value
		FROM monetary_series
		WHERE series_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		region.SeriesID, from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
	if err != nil {
		return models.MonetarySeries{}, fmt.Errorf("query monetary %s: %w", region.SeriesID, err)
	}
	defer rows.Close()

	series := models.MonetarySeries{Region: region.ID, SeriesID: region.SeriesID}
	for rows.Next() {
		var (
			date string
			p    models.MonetaryPoint
		)
		if err := rows.Scan(&date, &p.Value); err != nil {
			return models.MonetarySeries{}, fmt.Errorf("scan monetary: %w", err)
		}
		if p.Date, err = time.Parse(dateLayout, date); err != nil {
			return models.MonetarySeries{}, &models.DataIntegrityError{Series: region.SeriesID, Index: len(series.Points), Reason: "bad stored date"}
		}
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		return models.MonetarySeries{}, fmt.Errorf("iterate monetary: %w", err)
	}
	if len(series.Points) == 0 {
		return models.MonetarySeries{}, fmt.Errorf("monetary %s: %w", region.SeriesID, ErrNoData)
	}
	return series, nil
}
