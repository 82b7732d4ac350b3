package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// RateRepo is the durable half of the exchange-rate cache: one row per
// (pair, date) once a rate has been resolved.
type RateRepo struct {
	db *sql.DB
}

func NewRateRepo(db *sql.DB) *RateRepo {
	return &RateRepo{db: db}
}

func (r *RateRepo) Get(pair string, date time.Time) (*domain.ExchangeRateSample, error) {
	var s domain.ExchangeRateSample
	var rateStr, dateStr, fetchedAt string

	err := r.db.QueryRow(
		"SELECT pair, date, rate, source, fetched_at FROM rate_samples WHERE pair = ? AND date = ?",
		pair, date.Format(domain.DateKey),
	).Scan(&s.Pair, &dateStr, &rateStr, &s.Source, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Rate, err = decimal.NewFromString(rateStr); err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	s.Date, _ = time.Parse(domain.DateKey, dateStr)
	s.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return &s, nil
}

// Put records a resolved sample. INSERT OR IGNORE: the first successfully
// resolved value for a (pair, date) wins and is never overwritten.
func (r *RateRepo) Put(s *domain.ExchangeRateSample) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO rate_samples (pair, date, rate, source, fetched_at)
		VALUES (?,?,?,?,?)`,
		s.Pair, s.Date.Format(domain.DateKey), s.Rate.String(), s.Source,
		s.FetchedAt.UTC().Format(time.RFC3339),
	)
	return err
}
