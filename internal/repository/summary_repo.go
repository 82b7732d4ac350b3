package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

type SummaryRepo struct {
	db *sql.DB
}

func NewSummaryRepo(db *sql.DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

// Replace stores the summary as a full snapshot keyed by
// (seller, year, month). Partial updates are deliberately not offered:
// the counts and the detail list they were computed from always land in
// the same write.
func (r *SummaryRepo) Replace(s *domain.MonthlyProfitSummary) error {
	details, err := json.Marshal(s.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO monthly_summaries
		(seller, year, month, id, processed, skipped_no_purchase_cost,
		 skipped_return, cancelled, total_profit_reserve, total_profit_local,
		 cancelled_loss_reserve, cancelled_loss_local, details, generated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Seller, s.Year, s.Month, s.ID,
		s.Processed, s.SkippedNoPurchaseCost, s.SkippedReturn, s.Cancelled,
		s.TotalProfitReserve.String(), s.TotalProfitLocal.String(),
		s.CancelledLossReserve.String(), s.CancelledLossLocal.String(),
		string(details), s.GeneratedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (r *SummaryRepo) Get(seller string, year, month int) (*domain.MonthlyProfitSummary, error) {
	var s domain.MonthlyProfitSummary
	var profitReserve, profitLocal, lossReserve, lossLocal string
	var details, generatedAt string

	err := r.db.QueryRow(
		`SELECT seller, year, month, id, processed, skipped_no_purchase_cost,
			skipped_return, cancelled, total_profit_reserve, total_profit_local,
			cancelled_loss_reserve, cancelled_loss_local, details, generated_at
		FROM monthly_summaries WHERE seller = ? AND year = ? AND month = ?`,
		seller, year, month,
	).Scan(
		&s.Seller, &s.Year, &s.Month, &s.ID,
		&s.Processed, &s.SkippedNoPurchaseCost, &s.SkippedReturn, &s.Cancelled,
		&profitReserve, &profitLocal, &lossReserve, &lossLocal,
		&details, &generatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.TotalProfitReserve, err = decimal.NewFromString(profitReserve); err != nil {
		return nil, fmt.Errorf("total_profit_reserve: %w", err)
	}
	if s.TotalProfitLocal, err = decimal.NewFromString(profitLocal); err != nil {
		return nil, fmt.Errorf("total_profit_local: %w", err)
	}
	if s.CancelledLossReserve, err = decimal.NewFromString(lossReserve); err != nil {
		return nil, fmt.Errorf("cancelled_loss_reserve: %w", err)
	}
	if s.CancelledLossLocal, err = decimal.NewFromString(lossLocal); err != nil {
		return nil, fmt.Errorf("cancelled_loss_local: %w", err)
	}

	if err := json.Unmarshal([]byte(details), &s.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	s.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)

	return &s, nil
}
