package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Upsert writes the full record for an order. The write is a complete
// overwrite keyed by order_id: recomputing with identical inputs yields an
// identical row no matter how many times it runs, and concurrent recomputes
// degrade to last-write-wins without partial merges.
func (r *OrderRepo) Upsert(rec *domain.OrderFinancialRecord) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(
		`INSERT INTO order_records
		(order_id, product_name, purchase_cost_local, settlement_amount_reserve,
		 settlement_amount_local, net_profit_reserve, net_profit_local,
		 is_cancelled, is_return, order_date, delivery_date,
		 profit_calculated_at, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(order_id) DO UPDATE SET
			product_name = excluded.product_name,
			purchase_cost_local = excluded.purchase_cost_local,
			settlement_amount_reserve = excluded.settlement_amount_reserve,
			settlement_amount_local = excluded.settlement_amount_local,
			net_profit_reserve = excluded.net_profit_reserve,
			net_profit_local = excluded.net_profit_local,
			is_cancelled = excluded.is_cancelled,
			is_return = excluded.is_return,
			order_date = excluded.order_date,
			delivery_date = excluded.delivery_date,
			profit_calculated_at = excluded.profit_calculated_at,
			updated_at = excluded.updated_at`,
		rec.OrderID, rec.ProductName,
		decStr(rec.PurchaseCostLocal), decStr(rec.SettlementAmountReserve),
		decStr(rec.SettlementAmountLocal), decStr(rec.NetProfitReserve),
		decStr(rec.NetProfitLocal),
		boolInt(rec.IsCancelled), boolInt(rec.IsReturn),
		timeStr(rec.OrderDate), timeStr(rec.DeliveryDate),
		timeStr(rec.ProfitCalculatedAt),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	return err
}

// UpsertPurchaseCost creates the record on first import, or sets the cost
// on an existing one without touching any computed field.
func (r *OrderRepo) UpsertPurchaseCost(orderID string, cost decimal.Decimal) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(
		`INSERT INTO order_records (order_id, purchase_cost_local, created_at, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(order_id) DO UPDATE SET
			purchase_cost_local = excluded.purchase_cost_local,
			updated_at = excluded.updated_at`,
		orderID, cost.String(), now, now,
	)
	return err
}

// MarkCancelled flags an order as cancelled, creating the record if needed.
func (r *OrderRepo) MarkCancelled(orderID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(
		`INSERT INTO order_records (order_id, is_cancelled, created_at, updated_at)
		VALUES (?,1,?,?)
		ON CONFLICT(order_id) DO UPDATE SET
			is_cancelled = 1,
			updated_at = excluded.updated_at`,
		orderID, now, now,
	)
	return err
}

func (r *OrderRepo) Get(orderID string) (*domain.OrderFinancialRecord, error) {
	row := r.db.QueryRow(selectRecord+" WHERE order_id = ?", orderID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// ListIncomplete returns up to limit orders created within the scan window
// that are still missing a delivery date or a settlement-reserve amount.
// These are the nightly batch candidates.
func (r *OrderRepo) ListIncomplete(since time.Time, limit int) ([]domain.OrderFinancialRecord, error) {
	rows, err := r.db.Query(
		selectRecord+` WHERE created_at >= ?
			AND (delivery_date IS NULL OR settlement_amount_reserve IS NULL)
			AND is_cancelled = 0
		ORDER BY created_at ASC LIMIT ?`,
		since.UTC().Format(time.RFC3339), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListDeliveredBetween returns non-cancelled orders delivered inside
// [from, to]. Used by the payment forecast, which never fetches anything.
func (r *OrderRepo) ListDeliveredBetween(from, to time.Time) ([]domain.OrderFinancialRecord, error) {
	rows, err := r.db.Query(
		selectRecord+` WHERE delivery_date IS NOT NULL
			AND delivery_date >= ? AND delivery_date <= ?
			AND is_cancelled = 0
		ORDER BY delivery_date ASC`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ResetComputed clears every computed field while preserving order ids,
// purchase costs and the cancelled flag (imported facts).
func (r *OrderRepo) ResetComputed() (int64, error) {
	res, err := r.db.Exec(
		`UPDATE order_records SET
			product_name = '',
			settlement_amount_reserve = NULL,
			settlement_amount_local = NULL,
			net_profit_reserve = NULL,
			net_profit_local = NULL,
			is_return = 0,
			order_date = NULL,
			delivery_date = NULL,
			profit_calculated_at = NULL,
			updated_at = ?`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *OrderRepo) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM order_records").Scan(&n)
	return n, err
}

// --- scanning ---

const selectRecord = `SELECT order_id, product_name, purchase_cost_local,
	settlement_amount_reserve, settlement_amount_local, net_profit_reserve,
	net_profit_local, is_cancelled, is_return, order_date, delivery_date,
	profit_calculated_at, created_at, updated_at FROM order_records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.OrderFinancialRecord, error) {
	var rec domain.OrderFinancialRecord
	var cost, amtReserve, amtLocal, profitReserve, profitLocal sql.NullString
	var orderDate, deliveryDate, calculatedAt sql.NullString
	var createdAt, updatedAt string
	var cancelled, isReturn int

	err := row.Scan(
		&rec.OrderID, &rec.ProductName, &cost, &amtReserve, &amtLocal,
		&profitReserve, &profitLocal, &cancelled, &isReturn,
		&orderDate, &deliveryDate, &calculatedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.IsCancelled = cancelled != 0
	rec.IsReturn = isReturn != 0

	if rec.PurchaseCostLocal, err = parseDec(cost); err != nil {
		return nil, fmt.Errorf("purchase_cost_local: %w", err)
	}
	if rec.SettlementAmountReserve, err = parseDec(amtReserve); err != nil {
		return nil, fmt.Errorf("settlement_amount_reserve: %w", err)
	}
	if rec.SettlementAmountLocal, err = parseDec(amtLocal); err != nil {
		return nil, fmt.Errorf("settlement_amount_local: %w", err)
	}
	if rec.NetProfitReserve, err = parseDec(profitReserve); err != nil {
		return nil, fmt.Errorf("net_profit_reserve: %w", err)
	}
	if rec.NetProfitLocal, err = parseDec(profitLocal); err != nil {
		return nil, fmt.Errorf("net_profit_local: %w", err)
	}

	rec.OrderDate = parseTimePtr(orderDate)
	rec.DeliveryDate = parseTimePtr(deliveryDate)
	rec.ProfitCalculatedAt = parseTimePtr(calculatedAt)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]domain.OrderFinancialRecord, error) {
	var recs []domain.OrderFinancialRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func decStr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseDec(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func timeStr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
