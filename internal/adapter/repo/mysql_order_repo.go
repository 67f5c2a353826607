package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

// Create inserts the order and its line items in one transaction.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return err
	}
	images, err := json.Marshal(o.ShoeImages)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders
  (id,user_id,store_id,status,laundry_status,payment_method,payment_token,redirect_url,
   total_price,customer_json,shoe_images_json,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,NOW(),NOW())`,
		o.ID, o.UserID, o.StoreID, o.Status, o.LaundryStatus, o.PaymentMethod,
		o.PaymentToken, o.RedirectURL, o.TotalPrice, customer, images)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO paket_orders (order_id,paket_id,quantity,price_order)
VALUES (?,?,?,?)`,
			o.ID, it.PaketID, it.Quantity, it.PriceOrder)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const orderCols = `id,user_id,store_id,status,laundry_status,payment_method,payment_token,
redirect_url,total_price,customer_json,shoe_images_json,created_at,updated_at`

func (r *MySQLOrderRepo) scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	var customer, images []byte
	err := row.Scan(&o.ID, &o.UserID, &o.StoreID, &o.Status, &o.LaundryStatus,
		&o.PaymentMethod, &o.PaymentToken, &o.RedirectURL, &o.TotalPrice,
		&customer, &images, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(customer, &o.Customer)
	_ = json.Unmarshal(images, &o.ShoeImages)
	return &o, nil
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id=?`, id)
	o, err := r.scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT order_id,paket_id,quantity,price_order FROM paket_orders WHERE order_id=?`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.PaketOrder
		if err := rows.Scan(&it.OrderID, &it.PaketID, &it.Quantity, &it.PriceOrder); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *MySQLOrderRepo) GetPendingByUserStore(ctx context.Context, userID, storeID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+orderCols+` FROM orders
WHERE user_id=? AND store_id=? AND status=? LIMIT 1`,
		userID, storeID, domain.StatusPending)
	o, err := r.scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) UpdateStatusIfChanged(ctx context.Context, id string, to domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status=?, updated_at=NOW()
WHERE id=? AND status<>?`, to, id, to)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status=?, updated_at=NOW()
WHERE id=? AND status=?`, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 -> not found or status already moved on
	return rows > 0, nil
}

func (r *MySQLOrderRepo) UpdateLaundryStatus(ctx context.Context, id string, to domain.LaundryStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET laundry_status=?, updated_at=NOW() WHERE id=?`, to, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ExpireStale is the 24h sweep: a single monotonic conditional UPDATE,
// safe to run on every read of unpaid orders.
func (r *MySQLOrderRepo) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status=?, updated_at=NOW()
WHERE status=? AND created_at < ?`,
		domain.StatusExpire, domain.StatusPending, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MySQLOrderRepo) ListUnpaidByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+orderCols+` FROM orders
WHERE user_id=? AND status=? ORDER BY created_at DESC`,
		userID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *MySQLOrderRepo) ListByStore(ctx context.Context, storeID string, f usecase.OrderFilter) ([]domain.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders WHERE store_id=?`
	args := []any{storeID}
	if f.Status != "" {
		q += ` AND status=?`
		args = append(args, f.Status)
	}
	if f.UserID != "" {
		q += ` AND user_id=?`
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		q += ` AND created_at >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		q += ` AND created_at < ?`
		args = append(args, f.To)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *MySQLOrderRepo) collect(ctx context.Context, rows *sql.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
