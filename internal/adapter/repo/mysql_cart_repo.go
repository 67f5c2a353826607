package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type MySQLCartRepo struct{ db *sql.DB }

func NewMySQLCartRepo(db *sql.DB) *MySQLCartRepo { return &MySQLCartRepo{db: db} }

var _ usecase.CartRepo = (*MySQLCartRepo)(nil)

const cartCols = `id,user_id,store_id,closed,created_at,updated_at`

func (r *MySQLCartRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cartCols+` FROM carts WHERE id=?`, id)
	return r.scan(ctx, row)
}

func (r *MySQLCartRepo) GetOpenByUser(ctx context.Context, userID, storeID string) (*domain.Cart, error) {
	q := `SELECT ` + cartCols + ` FROM carts WHERE user_id=? AND closed=0`
	args := []any{userID}
	if storeID != "" {
		q += ` AND store_id=?`
		args = append(args, storeID)
	}
	q += ` ORDER BY created_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, q, args...)
	return r.scan(ctx, row)
}

func (r *MySQLCartRepo) scan(ctx context.Context, row *sql.Row) (*domain.Cart, error) {
	var c domain.Cart
	var userID sql.NullString
	err := row.Scan(&c.ID, &userID, &c.StoreID, &c.Closed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, err
	}
	c.UserID = userID.String

	rows, err := r.db.QueryContext(ctx, `
SELECT paket_id,quantity,price_order FROM cart_items WHERE cart_id=? ORDER BY position`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.PaketID, &it.Quantity, &it.PriceOrder); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r *MySQLCartRepo) Create(ctx context.Context, c *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var userID any
	if c.UserID != "" {
		userID = c.UserID
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO carts (id,user_id,store_id,closed,created_at,updated_at)
VALUES (?,?,?,0,NOW(),NOW())`, c.ID, userID, c.StoreID)
	if err != nil {
		return err
	}
	if err := insertItems(ctx, tx, c.ID, c.Items); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveItems rewrites the item list wholesale; the cart owns its items.
func (r *MySQLCartRepo) SaveItems(ctx context.Context, cartID string, items []domain.CartItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, cartID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, cartID, items); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at=NOW() WHERE id=?`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, cartID string, items []domain.CartItem) error {
	for i, it := range items {
		_, err := tx.ExecContext(ctx, `
INSERT INTO cart_items (cart_id,paket_id,quantity,price_order,position)
VALUES (?,?,?,?,?)`, cartID, it.PaketID, it.Quantity, it.PriceOrder, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLCartRepo) Close(ctx context.Context, cartID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE carts SET closed=1, updated_at=NOW() WHERE id=? AND closed=0`, cartID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCartClosed
	}
	return nil
}

func (r *MySQLCartRepo) Delete(ctx context.Context, cartID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, cartID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id=?`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}
