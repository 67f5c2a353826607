package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type MySQLPaketRepo struct{ db *sql.DB }

func NewMySQLPaketRepo(db *sql.DB) *MySQLPaketRepo { return &MySQLPaketRepo{db: db} }

var _ usecase.PaketRepo = (*MySQLPaketRepo)(nil)

const paketCols = `id,store_id,category_id,name,price,description,image,visible,created_at,updated_at`

func scanPaket(row interface{ Scan(...any) error }) (*domain.Paket, error) {
	var p domain.Paket
	err := row.Scan(&p.ID, &p.StoreID, &p.CategoryID, &p.Name, &p.Price,
		&p.Description, &p.Image, &p.Visible, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaketNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MySQLPaketRepo) GetByID(ctx context.Context, id string) (*domain.Paket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paketCols+` FROM pakets WHERE id=?`, id)
	return scanPaket(row)
}

// GetByIDs returns every matching paket; callers compare lengths to
// detect unknown ids.
func (r *MySQLPaketRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Paket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paketCols+` FROM pakets WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Paket
	for rows.Next() {
		p, err := scanPaket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *MySQLPaketRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Paket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paketCols+` FROM pakets WHERE store_id=? ORDER BY name`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Paket
	for rows.Next() {
		p, err := scanPaket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *MySQLPaketRepo) Create(ctx context.Context, p *domain.Paket) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pakets (id,store_id,category_id,name,price,description,image,visible,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,NOW(),NOW())`,
		p.ID, p.StoreID, p.CategoryID, p.Name, p.Price, p.Description, p.Image, p.Visible)
	return err
}

func (r *MySQLPaketRepo) Update(ctx context.Context, p *domain.Paket) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE pakets SET category_id=?, name=?, price=?, description=?, image=?, visible=?, updated_at=NOW()
WHERE id=?`,
		p.CategoryID, p.Name, p.Price, p.Description, p.Image, p.Visible, p.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPaketNotFound
	}
	return nil
}

func (r *MySQLPaketRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pakets WHERE id=?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPaketNotFound
	}
	return nil
}
