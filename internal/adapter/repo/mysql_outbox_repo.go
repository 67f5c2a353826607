package repo

import (
	"context"
	"database/sql"

	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

var _ usecase.OutboxRepo = (*MySQLOutboxRepo)(nil)

func (r *MySQLOutboxRepo) InsertOrderCreated(ctx context.Context, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO outbox (channel,payload,status,retry_count,next_attempt_at,created_at)
VALUES ('order.created.v1', ?, 'PENDING', 0, NOW(), NOW())
`, payload)
	return err
}
