package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/storage"
)

// Repo 与 sqlite 相同的 views 表，写入 postgres
type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS views (
  name TEXT PRIMARY KEY,
  payload JSONB NOT NULL,
  cycle_id TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

const upsertSQL = `
INSERT INTO views(name, payload, cycle_id, updated_at) VALUES($1, $2, $3, $4)
ON CONFLICT(name) DO UPDATE SET
payload=EXCLUDED.payload, cycle_id=EXCLUDED.cycle_id, updated_at=EXCLUDED.updated_at`

func (r *Repo) PublishDirectory(ctx context.Context, dir *domain.Directory) error {
	views, err := storage.EncodeViews(dir)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, v := range views {
		if _, err := tx.ExecContext(ctx, upsertSQL, v.Name, string(v.Payload), dir.CycleID, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) PublishDexBlob(ctx context.Context, items []domain.DexBlobItem) error {
	b, err := storage.EncodeDexBlob(items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertSQL, domain.DexBlobKey, string(b), "", time.Now().UTC())
	return err
}

func (r *Repo) LoadView(ctx context.Context, view string) ([]domain.TokenEntry, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload::text FROM views WHERE name=$1`, view).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.DecodeView([]byte(payload))
}

var (
	_ port.Publisher      = (*Repo)(nil)
	_ port.SnapshotLoader = (*Repo)(nil)
)
