package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/storage"
)

// Repo 每个视图保存最新一份 JSON，整行覆盖
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

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
  payload TEXT NOT NULL,
  cycle_id TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	return err
}

func (r *Repo) upsert(ctx context.Context, tx *sql.Tx, name string, payload []byte, cycleID string, ts int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO views(name, payload, cycle_id, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		payload=excluded.payload, cycle_id=excluded.cycle_id, updated_at=excluded.updated_at
	`, name, string(payload), cycleID, ts)
	return err
}

// PublishDirectory 四个视图在同一事务中写入
func (r *Repo) PublishDirectory(ctx context.Context, dir *domain.Directory) error {
	views, err := storage.EncodeViews(dir)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	ts := time.Now().UnixMilli()
	for _, v := range views {
		if err := r.upsert(ctx, tx, v.Name, v.Payload, dir.CycleID, ts); err != nil {
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
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.upsert(ctx, tx, domain.DexBlobKey, b, "", time.Now().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LoadView 读取最近一次发布的视图；不存在时返回 nil, nil
func (r *Repo) LoadView(ctx context.Context, view string) ([]domain.TokenEntry, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM views WHERE name=?`, view).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.DecodeView([]byte(payload))
}

// CycleOf 返回视图最后一次写入的 cycle id
func (r *Repo) CycleOf(ctx context.Context, view string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT cycle_id FROM views WHERE name=?`, view).Scan(&id)
	return id, err
}

var (
	_ port.Publisher      = (*Repo)(nil)
	_ port.SnapshotLoader = (*Repo)(nil)
)
