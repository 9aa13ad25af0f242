package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/storage"
)

// Repo 每个视图写入 <prefix>:<view>，写完后在 <prefix>:updates 上通知
type Repo struct {
	rdb        *redis.Client
	prefix     string
	ttl        time.Duration // 0 表示不过期
	updateChan string
}

// Update updates 频道上的消息
type Update struct {
	CycleID string   `json:"cycleId"`
	Views   []string `json:"views"`
	Ts      int64    `json:"ts_ms"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Repo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "tokendict"
	}
	return &Repo{
		rdb:        rdb,
		prefix:     prefix,
		ttl:        ttl,
		updateChan: prefix + ":updates",
	}
}

// Key 视图在 redis 中的 key
func (r *Repo) Key(view string) string {
	return r.prefix + ":" + view
}

func (r *Repo) PublishDirectory(ctx context.Context, dir *domain.Directory) error {
	views, err := storage.EncodeViews(dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(views))
	pipe := r.rdb.TxPipeline()
	for _, v := range views {
		pipe.Set(ctx, r.Key(v.Name), v.Payload, r.ttl)
		names = append(names, v.Name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return r.notify(ctx, dir.CycleID, names)
}

func (r *Repo) PublishDexBlob(ctx context.Context, items []domain.DexBlobItem) error {
	b, err := storage.EncodeDexBlob(items)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.Key(domain.DexBlobKey), b, r.ttl).Err(); err != nil {
		return err
	}
	return r.notify(ctx, "", []string{domain.DexBlobKey})
}

func (r *Repo) notify(ctx context.Context, cycleID string, views []string) error {
	msg, _ := json.Marshal(Update{CycleID: cycleID, Views: views, Ts: time.Now().UnixMilli()})
	return r.rdb.Publish(ctx, r.updateChan, msg).Err()
}

// LoadView 读取 <prefix>:<view>；不存在时返回 nil, nil
func (r *Repo) LoadView(ctx context.Context, view string) ([]domain.TokenEntry, error) {
	b, err := r.rdb.Get(ctx, r.Key(view)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.DecodeView(b)
}

// Close 连接由容器统一关闭
func (r *Repo) Close() error { return nil }

var (
	_ port.Publisher      = (*Repo)(nil)
	_ port.SnapshotLoader = (*Repo)(nil)
)
