package port

import (
	"context"

	"tokendict/internal/domain"
)

// Publisher 字典快照的下游输出（redis / sqlite / postgres / s3）
type Publisher interface {
	PublishDirectory(ctx context.Context, dir *domain.Directory) error
	PublishDexBlob(ctx context.Context, items []domain.DexBlobItem) error
	Close() error
}

// SnapshotLoader 读取最近一次发布的视图，用于启动预热
type SnapshotLoader interface {
	LoadView(ctx context.Context, view string) ([]domain.TokenEntry, error)
}
