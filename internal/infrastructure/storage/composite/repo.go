package composite

import (
	"context"
	"errors"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

// Repo 依次写入所有下游；每个都会尝试，返回第一个错误
type Repo struct {
	repos []port.Publisher
}

func New(repos ...port.Publisher) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Publisher, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

// Len 下游数量
func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) PublishDirectory(ctx context.Context, dir *domain.Directory) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.PublishDirectory(ctx, dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) PublishDexBlob(ctx context.Context, items []domain.DexBlobItem) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.PublishDexBlob(ctx, items); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var errs []error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ port.Publisher = (*Repo)(nil)
