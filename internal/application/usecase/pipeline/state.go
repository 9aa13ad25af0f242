package pipeline

import (
	"sync/atomic"

	"tokendict/internal/domain"
)

// Store 当前已发布的字典快照与 DEX 诊断数据。
// 读者只做原子读，不加锁；写入方整体替换指针。
type Store struct {
	dir atomic.Pointer[domain.Directory]
	dex atomic.Pointer[[]domain.DexBlobItem]
}

func NewStore() *Store {
	return &Store{}
}

// Load 返回当前快照，尚未发布时为 nil
func (s *Store) Load() *domain.Directory {
	return s.dir.Load()
}

// Swap 发布新快照并返回旧快照
func (s *Store) Swap(next *domain.Directory) *domain.Directory {
	return s.dir.Swap(next)
}

// CompareAndSwap 仅当当前快照仍为 old 时才替换。
// 覆盖期间若对账发布了新快照，覆盖结果被丢弃。
func (s *Store) CompareAndSwap(old, next *domain.Directory) bool {
	return s.dir.CompareAndSwap(old, next)
}

// View 按名称读取视图
func (s *Store) View(name string) ([]domain.TokenEntry, bool) {
	return s.Load().View(name)
}

// DexBlob 最近一次 DEX 诊断数据
func (s *Store) DexBlob() ([]domain.DexBlobItem, bool) {
	p := s.dex.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// SetDexBlob 替换 DEX 诊断数据
func (s *Store) SetDexBlob(items []domain.DexBlobItem) {
	if items == nil {
		items = []domain.DexBlobItem{}
	}
	s.dex.Store(&items)
}
