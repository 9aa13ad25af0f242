package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/domain"
)

func TestStoreSwapAndCompareAndSwap(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Load())
	_, ok := s.View(domain.ViewAll)
	assert.False(t, ok)

	first := &domain.Directory{CycleID: "a", All: []domain.TokenEntry{{Symbol: "A"}}}
	assert.Nil(t, s.Swap(first))

	// 覆盖开始后，对账发布了新快照
	second := &domain.Directory{CycleID: "b"}
	assert.Same(t, first, s.Swap(second))

	overlaid := &domain.Directory{CycleID: "a"}
	assert.False(t, s.CompareAndSwap(first, overlaid))
	assert.Same(t, second, s.Load())

	assert.True(t, s.CompareAndSwap(second, overlaid))
	assert.Same(t, overlaid, s.Load())
}

func TestStoreDexBlob(t *testing.T) {
	s := NewStore()
	_, ok := s.DexBlob()
	assert.False(t, ok)

	s.SetDexBlob(nil)
	items, ok := s.DexBlob()
	require.True(t, ok)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	s.SetDexBlob([]domain.DexBlobItem{{ChainName: "ethereum", Price: "1"}})
	items, _ = s.DexBlob()
	assert.Len(t, items, 1)
}
