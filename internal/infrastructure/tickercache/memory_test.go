package tickercache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpires(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	src := []byte(`[1]`)
	require.NoError(t, m.Set(ctx, "gate_spot", src, 30*time.Second))
	src[0] = 'x'

	b, ok, err := m.Get(ctx, "gate_spot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(b))

	now = now.Add(30 * time.Second)
	_, ok, _ = m.Get(ctx, "gate_spot")
	assert.False(t, ok)

	_, ok, _ = m.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemoryNoTTL(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(context.Background(), "k", []byte("v"), 0))
	_, ok, _ := m.Get(context.Background(), "k")
	assert.True(t, ok)
}
