package pricefeed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
)

type stubFeed struct{ name string }

func (s stubFeed) Name() string { return s.name }
func (s stubFeed) Run(ctx context.Context) error { <-ctx.Done(); return nil }

func TestRegisterAndGet(t *testing.T) {
	Register("stub_b", func(string, port.TickerCache, time.Duration) port.TickerFeed { return stubFeed{"stub_b"} })
	Register("stub_a", func(string, port.TickerCache, time.Duration) port.TickerFeed { return stubFeed{"stub_a"} })
	Register("stub_nil", nil)

	f, ok := Get("stub_a")
	require.True(t, ok)
	assert.Equal(t, "stub_a", f("", nil, 0).Name())

	_, ok = Get("stub_nil")
	assert.False(t, ok)

	names := Registered()
	assert.Subset(t, names, []string{"stub_a", "stub_b"})
	assert.IsNonDecreasing(t, names)
}
