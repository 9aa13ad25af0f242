package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/application/usecase/pipeline"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/exchange/gate"
)

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

type nopDex struct{}

func (nopDex) PriceInfo(context.Context, []port.DexPair) ([]port.DexRow, error) { return nil, nil }

func TestContainerBuildsOnce(t *testing.T) {
	c := New(Deps{
		Adapters: exchange.NewSetOf(gate.New(exchange.Options{})),
		Cache:    nopCache{},
	})

	assert.Same(t, c.Reconciler(), c.Reconciler())
	assert.Same(t, c.PriceOverlay(), c.PriceOverlay())
	assert.Same(t, c.AssetBuilder(), c.AssetBuilder())
	assert.Same(t, c.Store(), c.Store())
	assert.Nil(t, c.DexEnricher(), "未配置 DEX 源")
}

func TestContainerPipelineSharesStore(t *testing.T) {
	c := New(Deps{
		Adapters: exchange.NewSetOf(gate.New(exchange.Options{})),
		Cache:    nopCache{},
		Dex:      nopDex{},
	})
	require.NotNil(t, c.DexEnricher())

	svc := c.Pipeline(pipelineOpts())
	assert.Same(t, c.Store(), svc.Store())

	c.Store().Swap(&domain.Directory{CycleID: "x"})
	assert.Equal(t, "x", svc.Store().Load().CycleID)
}

func pipelineOpts() pipeline.Options {
	return pipeline.Options{SlowInterval: time.Minute}
}
