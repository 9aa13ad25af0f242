package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/domain"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "data", "dict.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleDirectory(cycle string, last int64) *domain.Directory {
	entry := domain.TokenEntry{
		Symbol: "TKX", Chain: "ethereum", ContractAddress: "0xabc",
		Exchanges: []domain.ExchangeEntry{{Name: "gate", Base: "TKX", Target: "USDT", Last: decimal.NewFromInt(last), Confirmed: true}},
	}
	return &domain.Directory{
		CycleID: cycle,
		All:     []domain.TokenEntry{entry},
		USDT:    []domain.TokenEntry{entry},
	}
}

func TestPublishAndLoadView(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PublishDirectory(ctx, sampleDirectory("c1", 1)))
	require.NoError(t, repo.PublishDirectory(ctx, sampleDirectory("c2", 7)))

	entries, err := repo.LoadView(ctx, domain.ViewAll)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Exchanges[0].Last.Equal(decimal.NewFromInt(7)))

	id, err := repo.CycleOf(ctx, domain.ViewUSDT)
	require.NoError(t, err)
	assert.Equal(t, "c2", id)

	usdc, err := repo.LoadView(ctx, domain.ViewUSDC)
	require.NoError(t, err)
	assert.NotNil(t, usdc)
	assert.Empty(t, usdc)
}

func TestLoadMissingView(t *testing.T) {
	repo := newRepo(t)
	entries, err := repo.LoadView(context.Background(), domain.ViewAll)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestPublishDexBlob(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.PublishDexBlob(ctx, []domain.DexBlobItem{{ChainName: "ethereum", TokenContractAddress: "0xabc", Price: "1.5"}}))

	var payload string
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT payload FROM views WHERE name=?`, domain.DexBlobKey).Scan(&payload))
	assert.JSONEq(t, `[{"chainName":"ethereum","tokenContractAddress":"0xabc","price":"1.5","liquidity":"","marketCap":""}]`, payload)
}
