package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/domain"
)

// 需要真实 postgres：POSTGRES_TEST_DSN=postgres://...
func TestPublishAndLoad(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	repo, err := New(dsn)
	require.NoError(t, err)
	defer repo.Close()

	dir := &domain.Directory{CycleID: "c1", All: []domain.TokenEntry{{Symbol: "TKX", Chain: "ethereum", ContractAddress: "0xaaa"}}}
	require.NoError(t, repo.PublishDirectory(t.Context(), dir))
	dir.CycleID = "c2"
	dir.All[0].Symbol = "TKY"
	require.NoError(t, repo.PublishDirectory(t.Context(), dir))

	entries, err := repo.LoadView(t.Context(), domain.ViewAll)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TKY", entries[0].Symbol)

	require.NoError(t, repo.PublishDexBlob(t.Context(), nil))
	missing, err := repo.LoadView(t.Context(), "no_such_view")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
