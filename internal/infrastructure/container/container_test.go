package container

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/config"
)

func TestNoStorage(t *testing.T) {
	cfg, err := config.Parse("")
	require.NoError(t, err)

	c, err := New(t.Context(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Publisher())
	assert.Nil(t, c.OverlayPublisher())
	assert.Nil(t, c.Loader())
	assert.Nil(t, c.TickerCache())
	assert.Nil(t, c.RedisClient())
	assert.Zero(t, c.Publishers())
}

func TestSQLitePublisherAndLoader(t *testing.T) {
	cfg, err := config.Parse("[storage]\nwarm_start = \"sqlite\"\n[storage.sqlite]\nenabled = true\n")
	require.NoError(t, err)
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "nested", "views.db")

	c, err := New(t.Context(), cfg)
	require.NoError(t, err)
	defer c.Close()

	pub := c.Publisher()
	require.NotNil(t, pub)
	assert.Equal(t, 1, c.Publishers())

	dir := &domain.Directory{CycleID: "c1", All: []domain.TokenEntry{{Symbol: "TKX", Chain: "ethereum", ContractAddress: "0xaaa"}}}
	require.NoError(t, pub.PublishDirectory(t.Context(), dir))

	loader := c.Loader()
	require.NotNil(t, loader)
	entries, err := loader.LoadView(t.Context(), domain.ViewAll)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TKX", entries[0].Symbol)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestOverlayPublisherSelection(t *testing.T) {
	for mode, want := range map[string]bool{"redis": false, "all": true, "none": false} {
		t.Run(mode, func(t *testing.T) {
			cfg, err := config.Parse("[pipeline]\noverlay_publish = \"" + mode + "\"\n[storage.sqlite]\nenabled = true\n")
			require.NoError(t, err)
			cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "views.db")

			c, err := New(t.Context(), cfg)
			require.NoError(t, err)
			defer c.Close()

			require.NotNil(t, c.Publisher())
			if want {
				assert.NotNil(t, c.OverlayPublisher())
			} else {
				assert.Nil(t, c.OverlayPublisher(), "sqlite 不接收快速覆盖")
			}
		})
	}
}

func TestRedisUnreachable(t *testing.T) {
	cfg, err := config.Parse("[storage.redis]\nenabled = true\naddr = \"127.0.0.1:1\"\n")
	require.NoError(t, err)

	_, err = New(t.Context(), cfg)
	assert.Error(t, err)
}
