package httpapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

// 旧版接口名，和对应视图相同
var viewAliases = map[string]string{
	"price_dict":         domain.ViewAll,
	"price_dict_usdt":    domain.ViewUSDT,
	"price_dict_sol_eth": domain.ViewSolEth,
	"price_dict_usdc":    domain.ViewUSDC,
	"okx_dex_prices":     domain.DexBlobKey,
}

func (s *Server) get(c *gin.Context) {
	key := strings.ToLower(strings.TrimSpace(c.Param("key")))
	if alias, ok := viewAliases[key]; ok {
		key = alias
	}

	switch {
	case key == domain.DexBlobKey:
		items, ok := s.store.DexBlob()
		if !ok {
			notFound(c, "no DEX data available")
			return
		}
		c.JSON(http.StatusOK, items)
	case strings.HasSuffix(key, "_spot"):
		s.rawTicker(c, key)
	default:
		entries, ok := s.store.View(key)
		if !ok {
			if slices.Contains(domain.Views(), key) {
				notFound(c, "no "+key+" data available")
			} else {
				notFound(c, "unknown key "+key)
			}
			return
		}
		if entries == nil {
			entries = []domain.TokenEntry{}
		}
		c.JSON(http.StatusOK, entries)
	}
}

func (s *Server) rawTicker(c *gin.Context, key string) {
	if s.cache == nil {
		notFound(c, "no "+key+" data available")
		return
	}
	body, ok, err := s.cache.Get(c.Request.Context(), key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("kind", port.ErrorKind(err)).Msg("ticker cache read failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ticker cache unavailable"})
		return
	}
	if !ok {
		notFound(c, "no "+key+" data available")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// status 当前快照概况
func (s *Server) status(c *gin.Context) {
	dir := s.store.Load()
	if dir == nil {
		c.JSON(http.StatusOK, gin.H{"ready": false})
		return
	}
	dex, _ := s.store.DexBlob()
	c.JSON(http.StatusOK, gin.H{
		"ready":    true,
		"cycle_id": dir.CycleID,
		"built_at": dir.BuiltAt,
		"views": gin.H{
			domain.ViewAll:    len(dir.All),
			domain.ViewUSDT:   len(dir.USDT),
			domain.ViewSolEth: len(dir.SolEth),
			domain.ViewUSDC:   len(dir.USDC),
		},
		"dex_items": len(dex),
	})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}
