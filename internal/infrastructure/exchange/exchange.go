package exchange

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
)

// Options 单个交易所的可覆盖地址（测试或代理时使用）
type Options struct {
	AssetBaseURL string
	TickerURL    string
}

// Factory 构造交易所适配器
type Factory func(opts Options) port.ExchangeAdapter

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register 注册交易所适配器工厂，由各交易所包的 init() 调用
func Register(name string, factory Factory) {
	name = strings.ToLower(strings.TrimSpace(name))
	if factory == nil || name == "" {
		log.Warn().Str("exchange", name).Msg("invalid exchange adapter factory")
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		log.Warn().Str("exchange", name).Msg("exchange adapter already registered, overwriting")
	}
	factories[name] = factory
	log.Debug().Str("exchange", name).Msg("exchange adapter registered")
}

// Get 获取已注册的工厂
func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Registered 返回所有已注册的交易所名称（排序）
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Set is the single dispatch point from an exchange name (or any alias of
// it) to its adapter.
type Set struct {
	adapters []port.ExchangeAdapter
	byName   map[string]port.ExchangeAdapter
}

// NewSet 按名称构造适配器集合；names 为空时使用全部已注册交易所
func NewSet(names []string, opts map[string]Options) *Set {
	if len(names) == 0 {
		names = Registered()
	}
	s := &Set{byName: make(map[string]port.ExchangeAdapter)}
	for _, name := range names {
		f, ok := Get(name)
		if !ok {
			log.Warn().Str("exchange", name).Msg("unknown exchange, skipped")
			continue
		}
		s.Add(f(opts[strings.ToLower(name)]))
	}
	return s
}

// NewSetOf wraps already constructed adapters.
func NewSetOf(adapters ...port.ExchangeAdapter) *Set {
	s := &Set{byName: make(map[string]port.ExchangeAdapter)}
	for _, a := range adapters {
		s.Add(a)
	}
	return s
}

// Add 加入适配器并登记其全部别名
func (s *Set) Add(a port.ExchangeAdapter) {
	if a == nil {
		return
	}
	s.adapters = append(s.adapters, a)
	keys := append([]string{a.Name(), a.CatalogID(), a.TickerKey()}, a.Aliases()...)
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, taken := s.byName[k]; !taken {
			s.byName[k] = a
		}
	}
	sort.Slice(s.adapters, func(i, j int) bool { return s.adapters[i].Name() < s.adapters[j].Name() })
}

// All 按名称排序的全部适配器
func (s *Set) All() []port.ExchangeAdapter {
	out := make([]port.ExchangeAdapter, len(s.adapters))
	copy(out, s.adapters)
	return out
}

// Resolve 按名称或别名查找
func (s *Set) Resolve(name string) (port.ExchangeAdapter, bool) {
	a, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// NormalizeName maps a catalog exchange id to the key used by the asset
// directory (bybit_spot -> bybit, mexc -> mxc). Unknown names are lower-cased.
func (s *Set) NormalizeName(name string) string {
	if a, ok := s.Resolve(name); ok {
		return a.Name()
	}
	return strings.ToLower(strings.TrimSpace(name))
}

var _ port.AdapterSet = (*Set)(nil)
