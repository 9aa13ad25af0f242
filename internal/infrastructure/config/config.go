package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	App struct {
		Name string `toml:"name"`
	} `toml:"app"`

	Log struct {
		Level  string `toml:"level"`
		Pretty bool   `toml:"pretty"`
	} `toml:"log"`

	Catalog struct {
		BaseURL           string   `toml:"base_url"`
		APIKey            string   `toml:"api_key"`
		RequestsPerMinute int      `toml:"requests_per_minute"`
		Timeout           Duration `toml:"timeout"`
		MaxPages          int      `toml:"max_pages"`
	} `toml:"catalog"`

	// Exchanges 按交易所名（binance、okex、mxc ...）配置；未出现的交易所默认启用
	Exchanges map[string]ExchangeConfig `toml:"exchanges"`

	Dex struct {
		Enabled    bool     `toml:"enabled"`
		BaseURL    string   `toml:"base_url"`
		APIKey     string   `toml:"api_key"`
		APISecret  string   `toml:"api_secret"`
		Passphrase string   `toml:"passphrase"`
		BatchSize  int      `toml:"batch_size"`
		Cooldown   Duration `toml:"cooldown"`
		Timeout    Duration `toml:"timeout"`
	} `toml:"dex"`

	Pipeline struct {
		SlowInterval      Duration `toml:"slow_interval"`
		FastInterval      Duration `toml:"fast_interval"`
		WarmUp            Duration `toml:"warm_up"`
		TickerConcurrency int      `toml:"ticker_concurrency"`
		AssetTimeout      Duration `toml:"asset_timeout"`
		// OverlayPublish 价格覆盖结果写到哪些发布端: redis | all | none
		OverlayPublish string `toml:"overlay_publish"`
	} `toml:"pipeline"`

	Poller struct {
		Enabled   bool     `toml:"enabled"`
		Interval  Duration `toml:"interval"`
		Timeout   Duration `toml:"timeout"`
		TTL       Duration `toml:"ttl"`
		Websocket bool     `toml:"websocket"` // binance !miniTicker@arr
	} `toml:"poller"`

	Storage struct {
		// WarmStart 启动预热的来源：sqlite / postgres / redis，空表示不预热
		WarmStart string `toml:"warm_start"`

		Redis struct {
			Enabled    bool   `toml:"enabled"`
			Addr       string `toml:"addr"`
			Password   string `toml:"password"`
			DB         int    `toml:"db"`
			Prefix     string `toml:"prefix"`
			TTLSeconds int    `toml:"ttl_seconds"`
			// TickerCache 行情缓存也放在 redis 中，否则使用进程内缓存
			TickerCache bool `toml:"ticker_cache"`
		} `toml:"redis"`

		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		S3 struct {
			Enabled        bool   `toml:"enabled"`
			Endpoint       string `toml:"endpoint"`
			Region         string `toml:"region"`
			Bucket         string `toml:"bucket"`
			Prefix         string `toml:"prefix"`
			AccessKey      string `toml:"access_key"`
			SecretKey      string `toml:"secret_key"`
			UseSSL         bool   `toml:"use_ssl"`
			ForcePathStyle bool   `toml:"force_path_style"`
		} `toml:"s3"`
	} `toml:"storage"`

	HTTP struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"http"`
}

type ExchangeConfig struct {
	Enabled      *bool  `toml:"enabled"`
	APIKey       string `toml:"api_key"`
	APISecret    string `toml:"api_secret"`
	Passphrase   string `toml:"passphrase"`
	AssetBaseURL string `toml:"asset_base_url"`
	TickerURL    string `toml:"ticker_url"`
	WsURL        string `toml:"ws_url"`
}

// IsEnabled 未显式配置 enabled 时视为启用
func (e ExchangeConfig) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// pipeline.overlay_publish 取值
const (
	OverlayPublishRedis = "redis"
	OverlayPublishAll   = "all"
	OverlayPublishNone  = "none"
)

// Duration 支持 "5s"、"1m" 形式的 TOML 字符串
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// venueEnv 交易所名 -> 环境变量前缀
var venueEnv = map[string]string{
	"binance":  "BINANCE",
	"bitget":   "BITGET",
	"bitmart":  "BITMART",
	"bybit":    "BYBIT",
	"gate":     "GATE",
	"huobi":    "HTX",
	"kucoin":   "KUCOIN",
	"lbank":    "LBANK",
	"mxc":      "MEXC",
	"okex":     "OKX",
	"poloniex": "POLONIEX",
	"xt":       "XT",
}

// venueAliases 配置中常见的别名
var venueAliases = map[string]string{
	"okx":  "okex",
	"mexc": "mxc",
	"htx":  "huobi",
}

// LoadEnv 加载 .env；未指定文件时忽略默认 .env 不存在的情况
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		_ = godotenv.Load()
		return nil
	}
	return godotenv.Load(files...)
}

// Load 读取 TOML，叠加环境变量，补默认值并校验。path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	return finish(&cfg)
}

// Parse 与 Load 相同，但从字符串读取
func Parse(text string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(text, &cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	normalizeExchanges(cfg)
	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func normalizeExchanges(cfg *Config) {
	out := make(map[string]ExchangeConfig, len(cfg.Exchanges))
	for name, ex := range cfg.Exchanges {
		out[canonicalVenue(name)] = ex
	}
	cfg.Exchanges = out
}

func canonicalVenue(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := venueAliases[n]; ok {
		return c
	}
	return n
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Log.Level, "TOKENDICT_LOG_LEVEL")
	setStr(&cfg.HTTP.Addr, "TOKENDICT_HTTP_ADDR")

	setStr(&cfg.Catalog.APIKey, "COINGECKO_API_KEY")
	setStr(&cfg.Catalog.BaseURL, "COINGECKO_BASE_URL")

	for venue, prefix := range venueEnv {
		ex := cfg.Exchanges[venue]
		before := ex
		setStr(&ex.APIKey, prefix+"_API_KEY")
		setStr(&ex.APISecret, prefix+"_API_SECRET")
		setStr(&ex.APISecret, prefix+"_SECRET_KEY")
		setStr(&ex.Passphrase, prefix+"_PASSPHRASE")
		if ex != before {
			cfg.Exchanges[venue] = ex
		}
	}

	// DEX 凭证：OKX_DEX_* 优先，其次沿用 OKX_*
	setStr(&cfg.Dex.APIKey, "OKX_API_KEY")
	setStr(&cfg.Dex.APISecret, "OKX_SECRET_KEY")
	setStr(&cfg.Dex.Passphrase, "OKX_PASSPHRASE")
	setStr(&cfg.Dex.APIKey, "OKX_DEX_API_KEY")
	setStr(&cfg.Dex.APISecret, "OKX_DEX_API_SECRET")
	setStr(&cfg.Dex.Passphrase, "OKX_DEX_PASSPHRASE")
	setBool(&cfg.Dex.Enabled, "OKX_DEX_ENABLED")

	setStr(&cfg.Storage.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Storage.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Storage.Redis.DB, "REDIS_DB")
	setStr(&cfg.Storage.Postgres.DSN, "POSTGRES_DSN")
	setStr(&cfg.Storage.SQLite.Path, "SQLITE_PATH")

	setStr(&cfg.Storage.S3.Endpoint, "S3_ENDPOINT")
	setStr(&cfg.Storage.S3.Region, "S3_REGION")
	setStr(&cfg.Storage.S3.Bucket, "S3_BUCKET")
	setStr(&cfg.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setStr(&cfg.Storage.S3.SecretKey, "S3_SECRET_KEY")
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tokendict"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = "https://api.coingecko.com"
	}
	if cfg.Catalog.RequestsPerMinute == 0 {
		cfg.Catalog.RequestsPerMinute = 30
	}
	defaultDuration(&cfg.Catalog.Timeout, 180*time.Second)
	if cfg.Catalog.MaxPages <= 0 {
		cfg.Catalog.MaxPages = 100
	}

	if cfg.Dex.BaseURL == "" {
		cfg.Dex.BaseURL = "https://www.okx.com"
	}
	if cfg.Dex.BatchSize <= 0 {
		cfg.Dex.BatchSize = 100
	}
	defaultDuration(&cfg.Dex.Cooldown, 2*time.Second)
	defaultDuration(&cfg.Dex.Timeout, 30*time.Second)

	defaultDuration(&cfg.Pipeline.SlowInterval, time.Minute)
	defaultDuration(&cfg.Pipeline.FastInterval, 3*time.Second)
	defaultDuration(&cfg.Pipeline.WarmUp, 5*time.Second)
	defaultDuration(&cfg.Pipeline.AssetTimeout, 30*time.Second)
	if cfg.Pipeline.TickerConcurrency <= 0 {
		cfg.Pipeline.TickerConcurrency = 4
	}
	if cfg.Pipeline.OverlayPublish == "" {
		cfg.Pipeline.OverlayPublish = OverlayPublishRedis
	}

	defaultDuration(&cfg.Poller.Interval, 3*time.Second)
	defaultDuration(&cfg.Poller.Timeout, 10*time.Second)
	defaultDuration(&cfg.Poller.TTL, 30*time.Second)

	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "tokendict"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/tokendict.db"
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "us-east-1"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
}

func defaultDuration(d *Duration, def time.Duration) {
	if d.Duration <= 0 {
		d.Duration = def
	}
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level %q: %w", cfg.Log.Level, err)
	}
	if cfg.Dex.Enabled && (cfg.Dex.APIKey == "" || cfg.Dex.APISecret == "" || cfg.Dex.Passphrase == "") {
		return errors.New("dex enabled but api_key, api_secret or passphrase is empty")
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.S3.Enabled && strings.TrimSpace(cfg.Storage.S3.Bucket) == "" {
		return errors.New("storage.s3.bucket empty but enabled")
	}
	if cfg.Poller.Websocket && !cfg.Poller.Enabled {
		return errors.New("poller.websocket requires poller.enabled")
	}

	switch ws := strings.ToLower(strings.TrimSpace(cfg.Storage.WarmStart)); ws {
	case "":
	case "sqlite":
		if !cfg.Storage.SQLite.Enabled {
			return errors.New("storage.warm_start = sqlite but sqlite disabled")
		}
	case "postgres":
		if !cfg.Storage.Postgres.Enabled {
			return errors.New("storage.warm_start = postgres but postgres disabled")
		}
	case "redis":
		if !cfg.Storage.Redis.Enabled {
			return errors.New("storage.warm_start = redis but redis disabled")
		}
	default:
		return fmt.Errorf("storage.warm_start %q unknown", cfg.Storage.WarmStart)
	}
	cfg.Storage.WarmStart = strings.ToLower(strings.TrimSpace(cfg.Storage.WarmStart))

	cfg.Pipeline.OverlayPublish = strings.ToLower(strings.TrimSpace(cfg.Pipeline.OverlayPublish))
	switch cfg.Pipeline.OverlayPublish {
	case OverlayPublishRedis, OverlayPublishAll, OverlayPublishNone:
	default:
		return fmt.Errorf("pipeline.overlay_publish %q unknown", cfg.Pipeline.OverlayPublish)
	}
	return nil
}

// EnabledExchanges 从已注册交易所中过滤掉被显式关闭的
func (c *Config) EnabledExchanges(registered []string) []string {
	out := make([]string, 0, len(registered))
	for _, name := range registered {
		if ex, ok := c.Exchanges[canonicalVenue(name)]; ok && !ex.IsEnabled() {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Exchange 单个交易所配置（名称大小写与别名不敏感）
func (c *Config) Exchange(name string) ExchangeConfig {
	return c.Exchanges[canonicalVenue(name)]
}

// Redacted 返回隐去密钥的副本，用于日志与 config 命令
func (c *Config) Redacted() Config {
	out := *c

	redact(&out.Catalog.APIKey)
	redact(&out.Dex.APIKey)
	redact(&out.Dex.APISecret)
	redact(&out.Dex.Passphrase)
	redact(&out.Storage.Redis.Password)
	redact(&out.Storage.Postgres.DSN)
	redact(&out.Storage.S3.AccessKey)
	redact(&out.Storage.S3.SecretKey)

	out.Exchanges = make(map[string]ExchangeConfig, len(c.Exchanges))
	for name, ex := range c.Exchanges {
		redact(&ex.APIKey)
		redact(&ex.APISecret)
		redact(&ex.Passphrase)
		out.Exchanges[name] = ex
	}
	return out
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
