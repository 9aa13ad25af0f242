package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/config"
	"tokendict/internal/infrastructure/storage/composite"
	pgrepo "tokendict/internal/infrastructure/storage/postgres"
	redisrepo "tokendict/internal/infrastructure/storage/redis"
	s3repo "tokendict/internal/infrastructure/storage/s3"
	sqliterepo "tokendict/internal/infrastructure/storage/sqlite"
)

// Container 存储层依赖：发布端、预热来源与 redis 连接
type Container struct {
	cfg         *config.Config
	redisClient *redis.Client
	redisRepo   *redisrepo.Repo
	sqliteRepo  *sqliterepo.Repo
	pgRepo      *pgrepo.Repo
	s3Repo      *s3repo.Repo
	publishers  []port.Publisher
	closeOnce   sync.Once
	closerChain []func() error
}

// New 按配置初始化全部已启用的存储；任何一个失败都会关闭已初始化的部分
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}
	if err := c.initStorage(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// initStorage 初始化存储层（Redis、SQLite、Postgres、S3）
func (c *Container) initStorage(ctx context.Context) error {
	st := c.cfg.Storage

	if st.Redis.Enabled {
		if err := c.initRedis(ctx); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
	}
	if st.SQLite.Enabled {
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
	}
	if st.Postgres.Enabled {
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
	}
	if st.S3.Enabled {
		if err := c.initS3(ctx); err != nil {
			return fmt.Errorf("s3 init failed: %w", err)
		}
	}
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis(ctx context.Context) error {
	rc := c.cfg.Storage.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	// 测试连接
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb
	c.redisRepo = redisrepo.New(rdb, rc.Prefix, time.Duration(rc.TTLSeconds)*time.Second)
	c.publishers = append(c.publishers, c.redisRepo)

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", rc.Addr).
		Int("db", rc.DB).
		Msg("redis initialized")
	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}
	c.sqliteRepo = repo
	c.publishers = append(c.publishers, repo)

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")
	return nil
}

func (c *Container) initPostgres() error {
	repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}
	c.pgRepo = repo
	c.publishers = append(c.publishers, repo)

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})
	log.Info().Msg("postgres initialized")
	return nil
}

func (c *Container) initS3(ctx context.Context) error {
	sc := c.cfg.Storage.S3
	repo, err := s3repo.New(ctx, s3repo.Config{
		Endpoint:       sc.Endpoint,
		Region:         sc.Region,
		Bucket:         sc.Bucket,
		Prefix:         sc.Prefix,
		AccessKey:      sc.AccessKey,
		SecretKey:      sc.SecretKey,
		UseSSL:         sc.UseSSL,
		ForcePathStyle: sc.ForcePathStyle,
	})
	if err != nil {
		return err
	}
	c.s3Repo = repo
	c.publishers = append(c.publishers, repo)

	log.Info().
		Str("bucket", sc.Bucket).
		Str("prefix", sc.Prefix).
		Msg("s3 initialized")
	return nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// RedisClient 获取 Redis 客户端，未启用时为 nil
func (c *Container) RedisClient() *redis.Client {
	return c.redisClient
}

// Publisher 所有已启用的发布端；一个都没有时返回 nil
func (c *Container) Publisher() port.Publisher {
	if len(c.publishers) == 0 {
		return nil
	}
	return composite.New(c.publishers...)
}

// OverlayPublisher 快速价格覆盖使用的发布端，按 pipeline.overlay_publish 选择：
// redis 只写 redis（未启用时为 nil），all 写全部，none 为 nil
func (c *Container) OverlayPublisher() port.Publisher {
	switch c.cfg.Pipeline.OverlayPublish {
	case config.OverlayPublishAll:
		return c.Publisher()
	case config.OverlayPublishNone:
		return nil
	default:
		if c.redisRepo == nil {
			return nil
		}
		return c.redisRepo
	}
}

// Publishers 已启用的发布端数量
func (c *Container) Publishers() int {
	return len(c.publishers)
}

// Loader 启动预热来源，按 storage.warm_start 选择；未配置时为 nil
func (c *Container) Loader() port.SnapshotLoader {
	switch c.cfg.Storage.WarmStart {
	case "sqlite":
		if c.sqliteRepo != nil {
			return c.sqliteRepo
		}
	case "postgres":
		if c.pgRepo != nil {
			return c.pgRepo
		}
	case "redis":
		if c.redisRepo != nil {
			return c.redisRepo
		}
	}
	return nil
}

// TickerCache redis 行情缓存；未启用 redis 或未开启 ticker_cache 时返回 nil
func (c *Container) TickerCache() port.TickerCache {
	if c.redisClient == nil || !c.cfg.Storage.Redis.TickerCache {
		return nil
	}
	return redisrepo.NewTickerCache(c.redisClient, c.cfg.Storage.Redis.Prefix)
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
