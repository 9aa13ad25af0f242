package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"tokendict/internal/infrastructure/config"
	"tokendict/internal/infrastructure/logger"
	"tokendict/internal/infrastructure/svc"
	"tokendict/internal/interfaces/console"
)

func main() {
	app := &cli.App{
		Name:  "tokendict",
		Usage: "token directory reconciliation and enrichment pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "configs/config.toml", Usage: "path to config.toml", EnvVars: []string{"TOKENDICT_CONFIG"}},
			&cli.StringFlag{Name: "env", Aliases: []string{"e"}, Usage: "path to .env file (default: ./.env if present)"},
			&cli.StringFlag{Name: "log-level", Usage: "override log.level"},
		},
		Action: runCommand,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the pipeline, pollers and HTTP API until interrupted",
				Action: runCommand,
			},
			{
				Name:  "once",
				Usage: "run a single reconciliation cycle and print a summary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "view", Usage: "print this view as JSON instead of the summary"},
				},
				Action: onceCommand,
			},
			{
				Name:   "config",
				Usage:  "print the effective configuration with secrets redacted",
				Action: configCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("tokendict exited")
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var envFiles []string
	if p := c.String("env"); p != "" {
		envFiles = append(envFiles, p)
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	path := c.String("config")
	if _, err := os.Stat(path); err != nil && !c.IsSet("config") {
		// 默认路径不存在时只使用默认值和环境变量
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func runCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	g, gctx := errgroup.WithContext(ctx)
	if sc.Feeds().Len() > 0 {
		g.Go(func() error { return sc.Feeds().Run(gctx) })
	}
	if srv := sc.HTTPServer(); srv != nil {
		g.Go(func() error { return srv.Run(gctx) })
	}
	g.Go(func() error { return sc.Pipeline().Run(gctx) })

	log.Info().
		Str("config", c.String("config")).
		Dur("slow_interval", cfg.Pipeline.SlowInterval.Duration).
		Dur("fast_interval", cfg.Pipeline.FastInterval.Duration).
		Msg("tokendict started")

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("tokendict stopped with error")
		return err
	}
	log.Info().Msg("tokendict stopped")
	return nil
}

func onceCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	// 行情源在对账期间填充缓存，供价格覆盖使用
	feedCtx, cancelFeeds := context.WithCancel(ctx)
	defer cancelFeeds()
	if sc.Feeds().Len() > 0 {
		go func() { _ = sc.Feeds().Run(feedCtx) }()
	}

	p := sc.Pipeline()
	if err := p.RunOnce(ctx); err != nil {
		return err
	}
	cancelFeeds()

	dir := p.Store().Load()
	printer := console.NewPrinter(os.Stdout)
	if view := c.String("view"); view != "" {
		return printer.View(dir, view)
	}
	dex, _ := p.Store().DexBlob()
	return printer.Summary(dir, len(dex))
}

func configCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return toml.NewEncoder(os.Stdout).Encode(cfg.Redacted())
}
