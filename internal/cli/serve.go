package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adityaaj2003/tunegan/internal/config"
	"github.com/adityaaj2003/tunegan/internal/server"
	"github.com/adityaaj2003/tunegan/pkg/cache"
	"github.com/adityaaj2003/tunegan/pkg/pipeline"
	"github.com/adityaaj2003/tunegan/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TuneGAN HTTP API server",
		Long: `Serve starts the HTTP API for generating and managing tracks.

Backends are selected in the config file: the cache can run on local files
or Redis, and track metadata can live in memory or MongoDB.

Examples:
  tunegan serve
  tunegan serve --config tunegan.toml
  tunegan serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			c.Logger.Debug("loaded config", "config", cfg.String())

			ctx := cmd.Context()

			cacheBackend, err := serveCache(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("init cache: %w", err)
			}

			st, err := serveStore(ctx, cfg.Store)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = st.Close(context.Background()) }()

			runner := pipeline.NewRunner(cacheBackend, nil, c.Logger)
			defer runner.Close()

			srv, err := server.New(cfg, runner, st, c.Logger)
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// serveCache builds the cache backend named in the config.
func serveCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	case config.CacheBackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
	default: // file
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// serveStore builds the track store backend named in the config.
func serveStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Backend == config.StoreBackendMongo {
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	}
	return store.NewMemoryStore(), nil
}
