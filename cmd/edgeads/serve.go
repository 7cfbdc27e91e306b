package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/edgeads/internal/api"
	"github.com/patrickwarner/edgeads/internal/config"
	"github.com/patrickwarner/edgeads/internal/db"
	"github.com/patrickwarner/edgeads/internal/edge"
	"github.com/patrickwarner/edgeads/internal/flags"
	"github.com/patrickwarner/edgeads/internal/geoip"
	"github.com/patrickwarner/edgeads/internal/observability"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the edge runtime HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err := observability.InitLogger(cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() {
			if err := logger.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
			}
		}()

		if err := run(logger, cfg); err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	},
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	var locator edge.Locator
	if cfg.GeoIPDB != "" {
		geoSvc, err := geoip.Open(cfg.GeoIPDB, logger)
		if err != nil {
			return fmt.Errorf("failed to load geoip db: %w", err)
		}
		defer func() { _ = geoSvc.Close() }()
		locator = geoSvc
	}

	ldClient, store, err := newFlagClient(cfg, logger)
	if err != nil {
		return err
	}
	// Closing the client also closes the feature store.
	defer func() { _ = ldClient.Close() }()

	metricsRegistry := observability.NewPrometheusRegistry()
	srv := api.NewServer(logger, flags.NewLDEvaluator(ldClient, logger), metricsRegistry)
	srv.FlagClient = ldClient
	if store != nil {
		srv.Store = store
	}

	addr := ":" + cfg.Port
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(api.NewRouter(srv, locator), cfg.ServiceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Edge runtime listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Edge runtime stopped")
	return nil
}

var makeLDClient = flags.NewLDClient

// newFlagClient builds the LaunchDarkly client, backed by the Redis feature
// store when configured. The store is closed if the client cannot be built.
func newFlagClient(cfg config.Config, logger *zap.Logger) (*ld.LDClient, *db.FeatureStore, error) {
	opts := flags.ClientOptions{
		SDKKey:        cfg.LDSDKKey,
		Offline:       cfg.LDOffline,
		InitTimeout:   cfg.LDInitTimeout,
		StoreCacheTTL: cfg.FeatureStoreCacheTTL,
		Logger:        logger,
	}
	if cfg.FeatureStore == config.FeatureStoreRedis {
		client, err := db.InitRedis(cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		opts.FeatureStore = db.NewFeatureStore(client, cfg.RedisPrefix, logger)
		logger.Info("using redis feature store",
			zap.String("addr", cfg.RedisAddr),
			zap.String("prefix", cfg.RedisPrefix))
	}

	ldClient, err := makeLDClient(opts)
	if err != nil {
		if opts.FeatureStore != nil {
			_ = opts.FeatureStore.Close()
		}
		return nil, nil, err
	}
	return ldClient, opts.FeatureStore, nil
}
