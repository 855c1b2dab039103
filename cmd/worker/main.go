package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"cover/m2sync/internal/app/server"
	"cover/m2sync/internal/app/server/handlers/statusupdate"
	"cover/m2sync/internal/app/server/routers"
	"cover/m2sync/internal/business"
	"cover/m2sync/internal/business/magento2"
	"cover/m2sync/internal/domains"
	"cover/m2sync/internal/worker"
	"cover/m2sync/pkg/config"
	"cover/m2sync/pkg/infra/mysql"
	"cover/m2sync/pkg/infra/redis"
	"cover/m2sync/pkg/lmstfy"
	"cover/m2sync/pkg/logger"
	"cover/m2sync/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

var (
	configPath = flag.String("config", "./config/worker.yaml", "config file path")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	zapLogger.Infof(ctx, "Config loaded: %s, env: %s, log_level: %s", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Errorf(ctx, "%v", err)
		_ = zapLogger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zapLogger logger.Logger) error {
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	m := metrics.New()

	client := magento2.NewClient(nil, cfg.Magento2.Rest.Timeout, zapLogger)
	policy := magento2.RetryPolicy{
		RedeliveryAttempts: cfg.Magento2.Rest.Redelivery.Attempts,
		RedeliveryDelay:    cfg.Magento2.Rest.Redelivery.DelayDuration(),
	}
	syncer := magento2.NewSyncer(client, policy, zapLogger, magento2.WithRecorder(m))

	opts := []business.ServiceOption{
		business.WithShopDefaults(business.ShopDefaults{
			ShopURL:       cfg.Magento2.ShopURL,
			ShopAuthToken: cfg.Magento2.ShopAuthToken,
		}),
		business.WithCallback(lmstfyClient, cfg.Workers[0].CallbackQueue),
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		opts = append(opts,
			business.WithCache(redis.NewCacheStore(redisClient, cfg.Redis.CachePrefix)),
			business.WithNotifier(redis.NewPubSub(redisClient, cfg.Redis.ChannelPrefix)),
		)
	}

	var logReader statusupdate.LogReader
	if cfg.MySQL.DSN != "" {
		dao, err := mysql.NewSyncLogDAO(cfg.MySQL.DSN)
		if err != nil {
			return err
		}
		defer dao.Close()
		opts = append(opts, business.WithAuditLog(dao))
		logReader = dao
	}

	service := business.NewStatusSyncService(syncer, zapLogger, opts...)

	mgr, err := worker.NewManagerInstance(cfg, lmstfyClient, domains.GetProcess(zapLogger, domains.NewHandlerMap(service)), zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- mgr.Start()
	}()

	var httpServer *server.Server
	if cfg.Server.Port != "" {
		handler := statusupdate.NewStatusUpdateHandler(service, lmstfyClient, cfg.Workers[0].QueueName, logReader, zapLogger)
		engine := routers.SetupRoutes(handler, m.Handler(), m, zapLogger)
		httpServer = server.New(cfg.Server.Port, engine, zapLogger)
		go func() {
			if err := httpServer.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	zapLogger.Infof(ctx, "Worker started. Press Ctrl+C to shutdown.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		zapLogger.Infof(ctx, "Received signal: %v, shutting down", sig)
	case runErr = <-errCh:
		zapLogger.Errorf(ctx, "Component stopped: %v, shutting down", runErr)
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zapLogger.Warnf(ctx, "HTTP shutdown failed: %v", err)
		}
		cancel()
	}
	mgr.Shutdown()

	zapLogger.Infof(ctx, "Worker exited gracefully")
	return runErr
}
