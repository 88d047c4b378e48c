package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fashion_sales/api"
	"fashion_sales/internal/config"
	"fashion_sales/internal/metrics"
	"fashion_sales/internal/sales"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	storage, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	if err := storage.SetupTables(ctx); err != nil {
		return fmt.Errorf("setup tables: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := []sales.Option{sales.WithMetrics(metrics.New(reg))}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("receipt cache enabled", zap.String("redis_addr", cfg.RedisAddr))
		opts = append(opts, sales.WithReceiptCache(sales.NewRedisReceiptCache(rdb, cfg.ReceiptCacheTTL)))
	}

	salesService := sales.NewService(storage, logger, opts...)

	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, api.Dependencies{
		Service:  salesService,
		Logger:   logger,
		SalesTax: cfg.SalesTax,
		Gatherer: reg,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr), zap.String("store", cfg.StoreDriver))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error trying to start server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sales.Storage, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return sales.NewLocalStorage(), func() {}, nil

	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		logger.Info("connected to mysql")
		return sales.NewMySQLStorage(db), func() { db.Close() }, nil

	default:
		s, err := sales.NewBoltStorage(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt database: %w", err)
		}
		logger.Info("opened bolt database", zap.String("path", cfg.BoltPath))
		return s, func() { s.Close() }, nil
	}
}
