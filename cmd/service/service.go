package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "supplement-iq/docs" // 引入 swag 產出的 docs
	"supplement-iq/internal/autocomplete"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/config"
	"supplement-iq/internal/database"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/mq"
	"supplement-iq/internal/router"
	"supplement-iq/internal/service"
	"supplement-iq/internal/storage"
	"supplement-iq/internal/store"
	"supplement-iq/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	rollbackFn      = database.RollbackAll
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	newUploader     = openUploader
	newBroker       = openBroker
	exitFunc        = os.Exit
)

// openUploader 連線 MinIO 並確認 bucket 存在
func openUploader(ctx context.Context, cfg config.MinioConfig) (*storage.Storage, error) {
	backend, err := storage.NewMinioBackend(cfg)
	if err != nil {
		return nil, err
	}
	st := storage.NewStorage(backend, storage.PublicURL(cfg))
	if err := st.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func openBroker(cfg config.RabbitMQConfig) (*mq.MQ, error) {
	client, err := mq.NewRabbitMQClient(cfg)
	if err != nil {
		return nil, err
	}
	return mq.New(client), nil
}

// rebuildIndex 以資料庫中的商品名稱重建自動完成索引
func rebuildIndex(ctx context.Context, db database.Querier, idx *autocomplete.Index) error {
	names, err := store.ListProductNames(ctx, db)
	if err != nil {
		return err
	}
	entries := make([]autocomplete.Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, autocomplete.Entry{ProductID: n.ProductID, Name: n.Name, BrandName: n.BrandName})
	}
	idx.Rebuild(entries)
	return nil
}

func run(cfg config.Config) error {
	log := logging.New(cfg.Env, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %w", err)
	}
	defer db.Close()

	redis, err := newRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %w", err)
	}
	defer redis.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %w", err)
	}

	wp := newWorkerPool(cfg.WorkerCount, log)
	var broker *mq.MQ
	defer func() {
		// 佇列中的工作可能仍在發送事件，須先於 broker 關閉
		wp.Stop()
		if broker != nil {
			if err := broker.Close(); err != nil {
				log.Warn(context.Background(), "close broker", "error", err)
			}
		}
	}()

	pc := cache.NewProductCache(redis, cfg.CacheLocation, log)
	guard := cache.NewAdminGuard(redis, cfg.CacheLocation, cfg.AdminDailyLimit, cfg.AdminCooldown, log)
	index := autocomplete.New()
	if err := rebuildIndex(ctx, db, index); err != nil {
		return fmt.Errorf("建立自動完成索引失敗: %w", err)
	}
	log.Info(ctx, "autocomplete index ready", "products", index.Len())

	var uploader *storage.Storage
	if cfg.Minio.Enabled() {
		uploader, err = newUploader(ctx, cfg.Minio)
		if err != nil {
			return fmt.Errorf("MinIO 連線失敗: %w", err)
		}
	} else {
		log.Warn(ctx, "MINIO_ENDPOINT not set, image uploads disabled")
	}

	if cfg.RabbitMQ.Enabled() {
		broker, err = newBroker(cfg.RabbitMQ)
		if err != nil {
			return fmt.Errorf("RabbitMQ 連線失敗: %w", err)
		}
		go func() {
			err := mq.ConsumeSubmissionReviewed(ctx, broker, cfg.RabbitMQ.Queue, log,
				func(ctx context.Context, ev mq.SubmissionReviewed) error {
					log.Info(ctx, "moderation event",
						"submission_id", ev.SubmissionID, "status", ev.Status, "reviewed_by", ev.ReviewedBy)
					return nil
				})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "event consumer stopped", "error", err)
			}
		}()
	}
	events := mq.NewPublisher(broker, cfg.RabbitMQ.Queue, log)

	users := service.NewUserService(db, pc, cfg.JWTSecret, log)
	submissions := service.NewSubmissionService(db, pc, index, events, wp, log)
	if uploader != nil {
		submissions.UseImages(uploader)
	}
	reviews := service.NewReviewService(db, pc, log)

	refresh := worker.NewDaily("catalog-refresh", cfg.CacheLocation, log, func(ctx context.Context) error {
		if err := pc.Invalidate(ctx, cache.NamespaceProducts, cache.NamespaceTop); err != nil {
			return err
		}
		return rebuildIndex(ctx, db, index)
	})
	go refresh.Run(ctx)
	guardReset := worker.NewDaily("admin-guard-reset", cfg.CacheLocation, log, func(context.Context) error {
		guard.Reset()
		return nil
	})
	go guardReset.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	router.Setup(e, router.Deps{
		DB:           db,
		Redis:        redis,
		Cache:        pc,
		Guard:        guard,
		Index:        index,
		Users:        users,
		Submissions:  submissions,
		Reviews:      reviews,
		Uploader:     uploader,
		Log:          log,
		JWTSecret:    cfg.JWTSecret,
		AppURL:       cfg.AppURL,
		RateLimitRPS: cfg.RateLimitRPS,
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(sctx); err != nil {
			log.Warn(sctx, "shutdown", "error", err)
		}
	}()

	log.Info(ctx, "server starting", "addr", cfg.Addr(), "env", cfg.Env)
	if err := startServer(e, cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("伺服器啟動失敗: %w", err)
	}
	return nil
}
