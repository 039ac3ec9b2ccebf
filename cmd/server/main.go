package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/inventory-records/internal/adapter/event"
	"github.com/rl1809/inventory-records/internal/adapter/handler"
	"github.com/rl1809/inventory-records/internal/adapter/storage"
	"github.com/rl1809/inventory-records/internal/config"
	"github.com/rl1809/inventory-records/internal/core/service"
	"github.com/rl1809/inventory-records/internal/logger"
	"github.com/rl1809/inventory-records/internal/migration"
	"github.com/rl1809/inventory-records/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("load config", zap.Error(err))
	}
	if err := logger.Init(cfg.ServiceName, cfg.LogLevel); err != nil {
		logger.L().Fatal("init logger", zap.Error(err))
	}
	log := logger.L()
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record storage
	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open record store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}
	log.Info("record store ready", zap.String("driver", cfg.StoreDriver))

	opts := []service.Option{service.WithLogger(log)}

	// Redis: list cache + draft sessions
	var drafts port.DraftRepository = storage.NewMemoryDraftAdapter()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 20,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		redisAdapter := storage.NewRedisAdapter(rdb, cfg.ListCacheTTL, cfg.DraftTTL)
		opts = append(opts, service.WithCache(redisAdapter))
		drafts = redisAdapter
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Kafka: record events
	var publisher port.EventPublisher = event.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("publishing record events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}
	opts = append(opts, service.WithEvents(publisher))

	// Services
	recordService := service.NewRecordService(repo, opts...)
	formService := service.NewFormService(recordService)
	sessionService := service.NewSessionService(formService, drafts, log)

	// gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterRecordServiceServer(grpcServer, handler.NewGRPCHandler(recordService, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP server
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	handler.NewHTTPHandler(recordService, sessionService, log).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	if err := publisher.Close(); err != nil {
		log.Warn("close event publisher", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}
	log.Info("connections closed")
}

// openRepository returns the configured record repository. db is nil for the
// memory driver.
func openRepository(ctx context.Context, cfg *config.Config) (port.RecordRepository, *sql.DB, error) {
	var (
		db   *sql.DB
		repo port.RecordRepository
		err  error
	)

	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err = storage.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		repo = storage.NewMySQLAdapter(db)
	case config.DriverPostgres:
		db, err = storage.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		repo = storage.NewPostgresAdapter(db)
	default:
		return storage.NewMemoryAdapter(), nil, nil
	}

	m := &migration.Migrate{DB: db, Dialect: cfg.StoreDriver}
	if err := m.MigrateUp(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}
