package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-shelf-service/config"
	"github.com/fekuna/omnipos-shelf-service/internal/observability"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-shelf-service/internal/resolver"
	"github.com/fekuna/omnipos-shelf-service/internal/server"

	catH "github.com/fekuna/omnipos-shelf-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-shelf-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-shelf-service/internal/category/usecase"

	locH "github.com/fekuna/omnipos-shelf-service/internal/location/handler"
	locListenerPkg "github.com/fekuna/omnipos-shelf-service/internal/location/listener"
	locRepoPkg "github.com/fekuna/omnipos-shelf-service/internal/location/repository"
	locUCPkg "github.com/fekuna/omnipos-shelf-service/internal/location/usecase"

	prodH "github.com/fekuna/omnipos-shelf-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-shelf-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-shelf-service/internal/product/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		appLogger.Fatal("Could not initialize tracing", zap.Error(err))
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			appLogger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// 4. Connect to Database
	db, err := postgres.NewPostgres(ctx, &postgres.Config{
		DSN:             cfg.Postgres.DSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	metrics := observability.NewMetrics()

	// 5. Initialize Repositories
	locRepo := locRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)

	// 6. Initialize UseCases
	res := resolver.New(resolver.TieBreak(cfg.Resolver.TieBreak))
	locUC := locUCPkg.NewLocationUseCase(locRepo, res, metrics, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	appLogger.Info("Resolver configured", zap.String("tie_break", string(res.TieBreak())))

	// 7. Initialize Handlers
	locHandler := locH.NewLocationHandler(locUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	catHandler := catH.NewCategoryHandler(catUC, appLogger)

	router := server.NewRouter(server.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		ImportRateLimit: cfg.Server.ImportRateLimit,
		RequestTimeout:  cfg.Server.WriteTimeout,
		Metrics:         metrics,
		DB:              db,
		Logger:          appLogger,
	}, locHandler, prodHandler, catHandler)

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	healthServer := health.NewServer()
	grpcServer := server.NewGRPCServer(healthServer)

	// 8. Run servers and listeners until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ServeHTTP(gctx, httpServer, cfg.Server.ShutdownTimeout, appLogger)
	})
	g.Go(func() error {
		return server.ServeGRPC(gctx, grpcServer, cfg.Server.GRPCPort, appLogger)
	})
	g.Go(func() error {
		server.WatchHealth(gctx, healthServer, db, 10*time.Second, appLogger)
		return nil
	})

	if cfg.Kafka.Enabled {
		reader := locListenerPkg.NewKafkaReader(locListenerPkg.ReaderConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		scanListener := locListenerPkg.NewScanListener(reader, locUC, appLogger)
		appLogger.Info("Kafka scan listener enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
		g.Go(func() error {
			return scanListener.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		appLogger.Error("Server exited with error", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}
