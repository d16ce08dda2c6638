package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/promo"
	"github.com/fekuna/omnipos-storefront-service/internal/server"
	"github.com/fekuna/omnipos-storefront-service/migrations"
	"github.com/fekuna/omnipos-storefront-service/pkg/broker"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/middleware"
	"github.com/fekuna/omnipos-storefront-service/pkg/search"

	cartH "github.com/fekuna/omnipos-storefront-service/internal/cart/handler"
	cartRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/usecase"

	catH "github.com/fekuna/omnipos-storefront-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-storefront-service/internal/category/usecase"

	invH "github.com/fekuna/omnipos-storefront-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-storefront-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-storefront-service/internal/inventory/usecase"

	orderH "github.com/fekuna/omnipos-storefront-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-storefront-service/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-storefront-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-storefront-service/internal/product/usecase"

	reportH "github.com/fekuna/omnipos-storefront-service/internal/report/handler"
	reportRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/report/repository"
	reportSchedulerPkg "github.com/fekuna/omnipos-storefront-service/internal/report/scheduler"
	reportUCPkg "github.com/fekuna/omnipos-storefront-service/internal/report/usecase"

	userH "github.com/fekuna/omnipos-storefront-service/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-storefront-service/internal/user/usecase"

	whH "github.com/fekuna/omnipos-storefront-service/internal/warehouse/handler"
	whRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/warehouse/repository"
	whUCPkg "github.com/fekuna/omnipos-storefront-service/internal/warehouse/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	i18n.Init()

	// 2. Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Database
	pgConfig := &postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	}
	db, err := postgres.NewPostgres(pgConfig)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Server.AutoMigrate {
		if err := migrations.Up(pgConfig.URL()); err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
		appLogger.Info("Database schema is up to date")
	}

	// 4. Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Kafka
	kafkaConfig := &broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}
	kafkaConsumer := broker.NewConsumer(kafkaConfig)
	defer kafkaConsumer.Close()
	kafkaProducer := broker.NewProducer(kafkaConfig)
	defer kafkaProducer.Close()
	appLogger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Elasticsearch, optional
	var searchIndex product.SearchIndex
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Elasticsearch unavailable, search falls back to the database", zap.Error(err))
	} else {
		searchIndex = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	pricing, err := cart.ParsePricing(cfg.Cart.TaxRate, cfg.Cart.ShippingFlatFee, cfg.Cart.FreeShippingThreshold)
	if err != nil {
		appLogger.Fatal("Invalid cart pricing", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)

	// 7. Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	whRepo := whRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	userRepo := userRepoPkg.NewPGRepository(db)
	reportRepo := reportRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewCartRepository(redisClient, cfg.Cart.TTL)

	// 8. UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, redisClient, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, searchIndex, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, redisClient, appLogger)
	whUC := whUCPkg.NewWarehouseUseCase(whRepo, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodRepo, promo.DefaultTable(), pricing, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, cartUC, redisClient, kafkaProducer, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, tokens, cartUC, appLogger)
	reportUC := reportUCPkg.NewReportUseCase(reportRepo, redisClient, appLogger)

	// 9. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		invListener.Start(ctx)
	}()

	scheduler, err := reportSchedulerPkg.NewScheduler(cfg.Report.Schedule, reportUC, invUC, appLogger)
	if err != nil {
		appLogger.Fatal("Invalid report schedule", zap.Error(err), zap.String("schedule", cfg.Report.Schedule))
	}
	scheduler.Start()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, nil)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	// 10. HTTP
	metrics := middleware.NewMetrics("storefront")
	metrics.Register(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := server.NewRouter(server.Deps{
		Handlers: server.Handlers{
			User:      userH.NewUserHandler(userUC, appLogger),
			Category:  catH.NewCategoryHandler(catUC, appLogger),
			Product:   prodH.NewProductHandler(prodUC, appLogger),
			Cart:      cartH.NewCartHandler(cartUC, appLogger),
			Order:     orderH.NewOrderHandler(orderUC, appLogger),
			Inventory: invH.NewInventoryHandler(invUC, appLogger),
			Warehouse: whH.NewWarehouseHandler(whUC, appLogger),
			Report:    reportH.NewReportHandler(reportUC, appLogger),
		},
		Auth:    auth.NewMiddleware(tokens, cfg.Server.DefaultMerchantID),
		Metrics: metrics,
		Limiter: limiter,
		Logger:  appLogger,
		Health: map[string]server.HealthCheck{
			"postgres": db.PingContext,
			"redis":    redisClient.Ping,
		},
	})
	if err != nil {
		appLogger.Fatal("Could not build router", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 11. gRPC health
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.ContextInterceptor(tokens, cfg.Server.DefaultMerchantID)),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	scheduler.Stop(shutdownCtx)

	cancel()
	<-listenerDone
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
