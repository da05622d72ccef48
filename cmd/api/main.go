package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lojinha/internal/cache"
	"lojinha/internal/config"
	"lojinha/internal/database"
	"lojinha/internal/infrastructure/notification"
	"lojinha/internal/infrastructure/payment"
	"lojinha/internal/metrics"
	"lojinha/internal/repo"
	"lojinha/internal/server"
	"lojinha/internal/service"
	"lojinha/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	principalRepo := repo.NewPrincipalRepo(db)
	customerRepo := repo.NewCustomerRepo(db)
	addressRepo := repo.NewAddressRepo(db)
	productRepo := repo.NewProductRepo(db)
	cartRepo := repo.NewCartRepo(db)
	orderRepo := repo.NewOrderRepo(db)
	paymentRepo := repo.NewPaymentRepo(db)
	notificationRepo := repo.NewNotificationRepo(db)

	// Providers are chosen here, once, from configuration.
	var paymentGateway payment.Gateway
	switch cfg.PaymentProvider {
	case "simulated":
		paymentGateway = payment.NewSimulatedGateway(cfg.PaymentDelay)
	default:
		logger.Fatal("unknown payment provider", zap.String("provider", cfg.PaymentProvider))
	}

	var notificationGateway notification.Gateway
	if cfg.KafkaBrokers != "" {
		notificationGateway = notification.NewKafkaGateway(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("lifecycle events go to kafka", zap.String("topic", cfg.KafkaTopic))
	} else {
		notificationGateway = notification.NewLogGateway(logger)
	}

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		cartCache = cache.NewRedisCartCache(cfg.RedisAddr, 5*time.Minute)
		logger.Info("cart cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	m := metrics.New()

	identityService := service.NewIdentityService(principalRepo, customerRepo)
	cartService := service.NewCartService(cartRepo, productRepo, cartCache, logger)
	addressService := service.NewAddressService(addressRepo)
	orderService := service.NewOrderService(db, orderRepo, notificationRepo, notificationGateway, logger)
	checkoutService := service.NewCheckoutService(
		db, customerRepo, addressRepo, cartRepo, cartCache, orderRepo, paymentRepo,
		paymentGateway, notificationRepo, notificationGateway, m, logger, cfg.PaymentTimeout,
	)

	router := server.NewRouter(db, server.Handlers{
		Checkout: server.NewCheckoutHandler(identityService, checkoutService, addressService, logger),
		Cart:     server.NewCartHandler(identityService, cartService, logger),
		Order:    server.NewOrderHandler(identityService, orderService, logger),
		Address:  server.NewAddressHandler(identityService, addressService, logger),
	}, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	maintenance := worker.NewMaintenanceWorker(
		db, orderRepo, paymentRepo, notificationRepo, orderService,
		cfg.MaintenanceEvery, cfg.NotificationRetention, logger,
	)
	go maintenance.Run(workerCtx)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
