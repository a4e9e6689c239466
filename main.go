package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brista-coffee/analytics"
	"brista-coffee/catalog"
	"brista-coffee/config"
	"brista-coffee/controllers"
	"brista-coffee/database"
	"brista-coffee/events"
	"brista-coffee/inventory"
	"brista-coffee/kitchen"
	"brista-coffee/logger"
	"brista-coffee/notify"
	"brista-coffee/orders"
	"brista-coffee/quota"
	"brista-coffee/routes"
	"brista-coffee/tasks"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logr := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.SecretKey == "" {
		logr.Error("SECRET_KEY is required to verify staff tokens")
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Error("Failed to open stores", "error", err)
		os.Exit(1)
	}
	defer closeStores()

	counters, closeCounters, err := openCounters(ctx, cfg, stores)
	if err != nil {
		logr.Error("Failed to open quota counter", "error", err)
		os.Exit(1)
	}
	defer closeCounters()

	publisher, closePublisher := openPublisher(cfg, logr)
	defer closePublisher()

	var mailer notify.Sender = notify.NewLogSender(logr)
	if cfg.ResendAPIKey != "" {
		mailer = notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	}

	runner := tasks.NewRunner(logr)
	defer runner.Stop()

	ledger := inventory.NewLedger(stores.Inventory, logr)
	if _, err := ledger.SeedIfEmpty(ctx); err != nil {
		logr.Warn("Inventory seed failed", "error", err)
	}
	menu := catalog.New(stores.Menu, logr)
	gate := quota.NewGate(counters, cfg.DailyEmailLimit, loc, logr)
	engine := orders.NewEngine(orders.Deps{
		Orders:      stores.Orders,
		Recipes:     menu,
		Ledger:      ledger,
		Quota:       gate,
		Mailer:      mailer,
		Events:      publisher,
		Runner:      runner,
		Log:         logr,
		BaseURL:     cfg.BaseURL,
		RatingDelay: cfg.RatingEmailDelay,
	})
	aggregator := analytics.NewAggregator(stores.Orders, loc, analytics.VipPolicy{
		MinOrders: cfg.VipMinOrders,
		MinSpend:  cfg.VipMinSpend,
	})

	hub := kitchen.NewHub(logr)
	go hub.Run(ctx)
	go kitchen.NewFeed(stores.Orders, hub, logr).Run(ctx)

	ctl := &controllers.Controller{
		Orders:    engine,
		Catalog:   menu,
		Ledger:    ledger,
		Analytics: aggregator,
		Quota:     gate,
		Location:  loc,
		Log:       logr.With("component", "http"),
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	guards := routes.NewGuards(ctx, cfg.SecretKey, cfg.OrderRateLimit)
	router.GET("/health", controllers.Health())
	routes.MenuRoutes(router, ctl, guards)
	routes.OrderRoutes(router, ctl, guards)
	routes.InventoryRoutes(router, ctl, guards)
	routes.AnalyticsRoutes(router, ctl, guards)
	routes.KitchenRoutes(router, hub, guards)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logr.Info("Server listening", "port", cfg.Port, "store", cfg.StoreBackend, "quota", cfg.QuotaBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("Server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("Graceful shutdown failed", "error", err)
	}
}

func openStores(ctx context.Context, cfg config.Config, logr *slog.Logger) (database.Stores, func(), error) {
	if cfg.StoreBackend == "memory" {
		logr.Warn("Using in-memory stores; data is lost on restart")
		return database.NewMemoryStores(), func() {}, nil
	}
	client, err := database.Connect(ctx, cfg.MongoURL)
	if err != nil {
		return database.Stores{}, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logr.Warn("Index creation failed", "error", err)
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(disconnectCtx)
	}
	return database.NewMongoStores(db, logr), closeFn, nil
}

func openCounters(ctx context.Context, cfg config.Config, stores database.Stores) (database.CounterStore, func(), error) {
	switch cfg.QuotaBackend {
	case "redis":
		counter := quota.NewRedisCounter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := counter.Ping(ctx); err != nil {
			counter.Close()
			return nil, nil, err
		}
		return counter, func() { counter.Close() }, nil
	case "memory":
		return database.NewMemoryStores().Counters, func() {}, nil
	default:
		return stores.Counters, func() {}, nil
	}
}

func openPublisher(cfg config.Config, logr *slog.Logger) (events.Publisher, func()) {
	if cfg.RabbitURL == "" {
		return events.NopPublisher{}, func() {}
	}
	publisher, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitExchange, logr)
	if err != nil {
		logr.Warn("Event publishing disabled", "error", err)
		return events.NopPublisher{}, func() {}
	}
	return publisher, func() { publisher.Close() }
}
