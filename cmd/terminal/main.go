package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/catalog"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/feedback"
	h "github.com/Annan-Ogero/nexusmarket-pro/internal/http"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/payment"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/publisher"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/session"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/suspend"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/tape"
)

type Config struct {
	HTTPPort              string
	CatalogDBPath         string
	CatalogMigrationsPath string
	RedisAddr             string
	KafkaBrokers          string
	MongoURI              string
	StoreID               string
	OperatorID            string
	OperatorName          string
	StationID             string
	TaxRate               float64
	RequestTimeout        time.Duration
	ShutdownTimeout       time.Duration
}

func loadConfig() *Config {
	taxRate, err := strconv.ParseFloat(getEnv("TAX_RATE", "0.08"), 64)
	if err != nil {
		log.Fatalf("Invalid TAX_RATE: %v", err)
	}

	return &Config{
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:          getEnv("KAFKA_BROKERS", ""),
		MongoURI:              getEnv("MONGO_URI", ""),
		StoreID:               getEnv("STORE_ID", "store-001"),
		OperatorID:            getEnv("OPERATOR_ID", "op-001"),
		OperatorName:          getEnv("OPERATOR_NAME", "Default Operator"),
		StationID:             getEnv("STATION_ID", "station-01"),
		TaxRate:               taxRate,
		RequestTimeout:        30 * time.Second,
		ShutdownTimeout:       10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("terminal starting...")
	cfg := loadConfig()

	// Catalog storage
	repo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Println("Catalog migrations completed")

	// Redis backs both the catalog cache and the transaction tape
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	catalogService := catalog.NewService(repo, catalog.NewRedisCache(redisClient))
	transactionTape := tape.NewRedisTape(redisClient)

	// Completed sales are published for the archiver when brokers are
	// configured; the register works fine without them.
	var notifier session.SaleNotifier
	if cfg.KafkaBrokers != "" {
		pub := publisher.New(cfg.KafkaBrokers)
		defer pub.Close()
		notifier = pub
	}

	auth := payment.NewBreakerAuthorizer(
		payment.NewTerminalAuthorizer(payment.DefaultSettleDelay, payment.RandomStatus{}),
	)

	sale := session.New(session.Config{
		StoreID:      cfg.StoreID,
		OperatorID:   cfg.OperatorID,
		OperatorName: cfg.OperatorName,
		StationID:    cfg.StationID,
		TaxRate:      cfg.TaxRate,
	}, transactionTape, auth, feedback.NewConsoleBeeper(os.Stdout), notifier)
	defer sale.Close()

	sale.RecordEvent(domain.AuditLogin, "Operator "+cfg.OperatorID+" signed on", 0)

	// Parked sales survive process restarts only when Mongo is configured.
	var parkStore suspend.Store
	if cfg.MongoURI != "" {
		db, err := suspend.ConnectMongoDB(context.Background(), cfg.MongoURI, "nexus_pos")
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		parkStore = suspend.NewMongoStore(db)
	}

	catalogHandler := h.NewCatalogHandler(catalogService, cfg.RequestTimeout)
	saleHandler := h.NewSaleHandler(sale, catalogService, parkStore, cfg.RequestTimeout)
	tapeHandler := h.NewTapeHandler(transactionTape, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.OperatorMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Post("/", catalogHandler.Upsert)
			r.Get("/{product_id}", catalogHandler.Get)
		})
		r.Route("/sale", func(r chi.Router) {
			r.Get("/", saleHandler.GetSale)
			r.Post("/items", saleHandler.AddItem)
			r.Delete("/items/{product_id}", saleHandler.RemoveItem)
			r.Put("/payment", saleHandler.SetPayment)
			r.Post("/finalize", saleHandler.Finalize)
			r.Post("/reset", saleHandler.Reset)
			r.Post("/suspend", saleHandler.Suspend)
			r.Post("/resume/{id}", saleHandler.ResumeParked)
			r.Get("/suspended", saleHandler.ListParked)
		})
		r.Get("/transactions", tapeHandler.List)
		r.Post("/drawer/open", saleHandler.OpenDrawer)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "terminal"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Terminal listening on :%s (station %s)", cfg.HTTPPort, cfg.StationID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down terminal...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("terminal exited")
}
