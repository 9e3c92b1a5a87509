package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cryptovol/backend/internal/db"
	"github.com/cryptovol/backend/internal/handlers"
	"github.com/cryptovol/backend/internal/logger"
	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
	"github.com/cryptovol/backend/internal/services"
	"github.com/cryptovol/backend/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync(log)

	// Database connection
	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	log.Info("database connection established")

	modelsDir := getEnv("MODELS_DIR", "/app/ml_models")

	// Repositories
	assetRepo := repositories.NewAssetRepository(database)
	priceRepo := repositories.NewPriceObservationRepository(database)
	registryRepo := repositories.NewModelRegistryRepository(database)
	simulationRepo := repositories.NewSimulationRepository(database)
	portfolioRepo := repositories.NewPortfolioRepository(database)

	// External collaborators
	feed := services.NewCoinGeckoFeed(os.Getenv("PRICE_FEED_URL"))
	forecaster := services.NewHTTPForecaster(getEnv("FORECASTER_URL", "http://localhost:8500"))

	// Services
	syncService := services.NewMarketSyncService(assetRepo, priceRepo, feed, logger.Component(log, "sync"))
	registryService := services.NewRegistryService(assetRepo, registryRepo, modelsDir, logger.Component(log, "registry"))
	portfolioService := services.NewPortfolioService(portfolioRepo, logger.Component(log, "portfolio"))

	// Worker pool and job pipeline. The simulation service and the
	// inference executor reference each other through the pool, so the
	// executor is attached after construction.
	queueSize := getEnvInt("WORKER_QUEUE_SIZE", 64)
	workerCount := getEnvInt("WORKER_COUNT", 4)

	dispatcher := &executorDispatch{}
	pool := worker.NewPool(dispatcher, queueSize, logger.Component(log, "worker"))
	simulationService := services.NewSimulationService(simulationRepo, pool, logger.Component(log, "simulation"))
	dispatcher.exec = services.NewInferenceService(
		simulationService, registryRepo, priceRepo, forecaster, modelsDir,
		logger.Component(log, "inference"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Workers are not tied to the signal context: on shutdown the pool
	// drains its queue via Close and Wait instead of dropping jobs.
	pool.Start(context.Background(), workerCount)

	// Boot-time reconciliation, then scheduled maintenance
	if _, err := registryService.Reconcile(ctx); err != nil {
		log.Warn("startup model reconciliation failed", zap.Error(err))
	}
	go func() {
		if err := syncService.SyncAll(ctx); err != nil {
			log.Warn("startup market sync failed", zap.Error(err))
		}
	}()

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(1).Day().At("00:10").Do(func() {
		if err := syncService.SyncAll(context.Background()); err != nil {
			log.Warn("scheduled market sync failed", zap.Error(err))
		}
	})
	scheduler.Every(1).Day().At("00:30").Do(func() {
		if _, err := registryService.Reconcile(context.Background()); err != nil {
			log.Warn("scheduled model reconciliation failed", zap.Error(err))
		}
	})
	scheduler.StartAsync()

	// Handlers
	simulationHandler := handlers.NewSimulationHandler(simulationService)
	marketHandler := handlers.NewMarketHandler(syncService, registryService, assetRepo, logger.Component(log, "http"))
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.Health(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Write([]byte(`{"status":"healthy","service":"cryptovol-backend"}`))
	})

	api := router.PathPrefix("/api/dashboard").Subrouter()
	api.HandleFunc("/predict", simulationHandler.HandlePredict)
	api.HandleFunc("/simulations", simulationHandler.HandleSimulations)
	api.HandleFunc("/simulations/{id}", simulationHandler.HandleSimulation)
	api.HandleFunc("/sync-data", marketHandler.HandleSyncData)
	api.HandleFunc("/cryptos", marketHandler.HandleCryptos)
	api.HandleFunc("/active-models", marketHandler.HandleActiveModels)
	api.HandleFunc("/reload-models", marketHandler.HandleReloadModels)
	api.HandleFunc("/portfolios", portfolioHandler.HandlePortfolios)
	api.HandleFunc("/portfolios/{id}", portfolioHandler.HandlePortfolio)

	port := getEnv("SERVER_PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: corsMiddleware(router),
	}

	go func() {
		log.Info("server starting", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
	scheduler.Stop()
	pool.Close()
	pool.Wait()
	log.Info("shutdown complete")
}

// executorDispatch defers executor wiring until after the simulation
// service exists; the pool only sees this thin indirection.
type executorDispatch struct {
	exec services.InferenceService
}

func (d *executorDispatch) Execute(ctx context.Context, jobID string, modelType models.ModelType, assetID int) error {
	return d.exec.Execute(ctx, jobID, modelType, assetID)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
