package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"game_review/internal/bootstrap"
	analysisDelivery "game_review/internal/delivery/analysis"
	ownMiddleware "game_review/internal/middleware"
	repo "game_review/internal/repository"
	analysisuc "game_review/internal/usecase/analysis"
)

type mainDeliveryHandler struct {
	analysis *analysisDelivery.AnalysisHandler
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	cache, err := repo.OpenCacheStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to open analysis cache", "driver", cfg.CacheDriver, "error", err)
	}
	defer cache.Close(context.Background())

	pool, err := repo.OpenOraclePool(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to set up oracle pool", "error", err)
	}
	defer pool.Close()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, pool, cache)
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.analysis.Routes(r)
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	pool *repo.OraclePool,
	cache repo.CacheStore,
) *mainDeliveryHandler {
	book := repo.NewBookDetector(cfg.BookPath, log)
	analyzer := analysisuc.NewAnalyzer(book, analysisuc.ThresholdsFromConfig(&cfg), cfg.BookMaxPly, cfg.EndgameMaterial)
	analysisUC := analysisuc.NewAnalysisUseCase(pool, cache, analyzer, cfg.EngineWorkers, log)

	return &mainDeliveryHandler{
		analysis: analysisDelivery.NewAnalysisHandler(cfg, log, analysisUC),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
