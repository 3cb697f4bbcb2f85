package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"game_review/internal/bootstrap"
	repo "game_review/internal/repository"
	"game_review/microservices/oraclerpc"
	"game_review/microservices/usecase"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}
	// the service itself always runs local engines
	cfg.OracleAddr = ""

	lis, err := net.Listen("tcp", ":"+cfg.OraclePort)
	if err != nil {
		logger.Fatalw("cant listen port", "port", cfg.OraclePort, "error", err)
	}

	pool, err := repo.OpenOraclePool(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to set up engine pool", "error", err)
	}
	defer pool.Close()

	server := grpc.NewServer()
	oraclerpc.RegisterOracleServer(server, usecase.NewOracleUseCase(pool, cfg.EngineDepth, logger))

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		logger.Info("Received shutdown signal")
		server.GracefulStop()
	}()

	logger.Infow("starting oracle server", "port", cfg.OraclePort, "engines", cfg.EngineWorkers, "depth", cfg.EngineDepth)
	if err := server.Serve(lis); err != nil {
		logger.Errorw("oracle server stopped", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	return logger.Sugar()
}
