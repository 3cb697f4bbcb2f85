package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
	repo "game_review/internal/repository"
	analysisuc "game_review/internal/usecase/analysis"
	"game_review/internal/usecase/report"
)

func main() {
	app := &cli.App{
		Name:      "analyze",
		Usage:     "classify every move of a PGN game with a UCI engine",
		ArgsUsage: "game.pgn",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: ".env", Usage: "env file with settings"},
			&cli.BoolFlag{Name: "no-cache", Usage: "do not read or write the analysis cache"},
			&cli.IntFlag{Name: "depth", Usage: "override ENGINE_DEPTH"},
			&cli.IntFlag{Name: "workers", Usage: "override ENGINE_WORKERS"},
			&cli.StringFlag{Name: "pdf", Usage: "also write a PDF report to this path"},
			&cli.BoolFlag{Name: "verbose", Usage: "log progress to stderr"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowAppHelp(c)
	}

	cfg, err := bootstrap.Setup(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("depth") {
		cfg.EngineDepth = c.Int("depth")
	}
	if c.IsSet("workers") {
		cfg.EngineWorkers = c.Int("workers")
	}
	if c.Bool("no-cache") {
		cfg.CacheDriver = "memory"
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	log := NewLogger(c.Bool("verbose"))
	defer log.Sync()

	record, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := repo.OpenCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cache.Close(context.Background())

	pool, err := repo.OpenOraclePool(cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	book := repo.NewBookDetector(cfg.BookPath, log)
	analyzer := analysisuc.NewAnalyzer(book, analysisuc.ThresholdsFromConfig(cfg), cfg.BookMaxPly, cfg.EndgameMaterial)
	uc := analysisuc.NewAnalysisUseCase(pool, cache, analyzer, cfg.EngineWorkers, log)

	result, err := uc.AnalyzeGame(ctx, string(record), func(done, total int, _ domain.MoveAnalysis) {
		log.Debugf("analyzed %d/%d plies", done, total)
	})
	if err != nil {
		return err
	}

	printResult(c.App.Writer, result)

	if path := c.String("pdf"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err = report.WritePDF(f, result); err != nil {
			return err
		}
	}
	return nil
}

func printResult(w io.Writer, result domain.Result) {
	fmt.Fprintf(w, "%s vs %s\n\n", result.White, result.Black)
	for _, m := range result.Moves {
		fmt.Fprintf(w, "%d. Played: %s, Best: %s, Eval: %s, Type: %s\n",
			m.Index, m.Played, m.Best, m.Evaluation, m.Category)
	}

	fmt.Fprintln(w)
	for _, player := range []string{result.White, result.Black} {
		fmt.Fprintf(w, "%s accuracy: %.2f\n", player, result.Accuracy[player])
		for _, c := range domain.Categories {
			if n := result.Stats[player][c]; n > 0 {
				fmt.Fprintf(w, "  %-12s %d\n", c, n)
			}
		}
	}
}

// NewLogger writes to stderr so stdout carries only the move list.
func NewLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}
