// Command chesstoc builds a graphical table of contents for a PGN game
// collection: every game is evaluated move by move with a UCI engine and
// shown as its final position overlaid with the evaluation curve.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chesstoc/chesstoc/internal/analysis"
	"github.com/chesstoc/chesstoc/internal/config"
	"github.com/chesstoc/chesstoc/internal/health"
	"github.com/chesstoc/chesstoc/internal/logging"
	"github.com/chesstoc/chesstoc/internal/metrics"
	"github.com/chesstoc/chesstoc/internal/opening"
	"github.com/chesstoc/chesstoc/internal/pgn"
	httpserver "github.com/chesstoc/chesstoc/internal/server"
	"github.com/chesstoc/chesstoc/internal/thumbnail"
	"github.com/chesstoc/chesstoc/internal/toc"
	"github.com/chesstoc/chesstoc/internal/uci"
)

var (
	// Version information injected at build time.
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type options struct {
	configPath  string
	enginePath  string
	timePerMove float64
	threads     int
	columns     int
	maxGames    int
	htmlPath    string
	title       string
	dryRun      bool
	metricsAddr string
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "chesstoc <pgn-file>",
		Short:   "Build a graphical table of contents for a PGN collection",
		Long:    "chesstoc evaluates every game in a PGN file with a UCI engine and renders an HTML page of final-position thumbnails overlaid with evaluation curves.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, args[0], opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Config file path (default: $CHESSTOC_CONFIG, ./chesstoc.json, ~/.chesstoc/config.json)")
	flags.StringVarP(&opts.enginePath, "engine", "e", "", "UCI engine binary")
	flags.Float64VarP(&opts.timePerMove, "time", "t", 0, "Engine thinking time per full move, in seconds")
	flags.IntVar(&opts.threads, "threads", 0, "Engine thread count")
	flags.IntVar(&opts.columns, "columns", 0, "Games per row on the HTML page")
	flags.IntVarP(&opts.maxGames, "maxgames", "m", 0, "Stop after this many games (0 = no limit)")
	flags.StringVar(&opts.htmlPath, "html", "", "Write the HTML page and its SVG assets to this path")
	flags.StringVar(&opts.title, "title", "", "Page title")
	flags.BoolVar(&opts.dryRun, "dryrun", false, "Skip engine analysis; render board-only thumbnails")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /health, /ready and /metrics on this address during the run")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, pgnPath string, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return err
	}

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   cfg.Logging.Level,
		Format:  logging.LogFormat(cfg.Logging.Format),
		Service: "chesstoc",
		Version: Version,
		Prefix:  cfg.Logging.Prefix,
	})
	logger.Info("Starting chesstoc version %s", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	var prom *metrics.PrometheusCollector
	checker := health.NewChecker(logger, Version)

	if cfg.Metrics.Addr != "" {
		prom = metrics.NewPrometheusCollector()
		srv := httpserver.NewHTTPServer(cfg.Metrics.Addr, logger, checker)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				logger.Error("Failed to stop metrics server", "error", err)
			}
		}()
	}

	input, err := os.Open(pgnPath)
	if err != nil {
		logger.Error("Failed to open input file", "path", pgnPath, "error", err)
		return err
	}
	defer input.Close()

	var engine *uci.Engine
	if !opts.dryRun {
		engine = uci.NewEngine(&cfg.Engine, logger)
		if err := engine.Start(ctx); err != nil {
			logger.Error("Failed to start engine", "binary", cfg.Engine.BinaryPath, "error", err)
			return err
		}
		defer func() {
			if err := engine.Stop(); err != nil {
				logger.Error("Failed to stop engine", "error", err)
			}
			if prom != nil {
				prom.SetEngineUp(false)
			}
		}()

		if prom != nil {
			prom.SetEngineUp(true)
		}
		checker.RegisterCheck("engine", engine.Ping)
		logger.Info("Engine ready", "binary", cfg.Engine.BinaryPath,
			"threads", cfg.Engine.Threads, "hashMB", cfg.Engine.HashMB)
	}

	page := toc.NewPage(cfg.Output.Title, cfg.Output.Columns)
	analyzer := analysis.NewAnalyzer(engine, logger, collector, prom)
	timePerMove := time.Duration(cfg.Engine.MoveTimeSecs * float64(time.Second))

	if err := processGames(ctx, pgn.NewLoader(input, logger), page, analyzer, collector, prom, logger, opts, timePerMove); err != nil {
		return err
	}

	if cfg.Output.HTMLPath != "" {
		if err := page.WriteFile(cfg.Output.HTMLPath); err != nil {
			logger.Error("Failed to write output", "path", cfg.Output.HTMLPath, "error", err)
			return err
		}
		logger.Info("Wrote table of contents", "path", cfg.Output.HTMLPath, "games", len(page.Entries))
	}

	logger.WithFields(collector.Summary()).Info("Run complete")
	return nil
}

// loadConfig resolves the layered configuration: defaults, then the config
// file, then environment, then any flags the user set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine.BinaryPath = opts.enginePath
	}
	if flags.Changed("time") {
		cfg.Engine.MoveTimeSecs = opts.timePerMove
	}
	if flags.Changed("threads") {
		cfg.Engine.Threads = opts.threads
	}
	if flags.Changed("columns") {
		cfg.Output.Columns = opts.columns
	}
	if flags.Changed("html") {
		cfg.Output.HTMLPath = opts.htmlPath
	}
	if flags.Changed("title") {
		cfg.Output.Title = opts.title
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}

	return cfg, nil
}

func processGames(ctx context.Context, loader *pgn.Loader, page *toc.Page, analyzer *analysis.Analyzer, collector *metrics.Collector, prom *metrics.PrometheusCollector, logger logging.ContextLogger, opts *options, timePerMove time.Duration) error {
	for {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run interrupted", "games", len(page.Entries))
			return err
		}
		if opts.maxGames > 0 && len(page.Entries) >= opts.maxGames {
			logger.Info("Reached game limit", "maxGames", opts.maxGames)
			return nil
		}

		game, err := loader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			logger.Error("Failed to read input", "error", err)
			return err
		}

		start := time.Now()
		entry, status := buildEntry(ctx, game, analyzer, logger, opts, timePerMove)
		page.Add(entry)

		collector.RecordGame(status)
		if prom != nil {
			prom.RecordGame(status, time.Since(start))
		}

		logger.Info("Processed game", "game", game.Index,
			"white", game.Tag("White"), "black", game.Tag("Black"),
			"plies", game.MoveCount(), "status", status,
			"duration", time.Since(start).Round(time.Millisecond))
	}
}

// buildEntry renders one game. Analysis failure degrades to a board-only
// thumbnail instead of aborting the run.
func buildEntry(ctx context.Context, game *pgn.Game, analyzer *analysis.Analyzer, logger logging.ContextLogger, opts *options, timePerMove time.Duration) (*toc.Entry, string) {
	entry := &toc.Entry{
		Index:  game.Index,
		White:  game.Tag("White"),
		Black:  game.Tag("Black"),
		Result: game.Tag("Result"),
		Event:  game.Meta["Event"],
		Date:   game.Meta["Date"],
	}

	if eco, name, err := opening.Classify(game.Game); err != nil {
		logger.Warn("Opening classification failed", "game", game.Index, "error", err)
	} else {
		entry.ECO = eco
		entry.Opening = name
	}

	var board bytes.Buffer
	finalPos := game.Game.Positions()[len(game.Game.Positions())-1]
	if err := thumbnail.WriteBoard(&board, finalPos); err != nil {
		logger.Warn("Board rendering failed", "game", game.Index, "error", err)
		return entry, "skipped"
	}
	entry.Board = board.Bytes()

	if opts.dryRun {
		return entry, "board_only"
	}

	scores, err := analyzer.AnalyzeGame(ctx, game.Game, timePerMove)
	if err != nil {
		logger.Warn("Analysis failed, keeping board-only thumbnail", "game", game.Index, "error", err)
		return entry, "board_only"
	}

	var plot bytes.Buffer
	if err := thumbnail.WritePlot(&plot, scores, thumbnail.DefaultScale); err != nil {
		logger.Warn("Plot rendering failed, keeping board-only thumbnail", "game", game.Index, "error", err)
		return entry, "board_only"
	}
	entry.Plot = plot.Bytes()

	var combined bytes.Buffer
	if err := thumbnail.Compose(&combined, entry.Board, entry.Plot); err != nil {
		logger.Warn("Thumbnail composition failed, keeping board-only thumbnail", "game", game.Index, "error", err)
		entry.Plot = nil
		return entry, "board_only"
	}
	entry.Combined = combined.Bytes()
	entry.HasEval = true

	return entry, "analyzed"
}
