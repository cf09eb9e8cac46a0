package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/roster-ocr/internal/config"
	"github.com/ironsheep/roster-ocr/internal/fields"
	"github.com/ironsheep/roster-ocr/internal/fusion"
	"github.com/ironsheep/roster-ocr/internal/imaging"
	"github.com/ironsheep/roster-ocr/internal/logging"
	"github.com/ironsheep/roster-ocr/internal/ocr"
	"github.com/ironsheep/roster-ocr/internal/ocr/tesseract"
	"github.com/ironsheep/roster-ocr/internal/pipeline"
	"github.com/ironsheep/roster-ocr/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("roster-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("roster-mcp - MCP server for roster record extraction")
			fmt.Println()
			fmt.Println("Usage: roster-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  ROSTER_LOG_LEVEL=debug            Log level (debug, info, warn, error)")
			fmt.Println("  ROSTER_MIN_DIMENSION=1200         Upscale floor for the shorter image side")
			fmt.Println("  ROSTER_RECOGNITION_TIMEOUT=20s    Per recognition call")
			fmt.Println("  ROSTER_IMAGE_TIMEOUT=2m           Per image, all trials")
			fmt.Println("  ROSTER_TRIAL_PARALLELISM=1        Concurrent trials per image")
			fmt.Println("  ROSTER_WORKER_CONCURRENCY=4       Concurrent items per batch")
			fmt.Println("  ROSTER_COMPLETE_THRESHOLD=70      Completeness for complete-enough")
			fmt.Println("  ROSTER_LANGUAGES=eng+fra          Tesseract language profile")
			fmt.Println("  ROSTER_TESSDATA_PREFIX=/path      Tesseract language data")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr (stdout is for MCP protocol)
	logger := logging.New(cfg.LogLevel, os.Stderr)
	logger.Info("starting roster-mcp", "version", Version, "build_time", BuildTime, "commit", GitCommit)

	recognizer := tesseract.New(cfg.TessdataPrefix)
	if info := recognizer.Probe(); !info.Available {
		logger.Warn("tesseract unavailable, every recognition attempt will fail", "error", info.Error, "backend", info.Backend)
	} else {
		logger.Info("tesseract ready", "version", info.Version, "languages", cfg.Languages)
	}

	extractor := fields.NewExtractor(fields.Default())
	engine, err := ocr.NewEngine(recognizer, extractor,
		ocr.WithConfigurations(ocr.DefaultConfigurations(cfg.Languages...)...),
		ocr.WithTimeout(cfg.RecognitionTimeout),
		ocr.WithImageTimeout(cfg.ImageTimeout),
		ocr.WithParallelism(cfg.TrialParallelism),
		ocr.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create recognition engine", "error", err)
		os.Exit(1)
	}

	processor, err := pipeline.New(
		imaging.NewGenerator(cfg.MinDimension, imaging.WithLogger(logger)),
		engine,
		fusion.NewContext(fusion.WithThreshold(cfg.CompleteThreshold), fusion.WithLogger(logger)),
		pipeline.WithExtractor(extractor),
		pipeline.WithConcurrency(cfg.WorkerConcurrency),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}

	srv := server.New(processor,
		server.WithLogger(logger),
		server.WithVersion(Version),
		server.WithStatus(func() interface{} { return recognizer.Probe() }),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
