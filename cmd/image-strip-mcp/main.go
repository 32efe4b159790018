package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/image-strip-mcp/internal/config"
	"github.com/ironsheep/image-strip-mcp/internal/imaging"
	"github.com/ironsheep/image-strip-mcp/internal/logging"
	"github.com/ironsheep/image-strip-mcp/internal/server"
	"github.com/ironsheep/image-strip-mcp/internal/sink"
	"go.uber.org/zap"
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
			fmt.Printf("image-strip-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-strip-mcp - MCP server for cropping images into a vertical strip")
			fmt.Println()
			fmt.Println("Usage: image-strip-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Printf("  %s=debug         Log level (debug, info, warn, error)\n", config.EnvLogLevel)
			fmt.Printf("  %s=path           Also write JSON logs to a rotated file\n", config.EnvLogFile)
			fmt.Printf("  %s=dir          Where composites are saved\n", config.EnvOutputDir)
			fmt.Printf("  %s=#ffffff      Fill for narrow images (default transparent)\n", config.EnvFillColor)
			fmt.Printf("  %s=90         JPEG quality for .jpg output\n", config.EnvJPEGQuality)
			fmt.Printf("  %s=4              Images cropped in parallel\n", config.EnvWorkers)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, fromDotenv := config.Load()

	// Logs go to stderr (stdout is for MCP protocol)
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-strip-mcp: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	fill, err := imaging.ParseFill(cfg.Compose.FillColor)
	if err != nil {
		logger.Fatal("Invalid fill colour", zap.String("env", config.EnvFillColor), zap.Error(err))
	}

	logger.Debug("Image strip MCP server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Bool("dotenv", fromDotenv),
		zap.String("output_dir", cfg.Compose.OutputDir),
		zap.Int("workers", cfg.Compose.Workers))

	server.Version = Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Logger:  logger,
		Sink:    sink.NewFileSink(cfg.Compose.OutputDir, cfg.Compose.JPEGQuality),
		Fill:    fill,
		Workers: cfg.Compose.Workers,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
