package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/config"
	"github.com/ironsheep/texture-atlas-mcp/internal/logger"
	"github.com/ironsheep/texture-atlas-mcp/internal/server"
	"github.com/ironsheep/texture-atlas-mcp/internal/texsync"
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
			fmt.Printf("texture-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("texture-mcp - MCP server for UV atlas and texture painting")
			fmt.Println()
			fmt.Println("Usage: texture-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v              Print version information")
			fmt.Println("  --help, -h                 Print this help message")
			fmt.Println("  --config <path>            Config file (default: ./texture-mcp.yaml)")
			fmt.Println("  --project <path>           Project manifest to load at startup")
			fmt.Println("  --max-texture-size <n>     Atlas resolution ceiling")
			fmt.Println("  --require-revision         Require ifRevision on every mutation")
			fmt.Println("  --debug                    Enable debug logging")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "texture-mcp: %v\n", err)
		os.Exit(1)
	}

	// Console logging goes to stderr (stdout is for MCP protocol)
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "texture-mcp: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Debug("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))

	srv := server.New(texsync.OptionsFromConfig(cfg), logger.Named("server"))
	if cfg.Project.Path != "" {
		if _, err := srv.LoadProject(cfg.Project.Path); err != nil {
			logger.Log.Error("failed to load startup project",
				zap.String("path", cfg.Project.Path), zap.Error(err))
		}
	}

	if err := srv.Run(); err != nil {
		logger.Log.Error("server error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
