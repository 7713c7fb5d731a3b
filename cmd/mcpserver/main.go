package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tendant/layout-presets/internal/logging"
	"github.com/tendant/layout-presets/internal/mcp"
	"github.com/tendant/layout-presets/pkg/layoutpreset/config"
)

// Config holds the transport settings; the preset service itself is
// configured through config.WithEnv.
type Config struct {
	Host    string `env:"MCP_HOST" env-default:"localhost"`
	Port    uint16 `env:"MCP_PORT" env-default:"8000"`
	BaseUrl string `env:"MCP_BASE_URL" env-default:"http://localhost:8000"`
}

func main() {
	// Server mode flags
	var mode = flag.String("mode", "stdio", "Server mode: 'stdio', 'sse', or 'http'")

	flag.Parse()

	// Load environment variables from .env file
	if err := godotenv.Load(".env"); err != nil {
		// It's okay if .env doesn't exist, we'll use default values
		slog.Info("No .env file found or error loading it, using default values", "err", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	serviceCfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load service configuration", "err", err)
		os.Exit(1)
	}

	// stdout carries the protocol in stdio mode, so logs go to stderr
	logger := logging.SetDefault(os.Stderr, logging.Options{
		Level:       serviceCfg.LogLevel,
		Environment: serviceCfg.Environment,
		Prefix:      "mcp",
	})

	svc, err := serviceCfg.BuildService(context.Background(), logger)
	if err != nil {
		logger.Error("Failed to create service", "err", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"Layout Preset Mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	handler := mcp.NewHandler(svc, serviceCfg.CurrentSite)
	handler.RegisterTools(s)

	// Start the server based on the selected mode
	switch *mode {
	case "sse":
		sseServer := server.NewSSEServer(s, server.WithBaseURL(cfg.BaseUrl))
		logger.Info("Starting SSE server", "base url", cfg.BaseUrl)
		if err := sseServer.Start(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)); err != nil {
			logger.Error("Failed to start SSE server", "err", err)
			os.Exit(-1)
		}
	case "http":
		httpServer := server.NewStreamableHTTPServer(s)
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := httpServer.Start(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)); err != nil {
			logger.Error("Server error", "err", err)
			os.Exit(-1)
		}
	default:
		logger.Info("Starting in stdio mode")
		if err := server.ServeStdio(s); err != nil {
			logger.Error("Failed to start stdio server", "err", err)
			os.Exit(-1)
		}
	}
}
