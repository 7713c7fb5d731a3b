package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/layout-presets/internal/logging"
	"github.com/tendant/layout-presets/pkg/layoutpreset/api"
	"github.com/tendant/layout-presets/pkg/layoutpreset/config"
)

func main() {
	// It's okay if .env doesn't exist
	_ = godotenv.Load()

	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.SetDefault(os.Stderr, logging.Options{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		Prefix:      "layout-presets",
	})

	if cfg.DatabaseType == "postgres" {
		if err := config.PingPostgres(cfg.DatabaseURL, cfg.DBSchema); err != nil {
			logger.Error("Database is not reachable", "err", err)
			os.Exit(1)
		}
	}

	svc, err := cfg.BuildService(context.Background(), logger)
	if err != nil {
		logger.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	presetHandler := api.NewPresetHandler(svc, cfg.CurrentSite)
	server.R.Route("/api/v1", func(r chi.Router) {
		r.Mount("/presets", presetHandler.Routes())
	})

	logger.Info("Layout preset server starting",
		"env", cfg.Environment,
		"database", cfg.DatabaseType,
		"layout_format", cfg.LayoutFormat,
		"sites", len(cfg.Sites),
		"locations", len(cfg.Locations))

	server.Run()
}
