package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
	"github.com/tendant/layout-presets/pkg/layoutpreset/layout"
	"github.com/tendant/layout-presets/pkg/layoutpreset/repo/memory"
	repopg "github.com/tendant/layout-presets/pkg/layoutpreset/repo/postgres"
	"github.com/tendant/layout-presets/pkg/layoutpreset/seed"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		DatabaseType:       "memory",
		DBSchema:           "layout",
		LayoutFormat:       layout.FormatXML,
		AnchorKey:          layoutpreset.DefaultAnchorKey,
		BasePresetTypeID:   layoutpreset.DefaultBasePresetTypeID.String(),
		PresetRenderingID:  layoutpreset.DefaultPresetRenderingID.String(),
		ContentRoot:        layoutpreset.DefaultContentRootPath,
		DefaultSite:        layoutpreset.DefaultSiteName,
		EnableEventLogging: true,
	}
}

// ServerConfig represents configuration for the layout preset service
type ServerConfig struct {
	Port        string `yaml:"port" json:"port" toml:"port"`
	Environment string `yaml:"environment" json:"environment" toml:"environment"` // development, production, testing
	LogLevel    string `yaml:"log_level" json:"log_level" toml:"log_level"`

	// Database configuration
	DatabaseURL  string `yaml:"database_url" json:"database_url" toml:"database_url"`
	DatabaseType string `yaml:"database_type" json:"database_type" toml:"database_type"` // "memory", "postgres"
	DBSchema     string `yaml:"db_schema" json:"db_schema" toml:"db_schema"`             // Postgres schema to use (default: layout)
	AutoMigrate  bool   `yaml:"auto_migrate" json:"auto_migrate" toml:"auto_migrate"`

	// Layout field encoding: "xml" or "json"
	LayoutFormat string `yaml:"layout_format" json:"layout_format" toml:"layout_format"`

	// Preset identifiers
	AnchorKey         string `yaml:"anchor_key" json:"anchor_key" toml:"anchor_key"`
	BasePresetTypeID  string `yaml:"base_preset_type_id" json:"base_preset_type_id" toml:"base_preset_type_id"`
	PresetRenderingID string `yaml:"preset_rendering_id" json:"preset_rendering_id" toml:"preset_rendering_id"`

	// Site resolution
	ContentRoot string       `yaml:"content_root" json:"content_root" toml:"content_root"`
	DefaultSite string       `yaml:"default_site" json:"default_site" toml:"default_site"`
	CurrentSite string       `yaml:"current_site" json:"current_site" toml:"current_site"`
	Sites       []SiteConfig `yaml:"sites" json:"sites" toml:"sites"`

	Locations    []LocationConfig    `yaml:"locations" json:"locations" toml:"locations"`
	Placeholders []PlaceholderConfig `yaml:"placeholders" json:"placeholders" toml:"placeholders"`

	// Optional YAML fixture applied to the repository at startup
	SeedFile string `yaml:"seed_file" json:"seed_file" toml:"seed_file"`

	EnableEventLogging bool `yaml:"event_logging" json:"event_logging" toml:"event_logging"`
}

// SiteConfig registers a site and the content path it is rooted at
type SiteConfig struct {
	Name     string `yaml:"name" json:"name" toml:"name"`
	RootPath string `yaml:"root_path" json:"root_path" toml:"root_path"`
}

// LocationConfig registers a preset folder. An empty Site means shared.
type LocationConfig struct {
	Site   string `yaml:"site" json:"site" toml:"site"`
	Folder string `yaml:"folder" json:"folder" toml:"folder"`
}

// PlaceholderConfig lists the components allowed in a placeholder
type PlaceholderConfig struct {
	Key        string   `yaml:"key" json:"key" toml:"key"`
	Components []string `yaml:"components" json:"components" toml:"components"`
	Restricted bool     `yaml:"restricted" json:"restricted" toml:"restricted"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if _, err := layout.NewCodec(c.LayoutFormat); err != nil {
		return err
	}

	if strings.TrimSpace(c.AnchorKey) == "" {
		return errors.New("anchor_key is required")
	}
	if _, err := uuid.Parse(c.BasePresetTypeID); err != nil {
		return fmt.Errorf("invalid base_preset_type_id %q: %w", c.BasePresetTypeID, err)
	}
	if _, err := uuid.Parse(c.PresetRenderingID); err != nil {
		return fmt.Errorf("invalid preset_rendering_id %q: %w", c.PresetRenderingID, err)
	}

	for _, site := range c.Sites {
		if site.Name == "" {
			return fmt.Errorf("site with root path %q has no name", site.RootPath)
		}
	}
	for _, loc := range c.Locations {
		if _, err := uuid.Parse(loc.Folder); err != nil {
			return fmt.Errorf("invalid location folder %q: %w", loc.Folder, err)
		}
	}
	for _, ph := range c.Placeholders {
		if ph.Key == "" {
			return errors.New("placeholder key cannot be empty")
		}
		for _, id := range ph.Components {
			if _, err := uuid.Parse(id); err != nil {
				return fmt.Errorf("invalid component %q for placeholder %s: %w", id, ph.Key, err)
			}
		}
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// When SeedFile is set, its fixtures are applied to the repository first.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (layoutpreset.Service, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	codec, err := layout.NewCodec(c.LayoutFormat)
	if err != nil {
		return nil, err
	}

	if c.SeedFile != "" {
		fixtures, err := seed.LoadFile(c.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, repo, codec, fixtures); err != nil {
			return nil, fmt.Errorf("failed to apply seed file %s: %w", c.SeedFile, err)
		}
		logger.Info("seed applied", "file", c.SeedFile, "types", len(fixtures.Types), "nodes", len(fixtures.Nodes))
	}

	rules := c.LocationRules()
	logger.Debug("preset locations registered", "scopes", layoutpreset.NewLocationRules(rules).Scopes())

	options := []layoutpreset.Option{
		layoutpreset.WithRepository(repo),
		layoutpreset.WithLayoutCodec(codec),
		layoutpreset.WithSiteRegistry(layoutpreset.NewStaticSiteRegistry(c.SiteList())),
		layoutpreset.WithLocationRules(rules...),
		layoutpreset.WithPlaceholderSettings(layoutpreset.NewStaticPlaceholderSettings(c.PlaceholderSettings())),
		layoutpreset.WithBasePresetType(uuid.MustParse(c.BasePresetTypeID)),
		layoutpreset.WithPresetRendering(uuid.MustParse(c.PresetRenderingID)),
		layoutpreset.WithAnchorKey(c.AnchorKey),
		layoutpreset.WithContentRoot(c.ContentRoot, c.DefaultSite),
		layoutpreset.WithLogger(logger),
	}

	// Set up event sink
	if c.EnableEventLogging {
		options = append(options, layoutpreset.WithEventSink(layoutpreset.NewLoggingEventSink(logger)))
	} else {
		options = append(options, layoutpreset.WithEventSink(layoutpreset.NewNoopEventSink()))
	}

	return layoutpreset.New(options...)
}

// SiteList converts the configured sites
func (c *ServerConfig) SiteList() []layoutpreset.Site {
	sites := make([]layoutpreset.Site, 0, len(c.Sites))
	for _, s := range c.Sites {
		sites = append(sites, layoutpreset.Site{Name: s.Name, RootPath: s.RootPath})
	}
	return sites
}

// LocationRules converts the configured locations. Call after Validate.
func (c *ServerConfig) LocationRules() []layoutpreset.LocationRule {
	rules := make([]layoutpreset.LocationRule, 0, len(c.Locations))
	for _, loc := range c.Locations {
		rules = append(rules, layoutpreset.LocationRule{
			SiteName:   loc.Site,
			LocationID: uuid.MustParse(loc.Folder),
		})
	}
	return rules
}

// PlaceholderSettings converts the configured placeholders. Call after Validate.
func (c *ServerConfig) PlaceholderSettings() []layoutpreset.PlaceholderSetting {
	settings := make([]layoutpreset.PlaceholderSetting, 0, len(c.Placeholders))
	for _, ph := range c.Placeholders {
		setting := layoutpreset.PlaceholderSetting{Key: ph.Key, Restricted: ph.Restricted}
		for _, id := range ph.Components {
			setting.Components = append(setting.Components, uuid.MustParse(id))
		}
		settings = append(settings, setting)
	}
	return settings
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (layoutpreset.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		pool, err := newPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		if c.AutoMigrate {
			if err := ensureSchema(ctx, pool, c.DBSchema); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func newPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if schema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}
	return repopg.EnsureSchema(ctx, pool)
}

// PingPostgres verifies connectivity to Postgres with search_path set to
// schema when one is given.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := newPool(context.Background(), databaseURL, schema)
	if err != nil {
		return err
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
