package config

import (
	"fmt"
	"strings"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the log level name (debug, info, warn, error)
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate creates the tables on startup when enabled (for Postgres)
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithLayoutFormat selects how layout fields are encoded ("xml" or "json")
func WithLayoutFormat(format string) Option {
	return func(c *ServerConfig) error {
		if format == "" {
			return fmt.Errorf("layout format cannot be empty")
		}
		c.LayoutFormat = strings.ToLower(format)
		return nil
	}
}

// WithAnchorKey overrides the reserved anchor slot key
func WithAnchorKey(key string) Option {
	return func(c *ServerConfig) error {
		if key == "" {
			return fmt.Errorf("anchor key cannot be empty")
		}
		c.AnchorKey = key
		return nil
	}
}

// WithPresetIDs overrides the base preset type and the anchor component
func WithPresetIDs(basePresetTypeID, presetRenderingID string) Option {
	return func(c *ServerConfig) error {
		if basePresetTypeID != "" {
			c.BasePresetTypeID = basePresetTypeID
		}
		if presetRenderingID != "" {
			c.PresetRenderingID = presetRenderingID
		}
		return nil
	}
}

// WithContentRoot sets the generic content root and the one site allowed to claim it
func WithContentRoot(rootPath, defaultSite string) Option {
	return func(c *ServerConfig) error {
		if rootPath == "" {
			return fmt.Errorf("content root cannot be empty")
		}
		c.ContentRoot = rootPath
		c.DefaultSite = defaultSite
		return nil
	}
}

// WithCurrentSite sets the ambient site used when a request has no context item
func WithCurrentSite(name string) Option {
	return func(c *ServerConfig) error {
		c.CurrentSite = name
		return nil
	}
}

// WithSite registers a site, replacing an earlier one with the same name
func WithSite(name, rootPath string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("site name cannot be empty")
		}
		site := SiteConfig{Name: name, RootPath: rootPath}
		for i := range c.Sites {
			if strings.EqualFold(c.Sites[i].Name, name) {
				c.Sites[i] = site
				return nil
			}
		}
		c.Sites = append(c.Sites, site)
		return nil
	}
}

// WithLocation registers a preset folder for a site. An empty site registers
// the folder for every site.
func WithLocation(site, folderID string) Option {
	return func(c *ServerConfig) error {
		if folderID == "" {
			return fmt.Errorf("location folder cannot be empty")
		}
		c.Locations = append(c.Locations, LocationConfig{Site: site, Folder: folderID})
		return nil
	}
}

// WithPlaceholder configures the components allowed in a placeholder
func WithPlaceholder(key string, restricted bool, components ...string) Option {
	return func(c *ServerConfig) error {
		if key == "" {
			return fmt.Errorf("placeholder key cannot be empty")
		}
		ph := PlaceholderConfig{Key: key, Restricted: restricted, Components: components}
		for i := range c.Placeholders {
			if strings.EqualFold(c.Placeholders[i].Key, key) {
				c.Placeholders[i] = ph
				return nil
			}
		}
		c.Placeholders = append(c.Placeholders, ph)
		return nil
	}
}

// WithSeedFile sets a YAML fixture to load into the repository at startup
func WithSeedFile(path string) Option {
	return func(c *ServerConfig) error {
		c.SeedFile = path
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithDefaults is a convenience option that applies sensible defaults
// This is useful as a base before applying more specific options
func WithDefaults() Option {
	return func(c *ServerConfig) error {
		*c = defaults()
		return nil
	}
}
