package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/layout-presets/internal/logging"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
	"github.com/tendant/layout-presets/pkg/layoutpreset/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	seedFile   string
	sites      []string
	locations  []string
	verbose    bool
}

func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "presetctl",
		Short: "Inspect and apply partial layout presets",
		Long: `presetctl answers the two page-editor questions of the preset engine
from the command line: which presets may go into a placeholder, and what
inserting one does to a page layout.

Configuration comes from --config, the environment (DATABASE_URL, SEED_FILE, ...)
and the flags below. With the default in-memory database, pass --seed to load
a content tree first.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&flags.seedFile, "seed", "", "YAML fixture loaded into the repository")
	rootCmd.PersistentFlags().StringSliceVar(&flags.sites, "site", nil, "register a site as name=/root/path (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&flags.locations, "location", nil, "register a preset folder as [site:]folder-id (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewAllowedCommand(flags))
	rootCmd.AddCommand(NewInsertCommand(flags))
	rootCmd.AddCommand(NewBoundSlotCommand(flags))
	rootCmd.AddCommand(NewPresetsCommand(flags))
	rootCmd.AddCommand(NewLocationsCommand(flags))
	rootCmd.AddCommand(NewShowCommand(flags))
	rootCmd.AddCommand(NewCanonicalizeCommand())

	return rootCmd
}

// loadConfig builds the server configuration from file, environment and flags
func loadConfig(flags *globalFlags) (*config.ServerConfig, error) {
	var opts []config.Option
	if flags.configFile != "" {
		opts = append(opts, config.WithFile(flags.configFile))
	}
	opts = append(opts, config.WithEnv(""))
	if flags.seedFile != "" {
		opts = append(opts, config.WithSeedFile(flags.seedFile))
	}
	if flags.verbose {
		opts = append(opts, config.WithLogLevel("debug"))
	}

	for _, s := range flags.sites {
		name, root, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --site %q, want name=/root/path", s)
		}
		opts = append(opts, config.WithSite(name, root))
	}
	for _, l := range flags.locations {
		site, folder, ok := strings.Cut(l, ":")
		if !ok {
			site, folder = "", l
		}
		opts = append(opts, config.WithLocation(site, folder))
	}

	return config.Load(opts...)
}

// newService creates the preset service; logs go to the command's stderr
func newService(cmd *cobra.Command, flags *globalFlags) (layoutpreset.Service, *config.ServerConfig, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		Prefix:      "presetctl",
	})

	svc, err := cfg.BuildService(cmd.Context(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
