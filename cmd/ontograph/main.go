// Package main provides the ontograph binary entry point.
// Ontograph loads biomedical ontologies from the OBO Foundry (or local
// files), builds a validated DAG, and answers hierarchy queries over it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ontograph/ontograph/client"
	"github.com/ontograph/ontograph/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontograph"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliOptions carries the persistent flags into the subcommands.
type cliOptions struct {
	configPath string
	logLevel   string

	// set by --ontology/--file/--format on the query commands
	ontologyID string
	filePath   string
	format     string
}

func rootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology DAG query tool",
		Long: `Ontograph loads OBO and OWL ontologies, validates them into a
directed acyclic graph, and answers hierarchy queries: ancestors,
descendants, siblings, paths, and root-to-term trajectories.

Ontologies can come from local files or be fetched from the OBO
Foundry registry and cached on disk.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		versionCmd(),
		catalogCmd(opts),
		fetchCmd(opts),
		cacheCmd(opts),
		termCmd(opts),
		queryCmd(opts),
		pathCmd(opts),
		trajectoriesCmd(opts),
		serveCmd(opts),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setupLogger configures the default slog logger from --log-level.
func setupLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig resolves the configuration: an explicit --config file wins,
// otherwise the layered defaults/user/project lookup applies.
func loadConfig(opts *cliOptions, logger *slog.Logger) (*config.Config, error) {
	if opts.configPath != "" {
		cfg := config.DefaultConfig()
		fileCfg, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg.Merge(fileCfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

// newClient builds the facade shared by every subcommand.
func newClient(opts *cliOptions) (*client.Client, error) {
	logger := setupLogger(opts.logLevel)
	cfg, err := loadConfig(opts, logger)
	if err != nil {
		return nil, err
	}
	return client.New(cfg, logger)
}

// loadOntology loads the ontology selected by --file or --ontology.
func loadOntology(cmd *cobra.Command, c *client.Client, opts *cliOptions) error {
	switch {
	case opts.filePath != "":
		return c.LoadFile(opts.filePath)
	case opts.ontologyID != "":
		return c.LoadCatalog(cmd.Context(), opts.ontologyID, opts.format)
	default:
		return fmt.Errorf("either --file or --ontology is required")
	}
}

// addLoadFlags registers the ontology selection flags shared by the
// query commands.
func addLoadFlags(cmd *cobra.Command, opts *cliOptions) {
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "Load ontology from a local file")
	cmd.Flags().StringVarP(&opts.ontologyID, "ontology", "o", "", "Load ontology by OBO Foundry ID (e.g. go, chebi)")
	cmd.Flags().StringVar(&opts.format, "format", "obo", "Download format when using --ontology (obo, owl)")
}
