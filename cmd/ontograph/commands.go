package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ontograph/ontograph/client"
	"github.com/ontograph/ontograph/loader"
	"github.com/ontograph/ontograph/ontology"
	"github.com/ontograph/ontograph/query"
	"github.com/ontograph/ontograph/server"
)

func catalogCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the OBO Foundry registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available ontologies",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			cat, err := c.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			return cat.WriteTable(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one registry entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			cat, err := c.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := cat.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", entry.ID)
			fmt.Fprintf(out, "Title:    %s\n", entry.Title)
			if entry.Homepage != "" {
				fmt.Fprintf(out, "Homepage: %s\n", entry.Homepage)
			}
			if formats := entry.Formats(); len(formats) > 0 {
				fmt.Fprintf(out, "Formats:  %s\n", strings.Join(formats, ", "))
			}
			if entry.Description != "" {
				fmt.Fprintf(out, "\n%s\n", entry.Description)
			}
			return nil
		},
	})

	return cmd
}

func fetchCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Download an ontology into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			path, err := c.Fetch(cmd.Context(), args[0], opts.format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "obo", "Download format (obo, owl)")
	return cmd
}

func cacheCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the download cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [pattern]",
		Short: "List cached files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			names, err := c.CachedFiles(pattern)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge <pattern>",
		Short: "Remove cached files matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			removed, err := c.PurgeCache(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s)\n", removed)
			return nil
		},
	})

	return cmd
}

func termCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term <id>",
		Short: "Show a term with its neighborhood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			if err := loadOntology(cmd, c, opts); err != nil {
				return err
			}

			id := args[0]
			term, err := c.TermInfo(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:         %s\n", term.ID)
			fmt.Fprintf(out, "Name:       %s\n", term.Name)
			if term.Definition != "" {
				fmt.Fprintf(out, "Definition: %s\n", term.Definition)
			}
			for _, syn := range term.Synonyms {
				fmt.Fprintf(out, "Synonym:    %s (%s)\n", syn.Text, syn.Scope)
			}

			if depth, err := c.Depth(id); err == nil {
				fmt.Fprintf(out, "Depth:      %d\n", depth)
			}

			parents, err := c.Parents(id)
			if err != nil {
				return err
			}
			printTermList(cmd, "Parents", parents)

			children, err := c.Children(id)
			if err != nil {
				return err
			}
			printTermList(cmd, "Children", children)
			return nil
		},
	}
	addLoadFlags(cmd, opts)
	return cmd
}

func queryCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <expression>",
		Short: "Evaluate an op:term_id expression",
		Long: `Evaluate a query expression of the form op:term_id, for example
ancestors:GO:0006915 or children:GO:0008150. Supported operations:
ancestors, descendants, parents, children, siblings, roots.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			if err := loadOntology(cmd, c, opts); err != nil {
				return err
			}

			results, err := c.Query(args[0])
			if err != nil {
				return err
			}
			for _, term := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", term.ID, term.Name)
			}
			return nil
		},
	}
	addLoadFlags(cmd, opts)
	return cmd
}

func pathCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Show one shortest path between two terms",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			if err := loadOntology(cmd, c, opts); err != nil {
				return err
			}

			path, err := c.PathBetween(args[0], args[1])
			if err != nil {
				return err
			}
			for i, term := range path {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "  |")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", term.ID, term.Name)
			}
			return nil
		},
	}
	addLoadFlags(cmd, opts)
	return cmd
}

func trajectoriesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trajectories <id>",
		Short: "Show every root-to-term path as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			if err := loadOntology(cmd, c, opts); err != nil {
				return err
			}

			trajectories, err := c.Trajectories(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), query.FormatTrajectories(trajectories))
			return nil
		},
	}
	addLoadFlags(cmd, opts)
	return cmd
}

func serveCmd(opts *cliOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Long: `Load an ontology and serve it over HTTP. When loading from a local
file the server watches it and reloads on change; a file that fails to
parse keeps the previous ontology in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(opts.logLevel)
			cfg, err := loadConfig(opts, logger)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			c, err := client.New(cfg, logger)
			if err != nil {
				return err
			}
			if err := loadOntology(cmd, c, opts); err != nil {
				return err
			}
			engine, err := c.Engine()
			if err != nil {
				return err
			}

			metrics := server.NewMetrics()
			handler := server.NewHandler(engine, query.TrajectoryOptions{
				MaxPaths: cfg.Query.MaxTrajectories,
				MaxSteps: cfg.Query.MaxTrajectorySteps,
			}, metrics, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.filePath != "" {
				watcher, err := server.NewWatcher(server.WatcherConfig{
					Path:   opts.filePath,
					Logger: logger,
				}, handler, loader.DefaultRegistry, metrics)
				if err != nil {
					return err
				}
				defer watcher.Close()
				if err := watcher.Start(ctx); err != nil {
					return err
				}
			}

			srv := server.NewServer(cfg.Server.Addr, handler, cfg.Server.ShutdownTimeout, logger)
			return srv.Run(ctx)
		},
	}
	addLoadFlags(cmd, opts)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func printTermList(cmd *cobra.Command, label string, terms []ontology.Term) {
	out := cmd.OutOrStdout()
	if len(terms) == 0 {
		fmt.Fprintf(out, "%s:   none\n", label)
		return
	}
	fmt.Fprintf(out, "%s:\n", label)
	for _, term := range terms {
		fmt.Fprintf(out, "  %s: %s\n", term.ID, term.Name)
	}
}
