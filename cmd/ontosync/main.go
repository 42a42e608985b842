// Package main provides the ontosync binary entry point.
// Ontosync keeps an OWL ontology and a Neo4j property graph in step and
// relays entity declarations to a remote collaborator.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontosync/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontosync"
)

func main() {
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

type globalFlags struct {
	configPath string
	logLevel   string
	backend    string
	transport  string
	iri        string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology to property graph synchronizer",
		Long: `Ontosync mirrors every edit of an OWL ontology into a Neo4j property
graph, rebuilds the ontology from the graph on start, and exchanges entity
declarations with a remote collaborator through a message relay.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.backend, "backend", "", "Graph backend override (neo4j, memory)")
	pf.StringVar(&flags.transport, "relay", "", "Relay transport override (http, nats, none)")
	pf.StringVar(&flags.iri, "iri", "", "Ontology IRI override")

	cmd.AddCommand(serveCmd(&flags), importCmd(&flags), initCmd(&flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Synchronize until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)
			cfg, err := loadConfig(flags, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app := NewApp(cfg, logger)
			if err := app.Start(ctx); err != nil {
				app.Shutdown(context.WithoutCancel(ctx))
				return err
			}
			defer app.Shutdown(context.WithoutCancel(ctx))

			logger.Info("Ontosync ready", "version", Version, "ontology", cfg.Ontology.IRI)
			return app.Run(ctx)
		},
	}
}

func importCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Rebuild the ontology from the graph and print its axioms",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)
			cfg, err := loadConfig(flags, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app := NewApp(cfg, logger)
			defer app.Shutdown(context.WithoutCancel(ctx))

			o, err := app.Import(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ontology(<%s>\n", o.IRI())
			for _, ax := range o.Axioms() {
				fmt.Fprintf(out, "  %s\n", ax)
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default user config if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)
			path, err := config.NewLoader(logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(flags *globalFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.Merge(&config.Config{
		Neo4j:    config.Neo4jConfig{Backend: flags.backend},
		Relay:    config.RelayConfig{Transport: flags.transport},
		Ontology: config.OntologyConfig{IRI: flags.iri},
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
