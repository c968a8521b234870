package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/workpad"
	"github.com/aretw0/workpad/internal/cli"
	"github.com/aretw0/workpad/internal/config"
	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "workpad",
	Short: "Workpad edits canvas documents through discrete commands",
	Long: `Workpad stores canvas-style documents (pages of positioned elements and groups)
and mutates them through a small set of commands: expressions, filters,
positions, stacking order, adding, duplicating and removing elements.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "workpad.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "", "Store backend override (memory, file, redis, sqlite)")
}

// app is the wiring shared by every command that touches workpads.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	backend *cli.Backend
	manager *session.Manager
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("Failed to close store", "err", err)
	}
}

// hookFactory builds engine hooks once the configured logger exists.
type hookFactory func(logger *slog.Logger) domain.LifecycleHooks

// setup loads configuration and opens the store. reg and hooks are
// only used by long-running commands.
func setup(cmd *cobra.Command, reg prometheus.Registerer, hooks ...hookFactory) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	backend, err := cli.OpenBackend(cmd.Context(), cfg.Store, reg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Store opened", "backend", backend.Name)

	opts := []workpad.Option{workpad.WithLogger(logger)}
	for _, h := range hooks {
		opts = append(opts, workpad.WithLifecycleHooks(h(logger)))
	}
	engine := workpad.New(opts...)
	return &app{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		manager: cli.NewManager(cfg, backend, engine, logger),
	}, nil
}
