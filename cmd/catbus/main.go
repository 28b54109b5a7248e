package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/idilsaglam/catbus/internal/cli"
	"github.com/idilsaglam/catbus/internal/config"
	"github.com/idilsaglam/catbus/internal/logging"
	"github.com/idilsaglam/catbus/internal/metrics"
	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/store/seedstore"
	"github.com/idilsaglam/catbus/internal/ui"
	"github.com/idilsaglam/catbus/internal/wallet"
)

func main() {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "config file (default: catbus.yaml, then ~/.config/catbus/config.yaml)")
	theme := flag.String("theme", "", "output theme: classic, neon or mono")
	color := flag.String("color", "", "colour output: auto, always or never")
	noColor := flag.Bool("no-color", false, "disable colour output")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stdout)
		os.Exit(2)
	}

	cfg, err := config.NewLoader(nil).Load(*configPath)
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(1)
	}
	if *theme != "" {
		cfg.UI.Theme = *theme
	}
	if *color != "" {
		cfg.UI.Color = *color
	}
	if *noColor {
		cfg.UI.Color = "never"
	}
	ui.SetColorMode(cfg.UI.Color)
	ui.SetTheme(cfg.UI.Theme)

	// The TUI owns the screen, so its diagnostics go to a file.
	if args[0] == "ui" && cfg.Log.File == "" {
		cfg.Log.File = logging.DefaultTUILogFile()
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		ui.Fail("logging: " + err.Error())
		os.Exit(1)
	}

	code := run(args, cfg, logger)
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	logger.Sync() //nolint:errcheck
	os.Exit(code)
}

func run(args []string, cfg *config.Config, logger *zap.Logger) int {
	seed, err := seedstore.LoadOrDefault(cfg.Seed.Path)
	if err != nil {
		ui.Fail("seed: " + err.Error())
		return 1
	}
	reg, err := registry.New(seed...)
	if err != nil {
		ui.Fail("seed: " + err.Error())
		return 1
	}

	session, err := wallet.NewSessionFromEnv(cfg.Wallet.Network, os.Getenv)
	if err != nil {
		ui.Fail("wallet: " + err.Error())
		return 1
	}
	connector := wallet.NewRPCConnector(cfg.Wallet, wallet.WithLogger(logger.Named("wallet")))

	m := metrics.New()
	defer m.Track(reg)()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting",
		zap.String("command", args[0]),
		zap.String("network", cfg.Wallet.Network),
		zap.Int("proposals", reg.Len()))

	return cli.Run(ctx, args, cli.Options{
		Config:    *cfg,
		Logger:    logger,
		Registry:  reg,
		Session:   session,
		Connector: connector,
		Metrics:   m,
	})
}
