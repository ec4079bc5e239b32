// Command logosd runs the code-intelligence daemon: the line-delimited
// JSON-RPC transport with --daemon, an MCP tool server with --mcp, or a
// one-shot directory index with the `index` subcommand. With neither flag
// and no subcommand it prints help.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/zixiao-technologies/logos/internal/adapter"
	"github.com/zixiao-technologies/logos/internal/config"
	"github.com/zixiao-technologies/logos/internal/logging"
	"github.com/zixiao-technologies/logos/internal/mcpserver"
	"github.com/zixiao-technologies/logos/internal/mode"
	"github.com/zixiao-technologies/logos/internal/orchestrator"
	"github.com/zixiao-technologies/logos/internal/protocol"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "logosd",
		Usage:   "multi-language code intelligence daemon",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: ".logos.kdl", Usage: "config file path (not read: configuration always comes from .logos.kdl and .logos.toml under --root)"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "workspace root override"},
			&cli.BoolFlag{Name: "daemon", Aliases: []string{"d"}, Usage: "run the stdio JSON-RPC transport"},
			&cli.BoolFlag{Name: "mcp", Usage: "run the MCP tool server instead of the line-delimited transport"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn, or error"},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "index the workspace once and print statistics as JSON, with no transport",
				Action: runIndexOnce,
			},
		},
		Action: runDaemon,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		root = wd
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// defaultRegistry builds a registry carrying every bundled language
// adapter, the full set the spec's scenarios exercise (S1-S4).
func defaultRegistry() (*adapter.Registry, error) {
	driver, err := syntaxdriver.New()
	if err != nil {
		return nil, fmt.Errorf("initializing syntax driver: %w", err)
	}
	reg := adapter.NewRegistry()
	reg.Register(adapter.NewGoAdapter(driver))
	reg.Register(adapter.NewTypeScriptAdapter(driver))
	reg.Register(adapter.NewPythonAdapter(driver))
	reg.Register(adapter.NewRustAdapter(driver))
	reg.Register(adapter.NewJavaAdapter(driver))
	reg.Register(adapter.NewCppAdapter(driver))
	return reg, nil
}

func scanOptions(cfg *config.Config) orchestrator.ScanOptions {
	return orchestrator.ScanOptions{
		Include:          cfg.Include,
		Exclude:          cfg.Exclude,
		RespectGitignore: true,
	}
}

func runIndexOnce(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, logging.ModeText, logging.ParseLevel(c.String("log-level")))

	reg, err := defaultRegistry()
	if err != nil {
		return err
	}
	ctrl := mode.New(reg, mode.Config{
		Root:        cfg.Project.Root,
		ScanOptions: scanOptions(cfg),
		Logger:      logger,
	})

	if err := ctrl.EnableSmart(c.Context); err != nil {
		return fmt.Errorf("indexing %s: %w", cfg.Project.Root, err)
	}

	stats := ctrl.Stats()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func runDaemon(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logMode := logging.ModeJSON
	if !c.Bool("daemon") && !c.Bool("mcp") {
		logMode = logging.ModeText
	}
	logger := logging.New(os.Stderr, logMode, logging.ParseLevel(c.String("log-level")))

	reg, err := defaultRegistry()
	if err != nil {
		return err
	}
	ctrl := mode.New(reg, mode.Config{
		Root:          cfg.Project.Root,
		ScanOptions:   scanOptions(cfg),
		WatchEnabled:  cfg.Watch.Enabled,
		WatchDebounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		Logger:        logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if c.Bool("mcp") {
		server := mcpserver.New(ctrl, logger)
		return mcpserver.Run(ctx, server)
	}

	if c.Bool("daemon") {
		server := protocol.NewServer(ctrl, logger)
		return server.Run(ctx, os.Stdin, os.Stdout)
	}

	return cli.ShowAppHelp(c)
}
