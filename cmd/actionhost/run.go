package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/actionhost/internal/config"
	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/adapters/cli"
	httpdash "github.com/aretw0/actionhost/pkg/adapters/http"
	"github.com/aretw0/actionhost/pkg/adapters/mcp"
	"github.com/aretw0/actionhost/pkg/host"
	"github.com/aretw0/actionhost/pkg/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the coordinator and serve registered actions",
	Long: `Starts the Host process: loads the config file, connects to the
coordinator, and dispatches START_TRANSACTION calls to the registered
action table until interrupted.

With --dry-run, no coordinator connection is made at all; each action
runs against a local terminal renderer instead, for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		script, _ := cmd.Flags().GetString("script")
		action, _ := cmd.Flags().GetString("action")
		mcpMode, _ := cmd.Flags().GetBool("mcp")

		if dryRun {
			runDryRun(action, script)
			return
		}

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(logLevelFor(cfg.LogLevel))
		table := defaultActions()

		if mcpMode {
			srv := mcp.NewServer(table, nil, logger)
			if err := srv.ServeStdio(); err != nil {
				fmt.Printf("MCP server stopped: %v\n", err)
				os.Exit(1)
			}
			return
		}

		var guard *session.Guard
		if len(cfg.ConcurrencyLimits) > 0 {
			guard = session.NewGuard(session.WithLogger(logger))
			for _, limit := range cfg.ConcurrencyLimits {
				guard.SetLimit(limit.Action, limit.Limit)
			}
		}

		controller, err := host.New(host.Config{
			APIKey:   cfg.APIKey,
			Endpoint: cfg.Endpoint,
			LogLevel: cfg.LogLevel,
			Actions:  table,
			Logger:   logger,
			Guard:    guard,
		})
		if err != nil {
			fmt.Printf("Error constructing host: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := host.ListenForShutdown()
		defer stop()

		if addr, _ := cmd.Flags().GetString("http-dashboard-addr"); addr != "" {
			handler, err := httpdash.NewHandler(controller, nil)
			if err != nil {
				fmt.Printf("Error building debug dashboard: %v\n", err)
				os.Exit(1)
			}
			dashboard := &http.Server{Addr: addr, Handler: handler}
			go func() {
				logger.Info("actionhost: debug dashboard listening", "addr", addr)
				if err := dashboard.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("actionhost: debug dashboard failed", "err", err)
				}
			}()
			defer dashboard.Close()
		}

		runErr := controller.Run(ctx)

		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := controller.Close(drainCtx); err != nil {
			logger.Warn("actionhost: transactions still in flight at shutdown deadline", "err", err)
		}

		if runErr != nil {
			fmt.Printf("Host stopped: %v\n", runErr)
			os.Exit(1)
		}
	},
}

func runDryRun(actionName, scriptPath string) {
	table := defaultActions()
	action, ok := table.Lookup(actionName)
	if !ok {
		fmt.Printf("Unknown action %q. Available: %v\n", actionName, table.Names())
		os.Exit(1)
	}

	var prompter cli.Prompter
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			fmt.Printf("Error reading script: %v\n", err)
			os.Exit(1)
		}
		scripted, err := cli.LoadScript(data)
		if err != nil {
			fmt.Printf("Error parsing script: %v\n", err)
			os.Exit(1)
		}
		prompter = scripted
	}

	cli.PrintBanner()

	runner, err := cli.NewRunner(nil, prompter, logging.New(slog.LevelInfo))
	if err != nil {
		fmt.Printf("Error building dry-run runner: %v\n", err)
		os.Exit(1)
	}

	result, err := runner.Run(context.Background(), action)
	if err != nil {
		fmt.Printf("Action failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Action returned: %v\n", result)
}

func logLevelFor(level string) slog.Level {
	if level == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "Run one action against a local terminal instead of the coordinator")
	runCmd.Flags().String("action", "greet", "Action name to run with --dry-run")
	runCmd.Flags().String("script", "", "YAML file of scripted answers for a headless --dry-run")
	runCmd.Flags().Bool("mcp", false, "Serve the action table over MCP (stdio) instead of connecting to the coordinator")
	runCmd.Flags().String("http-dashboard-addr", "", "If set, also serve the read-only debug dashboard on this address (e.g. :9090)")
}
