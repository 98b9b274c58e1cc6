package main

import (
	"fmt"
	"os"

	"github.com/aretw0/actionhost/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a config file and the registered action table without connecting",
	Long: `Parses the config file and confirms every name under actions:
resolves to a registered action, without opening a connection to the
coordinator. Catches typos and missing apiKey before a deploy.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config and action table are valid.")
	},
}

func runValidate(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	table := defaultActions()
	for _, name := range cfg.Actions {
		if _, ok := table.Lookup(name); !ok {
			return fmt.Errorf("actions: %q is listed in %s but not registered (have: %v)", name, configPath, table.Names())
		}
	}

	for _, limit := range cfg.ConcurrencyLimits {
		if _, ok := table.Lookup(limit.Action); !ok {
			return fmt.Errorf("concurrencyLimits: %q is not a registered action", limit.Action)
		}
		if limit.Limit <= 0 {
			return fmt.Errorf("concurrencyLimits: %q has a non-positive limit %d", limit.Action, limit.Limit)
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
