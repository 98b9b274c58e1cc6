package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "actionhost",
	Short: "actionhost runs a Host process for the Interactive Action Host SDK",
	Long: `actionhost connects a table of registered Go actions to a remote
coordinator over a duplex RPC socket, so a human operator can drive each
action's render loop from a browser while the action itself runs here.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "actionhost.yaml", "Path to the host configuration file")
}
