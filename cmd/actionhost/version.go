package main

import (
	"fmt"

	"github.com/aretw0/actionhost"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the actionhost version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("actionhost version %s\n", actionhost.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
