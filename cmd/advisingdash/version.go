package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"advisingdash/internal/app"
	"advisingdash/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of advisingdash",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "advisingdash %s", config.AppVersion)
		if app.BuildTime != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (built %s)", app.BuildTime)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
