package main

import (
	"fmt"

	"github.com/aretw0/pagecraft"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pagecraft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pagecraft version %s\n", pagecraft.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
