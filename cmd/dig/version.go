package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dig"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dig",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dig version %s\n", strings.TrimSpace(dig.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
