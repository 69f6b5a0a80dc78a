package main

import (
	"github.com/aretw0/dig/internal/cli"
	"github.com/aretw0/dig/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch the site, draw every diagram and publish the images",
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		stack, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunBuild(ctx, stack, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
