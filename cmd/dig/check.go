package main

import (
	"github.com/aretw0/dig/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the site for missing, unreachable and troubled pages",
	Long:  `Crawls bracket links from the root page and reports dead links, unreachable pages and items that break the page schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunCheck(ctx, stack, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
