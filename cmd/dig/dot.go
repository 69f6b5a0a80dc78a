package main

import (
	"github.com/aretw0/dig/internal/cli"
	"github.com/spf13/cobra"
)

var dotCmd = &cobra.Command{
	Use:   "dot <slug>",
	Short: "Print the DOT source of one page without writing files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunDot(ctx, stack, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(dotCmd)
}
