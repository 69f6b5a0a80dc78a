package main

import (
	"github.com/aretw0/dig/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves build status, reports, DOT sources, images and metrics, and accepts rebuild requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = stack.Config.Server.Addr
		}
		build, _ := cmd.Flags().GetBool("build")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunServe(ctx, stack, cli.ServeOptions{Addr: addr, BuildOnStart: build})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config)")
	serveCmd.Flags().Bool("build", false, "Start a build as soon as the server is up")
}
