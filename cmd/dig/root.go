package main

import (
	"fmt"
	"os"

	"github.com/aretw0/dig/internal/cli"
	"github.com/aretw0/dig/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dig",
	Short: "dig draws Graphviz diagrams of a federated wiki",
	Long: `dig fetches every page of a federated wiki site, evaluates the diagram
program of each graphviz item against the fetched pages, and renders the
resulting DOT into PNG images.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "Path to the dig configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("site", "", "Wiki site to build (overrides config)")
}

// newStack loads the configuration named by the persistent flags and wires an engine.
func newStack(cmd *cobra.Command) (*cli.Stack, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	site, _ := cmd.Flags().GetString("site")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if site != "" {
		cfg.Site = site
	}
	logger := cli.NewLogger(cfg, debug, os.Stderr)
	return cli.NewStack(cmd.Context(), cfg, logger)
}
