package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/transitmap/internal/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "transitmap",
		Short: "transitmap - interactive transit map viewer",
		Long: `transitmap builds and serves an interactive SVG transit map: pan, zoom,
station tooltips and full screen, in the browser through WebAssembly or
directly in the terminal.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Path to the configuration file")

	load := func() *config.Config { return loadConfig(configPath) }

	rootCmd.AddCommand(newDevCommand(load))
	rootCmd.AddCommand(newBuildCommand(load))
	rootCmd.AddCommand(newExploreCommand(load))
	rootCmd.AddCommand(newGenMapCommand(load))
	rootCmd.AddCommand(newInitCommand(&configPath))
	return rootCmd
}

// loadConfig reads the configuration, falling back to defaults on error
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("⚠️  Failed to load %s: %v (using defaults)", path, err)
		return config.DefaultConfig()
	}
	return cfg
}
