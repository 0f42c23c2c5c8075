package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recera/transitmap/internal/config"
	"github.com/recera/transitmap/internal/devserver"
	"github.com/recera/transitmap/internal/wasmbuild"
)

func newDevCommand(load func() *config.Config) *cobra.Command {
	var port int
	var host string
	var cwd string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long:  `Builds the WebAssembly client, serves the site and reloads open pages when sources or assets change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory to %s: %w", cwd, err)
				}
			}
			cfg := load()

			// CLI takes precedence
			if cmd.Flags().Changed("port") {
				cfg.Dev.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Dev.Host = host
			}
			return runDev(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 5173, "Port to run the dev server on")
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind the dev server to")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory of the site (defaults to current)")

	return cmd
}

func runDev(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wasmExec, err := resolveWasmExec(ctx, cfg.Site.Compiler)
	if err != nil {
		log.Printf("⚠️  %v", err)
	}

	build := func(ctx context.Context) error {
		return wasmbuild.Build(ctx, buildOptions(cfg, cfg.Site.PublicDir, false))
	}
	return devserver.New(cfg, build, wasmExec).Run(ctx)
}

func resolveWasmExec(ctx context.Context, compiler string) (string, error) {
	root, err := wasmbuild.Root(ctx, compiler)
	if err != nil {
		return "", err
	}
	return wasmbuild.FindWasmExec(compiler, root)
}

func buildOptions(cfg *config.Config, outDir string, optimize bool) wasmbuild.Options {
	return wasmbuild.Options{
		Compiler: cfg.Site.Compiler,
		Main:     cfg.Site.ClientMain,
		Output:   filepath.Join(outDir, cfg.Site.WasmOutput),
		Optimize: optimize,
	}
}
