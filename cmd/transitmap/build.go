package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recera/transitmap/internal/config"
	"github.com/recera/transitmap/internal/wasmbuild"
)

func newBuildCommand(load func() *config.Config) *cobra.Command {
	var output string
	var optimize bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site for production",
		Long:  `Compiles the WebAssembly client and assembles a deployable copy of the site.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), load(), output, optimize)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "dist", "Output directory")
	cmd.Flags().BoolVar(&optimize, "optimize", true, "Strip debug information and optimize for size")

	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config, output string, optimize bool) error {
	log.Println("🚀 Building transit map site for production...")

	if err := checkOutputDir(output, cfg.Site.PublicDir); err != nil {
		return err
	}
	if err := os.RemoveAll(output); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Printf("🔨 Building WASM with %s...", cfg.Site.Compiler)
	if err := wasmbuild.Build(ctx, buildOptions(cfg, output, optimize)); err != nil {
		return err
	}

	log.Println("📁 Copying static files...")
	if info, err := os.Stat(cfg.Site.PublicDir); err == nil && info.IsDir() {
		skipWasm := func(rel string) bool { return strings.HasSuffix(rel, ".wasm") }
		if err := wasmbuild.CopyDir(cfg.Site.PublicDir, output, skipWasm); err != nil {
			return fmt.Errorf("failed to copy static files: %w", err)
		}
	}

	log.Println("📄 Copying wasm_exec.js...")
	if err := wasmbuild.CopyWasmExec(ctx, cfg.Site.Compiler, output); err != nil {
		return fmt.Errorf("failed to copy wasm_exec.js: %w", err)
	}

	reportBuildSizes(output, filepath.Join(output, cfg.Site.WasmOutput))
	return nil
}

// checkOutputDir refuses an output directory whose removal would delete the
// site sources: the working directory, the public directory or any of their
// ancestors. An output inside the public directory would be copied into itself.
func checkOutputDir(output, publicDir string) error {
	out, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	protected := []string{cwd}
	if publicDir != "" {
		pub, err := filepath.Abs(publicDir)
		if err != nil {
			return fmt.Errorf("invalid public directory: %w", err)
		}
		if within(out, pub) {
			return fmt.Errorf("output directory %s is inside the public directory %s", output, publicDir)
		}
		protected = append(protected, pub)
	}
	for _, dir := range protected {
		if within(dir, out) {
			return fmt.Errorf("refusing to use %s as output directory: it contains %s", output, dir)
		}
	}
	return nil
}

// within reports whether path equals dir or lies below it
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func reportBuildSizes(output, wasmPath string) {
	if info, err := os.Stat(wasmPath); err == nil {
		log.Printf("  WASM:        %s", wasmbuild.FormatSize(info.Size()))
		if gz, err := wasmbuild.GzipSize(wasmPath); err == nil {
			log.Printf("  WASM (gzip): %s", wasmbuild.FormatSize(gz))
		}
	}
	log.Printf("  Total:       %s", wasmbuild.FormatSize(wasmbuild.DirSize(output)))
	log.Printf("✨ Build output: %s", output)
}
