package main

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/transitmap/internal/config"
)

//go:embed scaffold
var scaffold embed.FS

// modulePackage is the client built when the site has no client of its own
const modulePackage = "github.com/recera/transitmap/app/client"

func newInitCommand(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a transit map site",
		Long:  `Writes transitmap.yaml, a page hosting the viewer, its stylesheet and the demo map. Existing files are kept unless --force is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, *configPath, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	return cmd
}

func runInit(dir, configName string, force bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	cfg := config.DefaultConfig()
	if _, err := os.Stat(filepath.Join(dir, "app", "client")); os.IsNotExist(err) {
		cfg.Site.ClientMain = modulePackage
	}
	public := filepath.Join(dir, cfg.Site.PublicDir)

	steps := []struct {
		path  string
		write func(path string) error
	}{
		{filepath.Join(dir, configName), cfg.Save},
		{filepath.Join(public, "index.html"), copyScaffold("scaffold/index.html")},
		{filepath.Join(public, "style.css"), copyScaffold("scaffold/style.css")},
		{filepath.Join(public, cfg.Site.MapFile), writeMap},
	}

	for _, step := range steps {
		if _, err := os.Stat(step.path); err == nil && !force {
			log.Printf("⏭️  %s exists, skipping", step.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(step.path), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(step.path), err)
		}
		if err := step.write(step.path); err != nil {
			return err
		}
		log.Printf("✅ Created %s", step.path)
	}

	log.Println("✨ Run `transitmap dev` to start the dev server")
	return nil
}

func copyScaffold(name string) func(path string) error {
	return func(path string) error {
		content, err := scaffold.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}
}
