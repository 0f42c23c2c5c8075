package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/transitmap/internal/config"
	"github.com/recera/transitmap/internal/svgmap"
)

func newGenMapCommand(load func() *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "gen-map",
		Short: "Generate the demo transit map",
		Long:  `Writes a sample SVG network whose stations follow the marker conventions the viewer recognizes. Use -o - for stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = load().MapPath()
			}
			if output == "-" {
				return svgmap.Generate(cmd.OutOrStdout(), svgmap.DemoNetwork())
			}
			if err := writeMap(output); err != nil {
				return err
			}
			log.Printf("🗺️  Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the configured map)")
	return cmd
}

func writeMap(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map: %w", err)
	}
	if err := svgmap.Generate(f, svgmap.DemoNetwork()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write map: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close map: %w", err)
	}
	return nil
}
