package main

import (
	"github.com/spf13/cobra"

	"github.com/recera/transitmap/internal/config"
	"github.com/recera/transitmap/internal/explorer"
	"github.com/recera/transitmap/internal/svgmap"
)

func newExploreCommand(load func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "explore [map.svg]",
		Short: "Explore a transit map in the terminal",
		Long: `Opens the map in an interactive terminal view. Drag with the mouse to pan,
scroll to zoom, hover or tab through stations. Defaults to the configured map.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			path := cfg.MapPath()
			if len(args) == 1 {
				path = args[0]
			}

			doc, err := svgmap.ParseFile(path)
			if err != nil {
				return err
			}
			return explorer.Run(cmd.Context(), doc, cfg.ViewerOptions())
		},
	}
}
