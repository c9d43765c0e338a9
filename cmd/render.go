/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"

	"github.com/azaurus1/vanetsim/internal/renderer"
	"github.com/gopxl/pixel/v2/backends/opengl"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a simulation",
	Long: `Open a window showing roads, vehicles, radio links and the density
heatmap. Space pauses and resumes, 1-4 pick the speed multiplier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s, clock, err := newSimulation(ctx)
		if err != nil {
			return err
		}

		go clock.Run(ctx)
		clock.Start()

		opengl.Run(func() { renderer.Run(s, clock, logrus.NewEntry(logger)) })
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
