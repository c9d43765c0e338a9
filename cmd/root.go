/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/azaurus1/vanetsim/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg       = config.DefaultConfig()
	osmPath   string
	tapAddr   string
	seed      int64
	logLevel  string
	logFormat string

	logger = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vanetsim",
	Short: "Simulate vehicles exchanging safety messages on a road network",
	Long: `vanetsim moves vehicles along an OpenStreetMap road network, links the
ones within radio range, and floods emergency-braking alerts hop by hop.

Run it headless, with a window, or behind an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&osmPath, "osm", "", "OpenStreetMap XML file to load the road network from")
	flags.StringVar(&tapAddr, "alert-tap", "", "UDP address to mirror alert events to")
	flags.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	flags.IntVar(&cfg.VehicleCount, "vehicles", cfg.VehicleCount, "number of vehicles to place")
	flags.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "wall time between simulation ticks")
	flags.DurationVar(&cfg.BeaconInterval, "beacon-interval", cfg.BeaconInterval, "wall time between beacon rounds")
	flags.Float64SliceVar(&cfg.SpeedMultipliers, "multipliers", cfg.SpeedMultipliers, "selectable speed multipliers")
	flags.IntVar(&cfg.AlertTTL, "alert-ttl", cfg.AlertTTL, "hop budget of a new alert")
	flags.Float64Var(&cfg.LowSpeedKmh, "low-speed", cfg.LowSpeedKmh, "speed in km/h below which a vehicle counts as stopped")
	flags.Float64Var(&cfg.MinSpeedDropKmh, "min-drop", cfg.MinSpeedDropKmh, "speed drop in km/h that counts as sudden braking")
	flags.DurationVar(&cfg.AlertHold, "alert-hold", cfg.AlertHold, "how long a raised alert stays active")
	flags.Float64Var(&cfg.MinRadiusMeters, "min-radius", cfg.MinRadiusMeters, "smallest transmission radius in meters")
	flags.Float64Var(&cfg.MaxRadiusMeters, "max-radius", cfg.MaxRadiusMeters, "largest transmission radius in meters")
	flags.Float64Var(&cfg.ConnectivityCellDegrees, "cell", cfg.ConnectivityCellDegrees, "connectivity grid cell size in degrees")
	flags.Float64Var(&cfg.DensityCellDegrees, "density-cell", cfg.DensityCellDegrees, "density heatmap cell size in degrees")
	flags.Float64Var(&cfg.StopRatePerSecond, "stop-rate", cfg.StopRatePerSecond, "per-vehicle chance per simulated second of an emergency stop")
	flags.DurationVar(&cfg.StopDuration, "stop-duration", cfg.StopDuration, "how long an emergency stop lasts")
}

func configureLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(logFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", logFormat)
	}
	return nil
}
