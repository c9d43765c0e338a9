/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azaurus1/vanetsim/internal/sim"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	runDuration time.Duration
	runReport   time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, clock, err := newSimulation(ctx)
		if err != nil {
			return err
		}

		alerts := 0
		s.Subscribe(func(e sim.AlertEvent) {
			alerts++
			logger.WithField("vehicle", e.VehicleID).Info("emergency alert raised")
		})

		if runDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runDuration)
			defer cancel()
		}

		go report(ctx, s, runReport)

		clock.Start()
		err = clock.Run(ctx)
		clock.Pause()

		snap := s.Snapshot()
		logger.WithFields(logrus.Fields{
			"sim_ms":   snap.TimeMs,
			"vehicles": len(snap.Vehicles),
			"alerts":   alerts,
		}).Info("simulation finished")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	},
}

func report(ctx context.Context, s *sim.Simulation, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.Snapshot()
			logger.WithFields(logrus.Fields{
				"sim_ms":     snap.TimeMs,
				"links":      len(snap.Links),
				"beacons":    snap.Stats.Beacons,
				"alerts":     snap.Stats.Alerts,
				"relays":     snap.Stats.Relays,
				"duplicates": snap.Stats.Duplicates,
			}).Info("tick stats")
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "stop after this much wall time (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&runReport, "report", 5*time.Second, "interval between stats log lines (0 disables)")
}
