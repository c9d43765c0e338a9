/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/azaurus1/vanetsim/internal/sim"
	"github.com/azaurus1/vanetsim/internal/udp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var monitorAddr string

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Log alerts mirrored by a simulation's --alert-tap",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logrus.NewEntry(logger)
		l, err := udp.Listen(monitorAddr, log)
		if err != nil {
			return err
		}
		log.WithField("addr", l.Addr().String()).Info("waiting for alerts")

		return l.Serve(ctx, func(from net.Addr, payload []byte) {
			var e sim.AlertEvent
			if err := json.Unmarshal(payload, &e); err != nil {
				log.WithError(err).WithField("from", from.String()).Warn("ignoring malformed datagram")
				return
			}
			log.WithFields(logrus.Fields{
				"from":    from.String(),
				"vehicle": e.VehicleID,
				"at_ms":   e.AtMs,
			}).Info("alert")
		})
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVar(&monitorAddr, "listen", ":50000", "UDP address to listen on")
}
