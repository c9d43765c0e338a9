/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/azaurus1/vanetsim/internal/osmload"
	"github.com/azaurus1/vanetsim/internal/sim"
	"github.com/azaurus1/vanetsim/internal/udp"
	"github.com/sirupsen/logrus"
)

var errNoOSM = errors.New("no road network given, pass --osm")

// newSimulation builds a simulation with the configured fleet placed on the
// network from --osm, and a halted clock driving it. With --alert-tap set,
// alerts are mirrored over UDP until ctx is done.
func newSimulation(ctx context.Context) (*sim.Simulation, *sim.Clock, error) {
	if osmPath == "" {
		return nil, nil, errNoOSM
	}

	log := logrus.NewEntry(logger)

	g, err := osmload.NewLoader(log).LoadFile(ctx, osmPath)
	if err != nil {
		return nil, nil, err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.WithField("seed", seed).Debug("seeding simulation")

	s, err := sim.New(cfg, rand.New(rand.NewSource(seed)), log)
	if err != nil {
		return nil, nil, err
	}
	if err := s.LoadNetwork(g); err != nil {
		return nil, nil, err
	}

	if tapAddr != "" {
		tap, err := udp.Dial(tapAddr, log)
		if err != nil {
			return nil, nil, err
		}
		go tap.Run(ctx)
		s.Subscribe(func(e sim.AlertEvent) {
			if !tap.Send(e) {
				log.WithField("vehicle", e.VehicleID).Debug("alert tap queue full")
			}
		})
	}

	return s, sim.NewClock(s, sim.NewSystemClock(), log), nil
}
