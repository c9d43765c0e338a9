package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/azaurus1/vanetsim/internal/alert"
	"github.com/azaurus1/vanetsim/internal/config"
	"github.com/azaurus1/vanetsim/internal/messaging"
	"github.com/azaurus1/vanetsim/internal/radio"
	"github.com/azaurus1/vanetsim/internal/roadnet"
	"github.com/azaurus1/vanetsim/internal/vehicle"
	"github.com/sirupsen/logrus"
)

var (
	ErrRunning           = errors.New("simulation is running")
	ErrUnknownVehicle    = errors.New("unknown vehicle")
	ErrUnknownMultiplier = errors.New("unknown speed multiplier")
)

// Simulation owns the vehicles and runs the per-tick pipeline:
// speeds, mobility, proximity, alert detection, message drain.
// Presentation code only ever sees published snapshots.
type Simulation struct {
	cfg config.Config
	rng vehicle.Rand
	log *logrus.Entry

	engine   *messaging.Engine
	detector *alert.Detector

	mu           sync.Mutex
	running      bool
	graph        *roadnet.Graph
	mobility     *vehicle.Mobility
	vehicles     []*vehicle.Vehicle
	byID         map[int]*vehicle.Vehicle
	air          *radio.Index
	stopRequests []int

	snapMu   sync.RWMutex
	snapshot Snapshot

	events eventBus
}

func New(cfg config.Config, rng vehicle.Rand, log *logrus.Entry) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}

	engine := messaging.NewEngine(cfg.NeighborTimeout.Milliseconds(), log)
	s := &Simulation{
		cfg:      cfg,
		rng:      rng,
		log:      log.WithField("component", "sim"),
		engine:   engine,
		detector: alert.NewDetector(cfg, engine, log),
		mobility: vehicle.NewMobility(nil, rng),
	}
	s.snapshot = Snapshot{DensityCellDegrees: cfg.DensityCellDegrees}

	return s, nil
}

// LoadNetwork swaps in a new road network and regenerates the whole fleet.
// It is only valid while the clock is halted.
func (s *Simulation) LoadNetwork(g *roadnet.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("load network: %w", ErrRunning)
	}

	s.graph = g
	s.mobility = vehicle.NewMobility(g, s.rng)
	s.regenerate()

	s.log.WithFields(logrus.Fields{
		"nodes":    g.NodeCount(),
		"edges":    g.EdgeCount(),
		"vehicles": len(s.vehicles),
	}).Info("road network loaded")
	return nil
}

// SetVehicleCount regenerates the fleet with n vehicles on the current network.
func (s *Simulation) SetVehicleCount(n int) error {
	if n < 0 {
		return fmt.Errorf("set vehicle count %d: %w", n, config.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("set vehicle count: %w", ErrRunning)
	}

	s.cfg.VehicleCount = n
	s.regenerate()

	s.log.WithField("vehicles", len(s.vehicles)).Info("fleet regenerated")
	return nil
}

// TriggerStop asks vehicle id to brake to a halt at the start of the next tick.
func (s *Simulation) TriggerStop(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("trigger stop %d: %w", id, ErrUnknownVehicle)
	}
	s.stopRequests = append(s.stopRequests, id)
	return nil
}

// Subscribe registers h for alert notifications. Handlers run on the tick
// goroutine after the tick completes and must not block.
func (s *Simulation) Subscribe(h AlertHandler) {
	s.events.subscribe(h)
}

// Graph returns the current road network, which is immutable.
func (s *Simulation) Graph() *roadnet.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

func (s *Simulation) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Tick advances the simulation by dt simulated seconds at wall time nowMs.
// With no vehicles it does nothing.
func (s *Simulation) Tick(dt float64, nowMs int64) {
	s.mu.Lock()

	if len(s.vehicles) == 0 {
		s.mu.Unlock()
		return
	}

	s.applySpeeds(dt, nowMs)
	for _, v := range s.vehicles {
		s.mobility.Advance(v, dt)
	}

	s.air = radio.Build(s.vehicles, s.cfg.ConnectivityCellDegrees)
	triggered := s.detector.Scan(s.vehicles, s.air, nowMs)
	stats := s.engine.Drain(s.vehicles, s.air, nowMs)
	s.expireReceivedAlerts(nowMs)

	snap := s.buildSnapshot(nowMs, stats)
	s.mu.Unlock()

	s.publish(snap)

	if len(triggered) > 0 || stats.Relays > 0 {
		s.log.WithFields(logrus.Fields{
			"alerts":     len(triggered),
			"received":   stats.Alerts,
			"relays":     stats.Relays,
			"duplicates": stats.Duplicates,
			"beacons":    stats.Beacons,
		}).Debug("tick")
	}

	for _, id := range triggered {
		s.events.emit(AlertEvent{VehicleID: id, AtMs: nowMs})
	}
}

// EmitBeacons sends one beacon from every vehicle. They are consumed by
// the next tick's drain.
func (s *Simulation) EmitBeacons(nowMs int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.vehicles) == 0 {
		return 0
	}
	if s.air == nil {
		s.air = radio.Build(s.vehicles, s.cfg.ConnectivityCellDegrees)
	}
	return s.engine.EmitBeacons(s.vehicles, s.air, nowMs)
}

func (s *Simulation) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

func (s *Simulation) regenerate() {
	s.vehicles = s.mobility.Scatter(s.cfg.VehicleCount, vehicle.Placement{
		MinRadiusMeters:     s.cfg.MinRadiusMeters,
		MaxRadiusMeters:     s.cfg.MaxRadiusMeters,
		MinSeparationMeters: s.cfg.MinSeparationMeters,
	})
	if len(s.vehicles) < s.cfg.VehicleCount && !s.graph.Empty() {
		s.log.WithFields(logrus.Fields{
			"requested": s.cfg.VehicleCount,
			"placed":    len(s.vehicles),
		}).Warn("not every vehicle could be placed")
	}

	s.byID = make(map[int]*vehicle.Vehicle, len(s.vehicles))
	for _, v := range s.vehicles {
		s.byID[v.ID] = v
	}
	s.air = nil
	s.stopRequests = nil

	s.publish(s.buildSnapshot(0, messaging.Stats{}))
}

// applySpeeds starts requested and random emergency stops, then sets each
// vehicle's speed for this tick: zero while stopped, else its cruise speed.
func (s *Simulation) applySpeeds(dt float64, nowMs int64) {
	stopFor := s.cfg.StopDuration.Milliseconds()

	for _, id := range s.stopRequests {
		if v, ok := s.byID[id]; ok {
			v.StoppedUntilMs = nowMs + stopFor
		}
	}
	s.stopRequests = nil

	p := s.cfg.StopRatePerSecond * dt
	for _, v := range s.vehicles {
		if p > 0 && !v.Stopped(nowMs) && s.rng.Float64() < p {
			v.StoppedUntilMs = nowMs + stopFor
		}

		if v.Stopped(nowMs) {
			v.SpeedKmh = 0
		} else {
			v.SpeedKmh = v.CruiseSpeedKmh
		}
	}
}

func (s *Simulation) expireReceivedAlerts(nowMs int64) {
	hold := s.cfg.ReceivedAlertHold.Milliseconds()
	for _, v := range s.vehicles {
		if v.ReceivedAlert && nowMs-v.ReceivedAlertAtMs >= hold {
			v.ReceivedAlert = false
		}
	}
}
