package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Sudo-Ivan/jacked-api/jacked"
	"github.com/azaurus1/vanetsim/internal/sim"
	"github.com/sirupsen/logrus"
)

// Server exposes post-tick snapshots over HTTP and streams alert
// notifications over SSE. It never touches live simulation state.
type Server struct {
	sim   *sim.Simulation
	clock *sim.Clock
	hub   *Hub
	log   *logrus.Entry
}

type stopRequest struct {
	VehicleID int `json:"vehicle_id"`
}

type clockRequest struct {
	Running    *bool    `json:"running,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
}

type clockState struct {
	Running    bool    `json:"running"`
	Multiplier float64 `json:"multiplier"`
}

func New(s *sim.Simulation, clock *sim.Clock, log *logrus.Entry) *Server {
	srv := &Server{
		sim:   s,
		clock: clock,
		hub:   NewHub(log),
		log:   log.WithField("component", "server"),
	}

	s.Subscribe(func(e sim.AlertEvent) {
		frame, err := sseFrame("alert", e)
		if err != nil {
			srv.log.WithError(err).Warn("dropping alert event")
			return
		}
		if !srv.hub.Publish(frame) {
			srv.log.WithField("vehicle", e.VehicleID).Warn("alert stream backlog full")
		}
	})

	return srv
}

// ListenAndServe serves until ctx is done or the listener fails.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	go srv.hub.Run(ctx)

	cfg := jacked.DefaultConfig()
	cfg.WriteTimeout = 5 * time.Minute
	cfg.IdleTimeout = 30 * time.Minute
	app := jacked.NewWithConfig(cfg)

	app.GET("/api/vehicles", srv.handleVehicles)
	app.GET("/api/links", srv.handleLinks)
	app.GET("/api/density", srv.handleDensity)
	app.GET("/api/stats", srv.handleStats)
	app.GET("/api/clock", srv.handleClock)
	app.POST("/api/clock", srv.handleSetClock)
	app.POST("/api/stop", srv.handleStop)
	app.GET("/api/events", srv.handleEvents)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.ListenAndServe(addr)
	}()
	srv.log.WithField("addr", addr).Info("http api listening")

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (srv *Server) handleVehicles(c *jacked.Context) error {
	snap := srv.sim.Snapshot()
	return c.JSON(http.StatusOK, snap.Vehicles)
}

func (srv *Server) handleLinks(c *jacked.Context) error {
	snap := srv.sim.Snapshot()
	return c.JSON(http.StatusOK, snap.Links)
}

func (srv *Server) handleDensity(c *jacked.Context) error {
	snap := srv.sim.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"cell_degrees": snap.DensityCellDegrees,
		"cells":        snap.Density,
	})
}

func (srv *Server) handleStats(c *jacked.Context) error {
	snap := srv.sim.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"time_ms":  snap.TimeMs,
		"vehicles": len(snap.Vehicles),
		"links":    len(snap.Links),
		"last":     snap.Stats,
	})
}

func (srv *Server) handleClock(c *jacked.Context) error {
	return c.JSON(http.StatusOK, clockState{Running: srv.clock.Running(), Multiplier: srv.clock.Multiplier()})
}

func (srv *Server) handleSetClock(c *jacked.Context) error {
	var req clockRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid clock request"})
	}
	defer c.Request.Body.Close()

	if req.Multiplier != nil {
		if err := srv.clock.SetMultiplier(*req.Multiplier); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	if req.Running != nil {
		if *req.Running {
			srv.clock.Start()
		} else {
			srv.clock.Pause()
		}
	}

	return srv.handleClock(c)
}

func (srv *Server) handleStop(c *jacked.Context) error {
	var req stopRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid stop request"})
	}
	defer c.Request.Body.Close()

	if err := srv.sim.TriggerStop(req.VehicleID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sim.ErrUnknownVehicle) {
			status = http.StatusNotFound
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	srv.log.WithField("vehicle", req.VehicleID).Info("emergency stop requested")
	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func (srv *Server) handleEvents(c *jacked.Context) error {
	c.Response.Header().Set("Content-Type", "text/event-stream")
	c.Response.Header().Set("Cache-Control", "no-cache")
	c.Response.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Response.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
	}

	client := &Client{
		ID:   c.Request.RemoteAddr,
		Send: make(chan []byte, 256),
	}
	if !srv.hub.Register(client) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
	}
	defer srv.hub.Unregister(client)

	for {
		select {
		case message, open := <-client.Send:
			if !open {
				return nil
			}
			if _, err := c.Response.Write(message); err != nil {
				srv.log.WithError(err).WithField("client", client.ID).Debug("sse write failed")
				return nil
			}
			flusher.Flush()
		case <-c.Request.Context().Done():
			return nil
		}
	}
}
