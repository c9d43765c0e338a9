package alert

import (
	"github.com/azaurus1/vanetsim/internal/config"
	"github.com/azaurus1/vanetsim/internal/messaging"
	"github.com/azaurus1/vanetsim/internal/types"
	"github.com/azaurus1/vanetsim/internal/vehicle"
	"github.com/sirupsen/logrus"
)

// Detector flags abrupt near-stops and originates the alert flood for them.
type Detector struct {
	lowSpeedKmh float64
	minDropKmh  float64
	holdMs      int64
	ttl         int
	engine      *messaging.Engine
	log         *logrus.Entry
}

func NewDetector(cfg config.Config, engine *messaging.Engine, log *logrus.Entry) *Detector {
	return &Detector{
		lowSpeedKmh: cfg.LowSpeedKmh,
		minDropKmh:  cfg.MinSpeedDropKmh,
		holdMs:      cfg.AlertHold.Milliseconds(),
		ttl:         cfg.AlertTTL,
		engine:      engine,
		log:         log.WithField("component", "alert"),
	}
}

// Observe compares v's speed with the one seen last tick and reports
// whether an emergency stop just happened. The first observation only
// records the speed.
func (d *Detector) Observe(v *vehicle.Vehicle, nowMs int64) bool {
	if v.ActiveAlert && nowMs-v.AlertAtMs >= d.holdMs {
		v.ActiveAlert = false
	}

	if !v.Observed {
		v.Observed = true
		v.PreviousSpeedKmh = v.SpeedKmh
		return false
	}

	prev, cur := v.PreviousSpeedKmh, v.SpeedKmh
	triggered := !v.ActiveAlert &&
		cur < d.lowSpeedKmh &&
		prev > d.lowSpeedKmh &&
		prev-cur >= d.minDropKmh

	v.PreviousSpeedKmh = cur
	if triggered {
		v.ActiveAlert = true
		v.AlertAtMs = nowMs
	}
	return triggered
}

// Scan observes every vehicle and floods an alert from each one that
// stopped abruptly. It returns the ids of those vehicles.
func (d *Detector) Scan(vehicles []*vehicle.Vehicle, air messaging.Neighborhood, nowMs int64) []int {
	var triggered []int
	for i, v := range vehicles {
		if !d.Observe(v, nowMs) {
			continue
		}

		msg := types.NewAlert(v.ID, v.Lat(), v.Lon(), v.SpeedKmh, nowMs, d.ttl)
		v.MarkProcessed(msg.MessageID)
		receivers := d.engine.Broadcast(vehicles, air, i, msg)
		v.Sent++
		triggered = append(triggered, v.ID)

		d.log.WithFields(logrus.Fields{
			"vehicle":    v.ID,
			"message_id": msg.MessageID,
			"speed":      v.SpeedKmh,
			"receivers":  receivers,
		}).Debug("emergency stop detected")
	}
	return triggered
}
