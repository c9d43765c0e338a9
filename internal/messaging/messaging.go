package messaging

import (
	"github.com/azaurus1/vanetsim/internal/types"
	"github.com/azaurus1/vanetsim/internal/vehicle"
	"github.com/sirupsen/logrus"
)

// Neighborhood answers which vehicles are in range of vehicle i.
// *radio.Index satisfies it.
type Neighborhood interface {
	Neighbors(i int) []int
}

// Stats summarises one drain pass.
type Stats struct {
	Beacons    int `json:"beacons"`
	Alerts     int `json:"alerts"`
	Duplicates int `json:"duplicates"`
	Relays     int `json:"relays"`
}

type Engine struct {
	neighborTimeoutMs int64
	log               *logrus.Entry
}

func NewEngine(neighborTimeoutMs int64, log *logrus.Entry) *Engine {
	return &Engine{
		neighborTimeoutMs: neighborTimeoutMs,
		log:               log.WithField("component", "messaging"),
	}
}

// Broadcast puts msg into the inbox of every vehicle in range of
// vehicles[from] and returns how many received it.
func (e *Engine) Broadcast(vehicles []*vehicle.Vehicle, air Neighborhood, from int, msg types.Message) int {
	receivers := air.Neighbors(from)
	for _, j := range receivers {
		if j >= 0 && j < len(vehicles) {
			vehicles[j].Deliver(msg)
		}
	}
	return len(receivers)
}

// EmitBeacons sends one beacon from every vehicle.
func (e *Engine) EmitBeacons(vehicles []*vehicle.Vehicle, air Neighborhood, nowMs int64) int {
	deliveries := 0
	for i, v := range vehicles {
		msg := types.NewBeacon(v.ID, v.Lat(), v.Lon(), v.SpeedKmh, nowMs)
		deliveries += e.Broadcast(vehicles, air, i, msg)
		v.Sent++
	}
	return deliveries
}

// Drain consumes every inbox once. Inboxes are detached before any message
// is handled, so relays produced here wait for the next drain.
func (e *Engine) Drain(vehicles []*vehicle.Vehicle, air Neighborhood, nowMs int64) Stats {
	inboxes := make([][]types.Message, len(vehicles))
	for i, v := range vehicles {
		inboxes[i] = v.TakeInbox()
	}

	var stats Stats
	for i, v := range vehicles {
		for _, msg := range inboxes[i] {
			switch msg.Kind {
			case types.Beacon:
				v.Received++
				v.Neighbors.HandleHello(msg, nowMs, e.neighborTimeoutMs)
				stats.Beacons++
			case types.Alert:
				e.handleAlert(vehicles, air, i, msg, nowMs, &stats)
			}
		}
		v.Neighbors.CheckExpiredNeighbours(nowMs)
	}

	return stats
}

func (e *Engine) handleAlert(vehicles []*vehicle.Vehicle, air Neighborhood, i int, msg types.Message, nowMs int64, stats *Stats) {
	v := vehicles[i]
	if !v.MarkProcessed(msg.MessageID) {
		stats.Duplicates++
		return
	}

	v.Received++
	v.ReceivedAlert = true
	v.ReceivedAlertAtMs = nowMs
	stats.Alerts++

	if !msg.Relayable() {
		return
	}

	relay := msg.RelayCopy()
	n := e.Broadcast(vehicles, air, i, relay)
	v.Relayed++
	stats.Relays++

	e.log.WithFields(logrus.Fields{
		"vehicle":    v.ID,
		"message_id": msg.MessageID,
		"ttl":        relay.TTL,
		"receivers":  n,
	}).Debug("alert relayed")
}
