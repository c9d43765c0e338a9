package vehicle

import (
	"github.com/azaurus1/vanetsim/internal/routing"
	"github.com/azaurus1/vanetsim/internal/types"
	"github.com/paulmach/orb"
)

// Unassigned marks a vehicle that is not on any edge.
const Unassigned = -1

// Vehicle is owned by the tick pipeline. Nothing outside a tick may
// mutate it.
type Vehicle struct {
	ID                       int
	Position                 orb.Point
	SpeedKmh                 float64
	PreviousSpeedKmh         float64
	CruiseSpeedKmh           float64
	TransmissionRadiusMeters float64
	Highway                  string

	EdgeIndex      int
	PositionOnEdge float64
	MovingForward  bool

	Inbox     []types.Message
	Processed map[string]struct{}
	Neighbors routing.NeighborTable

	Sent     int
	Received int
	Relayed  int

	// Observed is false until the alert detector has recorded a first speed.
	Observed          bool
	ActiveAlert       bool
	AlertAtMs         int64
	ReceivedAlert     bool
	ReceivedAlertAtMs int64

	StoppedUntilMs int64
}

func New(id int) *Vehicle {
	return &Vehicle{
		ID:            id,
		EdgeIndex:     Unassigned,
		MovingForward: true,
		Processed:     make(map[string]struct{}),
		Neighbors:     routing.NewNeighborTable(),
	}
}

func (v *Vehicle) Lat() float64 { return v.Position.Lat() }
func (v *Vehicle) Lon() float64 { return v.Position.Lon() }

// Deliver queues msg for the next drain.
func (v *Vehicle) Deliver(msg types.Message) {
	v.Inbox = append(v.Inbox, msg)
}

// TakeInbox empties the inbox and returns what it held.
func (v *Vehicle) TakeInbox() []types.Message {
	inbox := v.Inbox
	v.Inbox = nil
	return inbox
}

// MarkProcessed records id and reports whether it was new.
func (v *Vehicle) MarkProcessed(id string) bool {
	if v.Processed == nil {
		v.Processed = make(map[string]struct{})
	}
	if _, seen := v.Processed[id]; seen {
		return false
	}
	v.Processed[id] = struct{}{}
	return true
}

func (v *Vehicle) Stopped(nowMs int64) bool {
	return v.StoppedUntilMs > nowMs
}
