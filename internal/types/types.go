package types

import (
	"github.com/google/uuid"
)

type Kind int

const (
	// Beacon is the periodic single-hop awareness message.
	Beacon Kind = iota
	// Alert is the event-driven flooded emergency-stop message.
	Alert
)

func (k Kind) String() string {
	switch k {
	case Beacon:
		return "beacon"
	case Alert:
		return "alert"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Message struct {
	Kind        Kind    `json:"kind"`
	SenderID    int     `json:"sender_id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	SpeedKmh    float64 `json:"speed_kmh"`
	TimestampMs int64   `json:"timestamp_ms"`
	TTL         int     `json:"ttl"`
	// MessageID is assigned at origin and survives every relay.
	MessageID string `json:"message_id"`
}

func NewBeacon(senderID int, lat, lon, speedKmh float64, nowMs int64) Message {
	return Message{
		Kind:        Beacon,
		SenderID:    senderID,
		Lat:         lat,
		Lon:         lon,
		SpeedKmh:    speedKmh,
		TimestampMs: nowMs,
		TTL:         1,
		MessageID:   uuid.NewString(),
	}
}

func NewAlert(senderID int, lat, lon, speedKmh float64, nowMs int64, ttl int) Message {
	return Message{
		Kind:        Alert,
		SenderID:    senderID,
		Lat:         lat,
		Lon:         lon,
		SpeedKmh:    speedKmh,
		TimestampMs: nowMs,
		TTL:         ttl,
		MessageID:   uuid.NewString(),
	}
}

// Relayable reports whether a relay copy may be built from m.
func (m Message) Relayable() bool {
	return m.Kind == Alert && m.TTL-1 > 0
}

// RelayCopy returns m with one hop consumed. Everything else, the
// message id included, is carried over from the origin.
func (m Message) RelayCopy() Message {
	relayed := m
	relayed.TTL = m.TTL - 1
	return relayed
}
