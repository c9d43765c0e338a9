package udp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxDatagram  = 1024
	writeTimeout = 5 * time.Second
)

// Tap mirrors events to a remote collector as JSON datagrams. Send never
// blocks; datagrams that do not fit the queue are dropped.
type Tap struct {
	conn  *net.UDPConn
	queue chan []byte
	log   *logrus.Entry
}

func Dial(address string, log *logrus.Entry) (*Tap, error) {
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve tap address %s: %w", address, err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial tap %s: %w", address, err)
	}

	return &Tap{
		conn:  conn,
		queue: make(chan []byte, 64),
		log:   log.WithFields(logrus.Fields{"component": "udp-tap", "remote": raddr.String()}),
	}, nil
}

// Send queues v for delivery and reports whether it was accepted.
func (t *Tap) Send(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		t.log.WithError(err).Warn("could not encode datagram")
		return false
	}
	if len(data) > maxDatagram {
		t.log.WithField("bytes", len(data)).Warn("datagram too large")
		return false
	}

	select {
	case t.queue <- data:
		return true
	default:
		return false
	}
}

// Run writes queued datagrams until ctx is done, then closes the socket.
func (t *Tap) Run(ctx context.Context) {
	defer t.conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-t.queue:
			if err := t.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				t.log.WithError(err).Warn("set write deadline")
				continue
			}
			n, err := t.conn.Write(data)
			if err != nil {
				t.log.WithError(err).Debug("datagram write failed")
				continue
			}
			t.log.WithField("bytes", n).Trace("datagram written")
		}
	}
}
