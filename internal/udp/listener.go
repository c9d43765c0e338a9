package udp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// Handler receives a copy of each datagram.
type Handler func(from net.Addr, payload []byte)

// Listener collects datagrams sent by a Tap.
type Listener struct {
	pc  net.PacketConn
	log *logrus.Entry
}

func Listen(address string, log *logrus.Entry) (*Listener, error) {
	pc, err := net.ListenPacket("udp", address)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", address, err)
	}
	return &Listener{
		pc:  pc,
		log: log.WithFields(logrus.Fields{"component": "udp-listener", "addr": pc.LocalAddr().String()}),
	}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.pc.LocalAddr()
}

// Serve hands every datagram to h until ctx is done. It returns nil on
// cancellation and the read error otherwise.
func (l *Listener) Serve(ctx context.Context, h Handler) error {
	defer l.pc.Close()

	go func() {
		<-ctx.Done()
		l.pc.Close()
	}()

	buffer := make([]byte, maxDatagram)
	for {
		n, addr, err := l.pc.ReadFrom(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				l.log.Debug("listener stopped")
				return nil
			}
			return fmt.Errorf("read datagram: %w", err)
		}

		l.log.WithFields(logrus.Fields{"bytes": n, "from": addr.String()}).Trace("packet received")
		h(addr, append([]byte(nil), buffer[:n]...))
	}
}
