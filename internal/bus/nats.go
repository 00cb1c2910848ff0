package bus

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSBus adapts a NATS connection to the Bus contract so remote observers
// can follow generation events over the wire.
type NATSBus struct {
	nc *nats.Conn
}

// Connect dials the NATS server at the given host and port.
func Connect(host string, port int) (*NATSBus, error) {
	nc, err := nats.Connect(fmt.Sprintf("nats://%s:%d", host, port))
	if err != nil {
		log.Error().Err(err).Str("component", "bus").Msg("failed to connect to NATS")
		return nil, err
	}
	return &NATSBus{nc: nc}, nil
}

// NewNATSBus wraps an existing connection. The caller keeps ownership of nc
// only until Close.
func NewNATSBus(nc *nats.Conn) *NATSBus {
	return &NATSBus{nc: nc}
}

func (b *NATSBus) Publish(subject string, payload []byte) error {
	return b.nc.Publish(subject, payload)
}

// Conn exposes the underlying connection for request/reply patterns the
// Bus interface does not cover.
func (b *NATSBus) Conn() *nats.Conn {
	return b.nc
}

func (b *NATSBus) Subscribe(subject string, handler func(payload []byte)) (Unsubscribe, error) {
	sub, err := b.nc.Subscribe(subject, func(m *nats.Msg) {
		handler(m.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = sub.Unsubscribe()
	}, nil
}

// Close flushes pending publishes and drops the connection.
func (b *NATSBus) Close() error {
	if err := b.nc.Flush(); err != nil {
		log.Debug().Err(err).Str("component", "bus").Msg("flush on close failed")
	}
	b.nc.Close()
	return nil
}
