package sink

import (
	"chat-relay/contract"
	"chat-relay/errors"
	"context"
)

var _ contract.EventSink = (*Conn)(nil)

// Conn bridges the hub to a single connection's write loop through a
// buffered channel.
type Conn struct {
	Deliveries chan any
}

func NewConn(bufferSize int) *Conn {
	return &Conn{Deliveries: make(chan any, bufferSize)}
}

// Consume is called by the hub fan-out.
// Redirect the payload through the concerned owner of the channel
// The transport write loop will take it from now
func (s *Conn) Consume(ctx context.Context, payload any) error {
	select {
	case s.Deliveries <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Buffer full: the connection is too slow, backpressure is
		// resolved by dropping rather than blocking the fan-out.
		return errors.ErrSinkFull
	}
}
