package event

import (
	"github.com/rs/zerolog"
)

const defaultBuffer = 256

// Bus is a buffered fan-in of pipeline events with a single consumer.
// Publish never blocks: when the consumer falls behind, events are dropped
// and counted, because a worker holding a session lock must not stall on a
// slow presenter.
type Bus struct {
	ch     chan Event
	logger zerolog.Logger
}

// NewBus returns a bus with the default buffer size.
func NewBus(logger zerolog.Logger) *Bus {
	return NewBusSize(logger, defaultBuffer)
}

// NewBusSize returns a bus buffering up to size events.
func NewBusSize(logger zerolog.Logger, size int) *Bus {
	return &Bus{
		ch:     make(chan Event, size),
		logger: logger.With().Str("component", "event-bus").Logger(),
	}
}

// Publish enqueues e, dropping it if the buffer is full.
func (b *Bus) Publish(e Event) {
	select {
	case b.ch <- e:
	default:
		b.logger.Warn().
			Str("session", e.Session()).
			Type("event", e).
			Msg("event dropped, consumer behind")
	}
}

// Events returns the receive side of the bus.
func (b *Bus) Events() <-chan Event { return b.ch }
