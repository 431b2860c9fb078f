package event

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndReceive(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	bus.Publish(PageChanged{SessionEvent: NewSessionEvent("a"), Page: 3, PageCount: 10})

	e := <-bus.Events()
	pc, ok := e.(PageChanged)
	require.True(t, ok)
	assert.Equal(t, "a", pc.Session())
	assert.Equal(t, 3, pc.Page)
}

func TestPublishNeverBlocksWhenFull(t *testing.T) {
	bus := NewBusSize(zerolog.Nop(), 1)

	// Second publish overflows the buffer; it must drop, not block.
	bus.Publish(ZoomChanged{SessionEvent: NewSessionEvent("a"), Factor: 1.25})
	bus.Publish(ZoomChanged{SessionEvent: NewSessionEvent("a"), Factor: 1.5})

	e := <-bus.Events()
	assert.InDelta(t, 1.25, e.(ZoomChanged).Factor, 1e-9)

	select {
	case e := <-bus.Events():
		t.Fatalf("expected dropped event, got %v", e)
	default:
	}
}

func TestOpenRequestedHasNoSession(t *testing.T) {
	assert.Empty(t, OpenRequested{Paths: []string{"/a"}}.Session())
}
