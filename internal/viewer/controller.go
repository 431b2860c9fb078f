package viewer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/viewer/event"
)

// Presenter consumes pipeline events on the control loop. Implementations
// paint bitmaps, update thumbnails and overlays, and surface notifications;
// they run on a single goroutine and never call back into the pipeline from
// Apply.
type Presenter interface {
	Apply(e event.Event)
}

// Controller is the control loop between the event bus and the presenter.
// Workers publish results to the bus; the controller is the only reader, so
// all presentation state mutation is serialized here.
type Controller struct {
	bus       *event.Bus
	presenter Presenter
	logger    zerolog.Logger
}

// NewController wires the bus to a presenter.
func NewController(bus *event.Bus, presenter Presenter, logger zerolog.Logger) *Controller {
	return &Controller{
		bus:       bus,
		presenter: presenter,
		logger:    logger.With().Str("component", "controller").Logger(),
	}
}

// Run consumes events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-c.bus.Events():
			c.presenter.Apply(e)
		}
	}
}
