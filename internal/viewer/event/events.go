// Package event carries the typed notifications the viewing pipeline emits
// toward the presentation layer. Every event names its session so a single
// consumer can fan events out across tabs.
package event

import (
	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/geom"
)

// Event is implemented by every notification type.
type Event interface {
	Session() string
}

// SessionEvent is the common base embedded by session-scoped events.
type SessionEvent struct {
	SessionID string
}

// NewSessionEvent returns the base for an event belonging to sessionID.
func NewSessionEvent(sessionID string) SessionEvent {
	return SessionEvent{SessionID: sessionID}
}

// Session returns the owning session's ID.
func (e SessionEvent) Session() string { return e.SessionID }

// PageRendered delivers a finished page raster. ScrollToBottom is set when
// the page was entered from the following page's top edge, so the view
// lands on the bottom of the new page.
type PageRendered struct {
	SessionEvent
	Page           int
	Bitmap         engine.Bitmap
	Scale          float64
	Rotation       geom.Rotation
	ScrollToBottom bool
}

// ThumbnailReady delivers one finished thumbnail. Generation identifies the
// refresh pass that produced it; consumers drop stale generations.
type ThumbnailReady struct {
	SessionEvent
	Page       int
	Bitmap     engine.Bitmap
	Landscape  bool
	Generation uint64
}

// PageChanged reports the current page after navigation.
type PageChanged struct {
	SessionEvent
	Page      int
	PageCount int
}

// ZoomChanged reports the effective zoom factor after a zoom operation.
type ZoomChanged struct {
	SessionEvent
	Factor float64
}

// RotationChanged reports the new page rotation.
type RotationChanged struct {
	SessionEvent
	Rotation geom.Rotation
}

// MatchesUpdated reports search progress: the total number of hits so far
// and the 1-based position of the current one (0 when none is selected).
type MatchesUpdated struct {
	SessionEvent
	Query   string
	Current int
	Total   int
	Done    bool
}

// HighlightsUpdated carries the view-space match rectangles for the current
// page, recomputed whenever the transform or match set changes. Active is
// the index into Rects of the cursor match, -1 when the cursor is on
// another page.
type HighlightsUpdated struct {
	SessionEvent
	Page   int
	Rects  []geom.Rect
	Active int
}

// Notification is a transient user-facing message.
type Notification struct {
	SessionEvent
	Message string
}

// NewNotification builds a Notification for the given session.
func NewNotification(sessionID, message string) Notification {
	return Notification{SessionEvent: SessionEvent{SessionID: sessionID}, Message: message}
}

// TabOpened reports a new session added to the registry.
type TabOpened struct {
	SessionEvent
	Path  string
	Title string
}

// TabClosed reports a session removed from the registry.
type TabClosed struct {
	SessionEvent
}

// OpenRequested asks the running instance to open paths, typically forwarded
// from a second process invocation. It is not tied to a session.
type OpenRequested struct {
	Paths []string
}

// Session implements Event for OpenRequested; the request targets the whole
// application, not one tab.
func (OpenRequested) Session() string { return "" }
