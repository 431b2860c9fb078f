// Package render runs page rasterization off the interaction path. A
// Scheduler debounces bursts of transform changes, keeps at most one worker
// in flight, and hands each worker a Token so a superseded or shut-down
// request can never deliver its result.
package render

import "sync"

// Token gates a worker's delivery. Deliver and Cancel serialize on one
// mutex, so once Cancel returns, no delivery can run: the canceller may
// safely reuse whatever state the delivery would have touched.
type Token struct {
	mu        sync.Mutex
	cancelled bool
}

// NewToken returns a live token.
func NewToken() *Token { return &Token{} }

// Deliver runs fn unless the token was cancelled, and reports whether it
// ran. fn executes under the token's mutex; it must not call Cancel.
func (t *Token) Deliver(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return false
	}
	fn()
	return true
}

// Cancel marks the token cancelled. It blocks until any in-progress
// delivery finishes.
func (t *Token) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}
