package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/viewer/event"
)

// StoredViewState is the persisted slice of a session's view state.
type StoredViewState struct {
	Page     int
	Zoom     float64
	Rotation int
}

// ViewStateStore persists view state per normalized document path, so a
// reopened document lands where it was left.
type ViewStateStore interface {
	Get(ctx context.Context, path string) (StoredViewState, bool, error)
	Put(ctx context.Context, path string, state StoredViewState) error
	Delete(ctx context.Context, path string) error
}

// NormalizePath resolves a document path to the absolute, cleaned form used
// as the registry key.
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("viewer: normalize %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// Registry owns the set of open sessions and guarantees at most one session
// per normalized path. The store is optional; without it view state simply
// starts fresh on every open.
type Registry struct {
	engine engine.Engine
	bus    *event.Bus
	store  ViewStateStore
	opts   Options
	logger zerolog.Logger

	mu       sync.Mutex
	order    []*Session
	sessions map[string]*Session
	active   string
}

// NewRegistry returns an empty registry. store may be nil.
func NewRegistry(eng engine.Engine, bus *event.Bus, store ViewStateStore, opts Options, logger zerolog.Logger) *Registry {
	return &Registry{
		engine:   eng,
		bus:      bus,
		store:    store,
		opts:     opts,
		logger:   logger.With().Str("component", "registry").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Open opens the document at path, or activates the existing session when
// the normalized path is already open. The new session's first page is
// displayed and its thumbnail stream started.
func (r *Registry) Open(ctx context.Context, path string) (*Session, error) {
	key, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if s, ok := r.sessions[key]; ok {
		r.active = key
		r.mu.Unlock()
		r.logger.Debug().Str("document", key).Msg("already open, activating")
		return s, nil
	}
	r.mu.Unlock()

	doc, err := r.engine.Open(key)
	if err != nil {
		return nil, err
	}

	s := NewSession(key, doc, r.bus, r.opts, r.logger)

	page := 0
	if r.store != nil {
		if stored, ok, err := r.store.Get(ctx, key); err != nil {
			r.logger.Warn().Err(err).Str("document", key).Msg("view state restore failed")
		} else if ok {
			s.Restore(stored.Page, stored.Zoom, stored.Rotation)
			page = s.State().PageIndex
		}
	}

	r.mu.Lock()
	if existing, ok := r.sessions[key]; ok {
		// Lost the race to another opener; keep theirs.
		r.active = key
		r.mu.Unlock()
		if cerr := s.Close(); cerr != nil {
			r.logger.Warn().Err(cerr).Str("document", key).Msg("duplicate session close failed")
		}
		return existing, nil
	}
	r.sessions[key] = s
	r.order = append(r.order, s)
	r.active = key
	r.mu.Unlock()

	r.bus.Publish(event.TabOpened{
		SessionEvent: event.NewSessionEvent(key),
		Path:         key,
		Title:        s.Title(),
	})

	if err := s.DisplayPage(page); err != nil {
		r.logger.Warn().Err(err).Str("document", key).Msg("initial page display failed")
	}
	s.RefreshThumbnails()

	return s, nil
}

// Get returns the session for a normalized path.
func (r *Registry) Get(path string) (*Session, bool) {
	key, err := NormalizePath(path)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Sessions returns the open sessions in tab order.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Session(nil), r.order...)
}

// Active returns the active session, or nil when nothing is open.
func (r *Registry) Active() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[r.active]
}

// Activate makes the session at tab position idx active. Transient overlay
// state is presentation-side; activation deliberately leaves the session's
// search matches and zoom untouched.
func (r *Registry) Activate(idx int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.order) {
		return nil, fmt.Errorf("viewer: tab %d out of range [0,%d)", idx, len(r.order))
	}
	s := r.order[idx]
	r.active = s.ID()
	return s, nil
}

// Close tears down the session for path, persisting its view state first.
func (r *Registry) Close(ctx context.Context, path string) error {
	key, err := NormalizePath(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	s, ok := r.sessions[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("viewer: %s is not open", key)
	}
	delete(r.sessions, key)
	for i, o := range r.order {
		if o == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.active == key {
		r.active = ""
		if len(r.order) > 0 {
			r.active = r.order[len(r.order)-1].ID()
		}
	}
	r.mu.Unlock()

	r.persist(ctx, s)

	if err := s.Close(); err != nil {
		return err
	}
	r.bus.Publish(event.TabClosed{SessionEvent: event.NewSessionEvent(key)})
	return nil
}

// CloseAll tears down every session in parallel, persisting each state.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	sessions := r.order
	r.order = nil
	r.sessions = make(map[string]*Session)
	r.active = ""
	r.mu.Unlock()

	var g errgroup.Group
	for _, s := range sessions {
		g.Go(func() error {
			r.persist(ctx, s)
			return s.Close()
		})
	}
	return g.Wait()
}

func (r *Registry) persist(ctx context.Context, s *Session) {
	if r.store == nil {
		return
	}
	st := s.State()
	err := r.store.Put(ctx, s.Path(), StoredViewState{
		Page:     st.PageIndex,
		Zoom:     st.ZoomFactor,
		Rotation: int(st.Rotation),
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("document", s.Path()).Msg("view state persist failed")
	}
}
