package viewer

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/engine/enginetest"
	"github.com/bnema/folio/internal/geom"
	"github.com/bnema/folio/internal/viewer/event"
)

type memoryStore struct {
	mu     sync.Mutex
	states map[string]StoredViewState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]StoredViewState)}
}

func (m *memoryStore) Get(_ context.Context, path string) (StoredViewState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[path]
	return s, ok, nil
}

func (m *memoryStore) Put(_ context.Context, path string, state StoredViewState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[path] = state
	return nil
}

func (m *memoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, path)
	return nil
}

func newTestRegistry(t *testing.T, store ViewStateStore) (*Registry, *enginetest.Engine) {
	t.Helper()
	eng := enginetest.NewEngine()
	eng.AddDocument("/docs/a.pdf", 3, geom.Rect{X1: 200, Y1: 100})
	eng.AddDocument("/docs/b.pdf", 2, geom.Rect{X1: 200, Y1: 100})

	bus := event.NewBusSize(zerolog.Nop(), 1024)
	r := NewRegistry(eng, bus, store, fastOptions(), zerolog.Nop())
	t.Cleanup(func() { r.CloseAll(context.Background()) })
	return r, eng
}

func TestOpenDeduplicatesPath(t *testing.T) {
	r, eng := newTestRegistry(t, nil)
	ctx := context.Background()

	s1, err := r.Open(ctx, "/docs/a.pdf")
	require.NoError(t, err)

	// The same document via a non-clean path activates the session instead
	// of opening a second handle.
	s2, err := r.Open(ctx, "/docs/../docs/a.pdf")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, eng.Opens())
	assert.Len(t, r.Sessions(), 1)
}

func TestOpenFailureCreatesNoTab(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	_, err := r.Open(context.Background(), "/docs/missing.pdf")
	require.Error(t, err)
	assert.Empty(t, r.Sessions())
	assert.Nil(t, r.Active())
}

func TestActivateSwitchesTabs(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	a, err := r.Open(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	b, err := r.Open(ctx, "/docs/b.pdf")
	require.NoError(t, err)
	require.Same(t, b, r.Active())

	got, err := r.Activate(0)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Same(t, a, r.Active())

	_, err = r.Activate(5)
	assert.Error(t, err)
}

func TestCloseRemovesSessionAndReleasesDocument(t *testing.T) {
	r, eng := newTestRegistry(t, nil)
	ctx := context.Background()

	_, err := r.Open(ctx, "/docs/a.pdf")
	require.NoError(t, err)

	require.NoError(t, r.Close(ctx, "/docs/a.pdf"))
	assert.Empty(t, r.Sessions())

	doc, err := eng.Open("/docs/a.pdf")
	require.NoError(t, err)
	assert.True(t, doc.(*enginetest.Document).Closed())

	assert.Error(t, r.Close(ctx, "/docs/a.pdf"))
}

func TestViewStatePersistedAcrossReopen(t *testing.T) {
	store := newMemoryStore()
	r, _ := newTestRegistry(t, store)
	ctx := context.Background()

	s, err := r.Open(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	s.Resize(200, 100)
	require.NoError(t, s.DisplayPage(2))
	s.Rotate(90)

	require.NoError(t, r.Close(ctx, "/docs/a.pdf"))

	reopened, err := r.Open(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	st := reopened.State()
	assert.Equal(t, 2, st.PageIndex)
	assert.Equal(t, geom.Rotation(90), st.Rotation)
}

func TestCloseAll(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	_, err := r.Open(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	_, err = r.Open(ctx, "/docs/b.pdf")
	require.NoError(t, err)

	require.NoError(t, r.CloseAll(ctx))
	assert.Empty(t, r.Sessions())
	assert.Nil(t, r.Active())
}
