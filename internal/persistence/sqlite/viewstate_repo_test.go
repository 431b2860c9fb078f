package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/folio/internal/logging"
	"github.com/bnema/folio/internal/persistence/sqlite"
	"github.com/bnema/folio/internal/viewer"
)

func testCtx() context.Context {
	cfg := logging.DefaultConfig()
	cfg.Level = zerolog.DebugLevel
	logger := logging.New(cfg)
	return logging.WithContext(context.Background(), logger)
}

func TestViewStateRepository_CRUD(t *testing.T) {
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "folio.sqlite")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewViewStateRepository(db)

	const doc = "/docs/report.pdf"

	_, ok, err := repo.Get(ctx, doc)
	require.NoError(t, err)
	assert.False(t, ok)

	state := viewer.StoredViewState{Page: 4, Zoom: 1.25, Rotation: 90}
	require.NoError(t, repo.Put(ctx, doc, state))

	got, ok, err := repo.Get(ctx, doc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, got)

	// Upsert replaces the stored state for the same path.
	state2 := viewer.StoredViewState{Page: 0, Zoom: 2.5, Rotation: 270}
	require.NoError(t, repo.Put(ctx, doc, state2))

	got, ok, err = repo.Get(ctx, doc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state2, got)

	require.NoError(t, repo.Delete(ctx, doc))
	_, ok, err = repo.Get(ctx, doc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnectionRejectsEmptyPath(t *testing.T) {
	_, err := sqlite.NewConnection(testCtx(), "")
	assert.Error(t, err)
}
