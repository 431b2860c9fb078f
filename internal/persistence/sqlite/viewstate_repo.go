package sqlite

import (
	"context"
	"database/sql"

	"github.com/bnema/folio/internal/logging"
	"github.com/bnema/folio/internal/viewer"
)

type viewStateRepo struct {
	db *sql.DB
}

// NewViewStateRepository creates a SQLite-backed view-state store.
func NewViewStateRepository(db *sql.DB) viewer.ViewStateStore {
	return &viewStateRepo{db: db}
}

func (r *viewStateRepo) Get(ctx context.Context, path string) (viewer.StoredViewState, bool, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("document", path).Msg("loading view state")

	var state viewer.StoredViewState
	err := r.db.QueryRowContext(ctx,
		`SELECT page, zoom, rotation FROM view_states WHERE path = ?`, path,
	).Scan(&state.Page, &state.Zoom, &state.Rotation)
	if err == sql.ErrNoRows {
		return viewer.StoredViewState{}, false, nil
	}
	if err != nil {
		return viewer.StoredViewState{}, false, err
	}
	return state, true, nil
}

func (r *viewStateRepo) Put(ctx context.Context, path string, state viewer.StoredViewState) error {
	log := logging.FromContext(ctx)
	log.Debug().
		Str("document", path).
		Int("page", state.Page).
		Float64("zoom", state.Zoom).
		Int("rotation", state.Rotation).
		Msg("saving view state")

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO view_states (path, page, zoom, rotation, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT (path) DO UPDATE SET
			page = excluded.page,
			zoom = excluded.zoom,
			rotation = excluded.rotation,
			updated_at = excluded.updated_at`,
		path, state.Page, state.Zoom, state.Rotation)
	return err
}

func (r *viewStateRepo) Delete(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM view_states WHERE path = ?`, path)
	return err
}
