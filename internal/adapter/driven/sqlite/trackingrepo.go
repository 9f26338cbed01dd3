package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TrackingStore = (*TrackingRepo)(nil)

// TrackingRepo is the SQLite implementation of the TrackingStore port interface.
type TrackingRepo struct {
	db *DB
}

// NewTrackingRepo creates a new TrackingRepo backed by the given DB.
func NewTrackingRepo(db *DB) *TrackingRepo {
	return &TrackingRepo{db: db}
}

// Get returns the tracking record for ref, or nil, nil if none exists.
func (r *TrackingRepo) Get(ctx context.Context, ref model.ChangeRequestRef) (*model.TrackingRecord, error) {
	const query = `SELECT tracking_item_id, created_at FROM tracking_items WHERE repo = ? AND number = ?`

	rec := model.TrackingRecord{ChangeRequest: ref}
	var createdAt string

	err := r.db.Reader.QueryRowContext(ctx, query, ref.Repo, ref.Number).Scan(&rec.TrackingItemID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tracking item for %s: %w", ref, err)
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &rec, nil
}

// Record stores rec. The first record for a change request wins; later
// records for the same change request are ignored.
func (r *TrackingRepo) Record(ctx context.Context, rec model.TrackingRecord) error {
	const query = `INSERT INTO tracking_items (repo, number, tracking_item_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (repo, number) DO NOTHING`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		rec.ChangeRequest.Repo,
		rec.ChangeRequest.Number,
		rec.TrackingItemID,
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("record tracking item for %s: %w", rec.ChangeRequest, err)
	}

	return nil
}
