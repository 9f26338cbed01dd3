package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SignatureStore = (*SignatureRepo)(nil)

// SignatureRepo is the SQLite implementation of the SignatureStore port interface.
// The table is seeded with model.DefaultSignatures by the first migration.
type SignatureRepo struct {
	db *DB
}

// NewSignatureRepo creates a new SignatureRepo backed by the given DB.
func NewSignatureRepo(db *DB) *SignatureRepo {
	return &SignatureRepo{db: db}
}

// Add inserts a signature and returns it with its ID and AddedAt populated.
// Account and marker are compared case-insensitively for uniqueness.
func (r *SignatureRepo) Add(ctx context.Context, sig model.ReviewerSignature) (model.ReviewerSignature, error) {
	const query = `INSERT INTO reviewer_signatures (reviewer, account, marker, added_at) VALUES (?, ?, ?, ?)`

	sig.Account = strings.TrimSpace(sig.Account)
	sig.Marker = strings.TrimSpace(sig.Marker)
	if err := sig.Validate(); err != nil {
		return model.ReviewerSignature{}, fmt.Errorf("add signature: %w", err)
	}

	if sig.AddedAt.IsZero() {
		sig.AddedAt = time.Now()
	}
	sig.AddedAt = sig.AddedAt.UTC()

	result, err := r.db.Writer.ExecContext(ctx, query, string(sig.Reviewer), sig.Account, sig.Marker, formatTime(sig.AddedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.ReviewerSignature{}, fmt.Errorf("add signature %s %q: %w", sig.Account, sig.Marker, driven.ErrSignatureAlreadyExists)
		}
		return model.ReviewerSignature{}, fmt.Errorf("add signature %s %q: %w", sig.Account, sig.Marker, err)
	}

	sig.ID, err = result.LastInsertId()
	if err != nil {
		return model.ReviewerSignature{}, fmt.Errorf("read signature id: %w", err)
	}

	return sig, nil
}

// Remove deletes a signature by ID.
func (r *SignatureRepo) Remove(ctx context.Context, id int64) error {
	const query = `DELETE FROM reviewer_signatures WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove signature %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove signature %d: %w", id, driven.ErrSignatureNotFound)
	}

	return nil
}

// Get returns the signature with the given ID.
func (r *SignatureRepo) Get(ctx context.Context, id int64) (model.ReviewerSignature, error) {
	const query = `SELECT id, reviewer, account, marker, added_at FROM reviewer_signatures WHERE id = ?`

	sig, err := scanSignature(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReviewerSignature{}, fmt.Errorf("get signature %d: %w", id, driven.ErrSignatureNotFound)
	}
	if err != nil {
		return model.ReviewerSignature{}, fmt.Errorf("get signature %d: %w", id, err)
	}

	return sig, nil
}

// ListAll returns reviewer-b signatures first, then reviewer-a, each ordered by ID.
func (r *SignatureRepo) ListAll(ctx context.Context) ([]model.ReviewerSignature, error) {
	const query = `SELECT id, reviewer, account, marker, added_at FROM reviewer_signatures
		ORDER BY CASE reviewer WHEN 'reviewer-b' THEN 0 ELSE 1 END, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer rows.Close()

	var sigs []model.ReviewerSignature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		sigs = append(sigs, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}

	return sigs, nil
}

func scanSignature(s scanner) (model.ReviewerSignature, error) {
	var sig model.ReviewerSignature
	var reviewer, addedAt string

	if err := s.Scan(&sig.ID, &reviewer, &sig.Account, &sig.Marker, &addedAt); err != nil {
		return model.ReviewerSignature{}, err
	}
	sig.Reviewer = model.Reviewer(reviewer)

	var err error
	sig.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return model.ReviewerSignature{}, fmt.Errorf("parse added_at: %w", err)
	}

	return sig, nil
}
