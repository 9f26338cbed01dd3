package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EvaluationStore = (*EvaluationRepo)(nil)

// EvaluationRepo is the SQLite implementation of the EvaluationStore port
// interface. Status, plan, and decision are stored as JSON documents; run IDs
// are ULIDs so lexical order is creation order.
type EvaluationRepo struct {
	db *DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewEvaluationRepo creates a new EvaluationRepo backed by the given DB.
func NewEvaluationRepo(db *DB) *EvaluationRepo {
	return &EvaluationRepo{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (r *EvaluationRepo) newRunID(t time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), r.entropy).String()
}

// Save inserts eval, assigning a RunID when it has none.
func (r *EvaluationRepo) Save(ctx context.Context, eval model.Evaluation) (model.Evaluation, error) {
	const query = `INSERT INTO evaluations
		(run_id, repo, number, readiness, ready_to_merge, status_json, plan_json, decision_json, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if eval.EvaluatedAt.IsZero() {
		eval.EvaluatedAt = time.Now()
	}
	eval.EvaluatedAt = eval.EvaluatedAt.UTC()
	if eval.RunID == "" {
		eval.RunID = r.newRunID(time.Now())
	}

	status, err := json.Marshal(eval.Status)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("encode review status: %w", err)
	}
	plan, err := json.Marshal(eval.Plan)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("encode remediation plan: %w", err)
	}
	decision, err := json.Marshal(eval.Decision)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("encode merge decision: %w", err)
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		eval.RunID,
		eval.ChangeRequest.Repo,
		eval.ChangeRequest.Number,
		string(eval.Decision.Readiness),
		eval.Decision.ReadyToMerge,
		string(status),
		string(plan),
		string(decision),
		formatTime(eval.EvaluatedAt),
	)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("save evaluation for %s: %w", eval.ChangeRequest, err)
	}

	return eval, nil
}

// Latest returns the most recent evaluation of ref.
func (r *EvaluationRepo) Latest(ctx context.Context, ref model.ChangeRequestRef) (model.Evaluation, error) {
	const query = `SELECT run_id, repo, number, status_json, plan_json, decision_json, evaluated_at
		FROM evaluations WHERE repo = ? AND number = ? ORDER BY run_id DESC LIMIT 1`

	eval, err := scanEvaluation(r.db.Reader.QueryRowContext(ctx, query, ref.Repo, ref.Number))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Evaluation{}, fmt.Errorf("latest evaluation for %s: %w", ref, driven.ErrEvaluationNotFound)
	}
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("latest evaluation for %s: %w", ref, err)
	}

	return eval, nil
}

// ListByChangeRequest returns up to limit evaluations of ref, newest first.
// A non-positive limit returns the full history.
func (r *EvaluationRepo) ListByChangeRequest(ctx context.Context, ref model.ChangeRequestRef, limit int) ([]model.Evaluation, error) {
	const query = `SELECT run_id, repo, number, status_json, plan_json, decision_json, evaluated_at
		FROM evaluations WHERE repo = ? AND number = ? ORDER BY run_id DESC LIMIT ?`

	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, ref.Repo, ref.Number, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations for %s: %w", ref, err)
	}
	defer rows.Close()

	evals := []model.Evaluation{}
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evals = append(evals, eval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return evals, nil
}

func scanEvaluation(s scanner) (model.Evaluation, error) {
	var eval model.Evaluation
	var status, plan, decision, evaluatedAt string

	err := s.Scan(
		&eval.RunID,
		&eval.ChangeRequest.Repo,
		&eval.ChangeRequest.Number,
		&status,
		&plan,
		&decision,
		&evaluatedAt,
	)
	if err != nil {
		return model.Evaluation{}, err
	}

	if err := json.Unmarshal([]byte(status), &eval.Status); err != nil {
		return model.Evaluation{}, fmt.Errorf("decode review status: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &eval.Plan); err != nil {
		return model.Evaluation{}, fmt.Errorf("decode remediation plan: %w", err)
	}
	if err := json.Unmarshal([]byte(decision), &eval.Decision); err != nil {
		return model.Evaluation{}, fmt.Errorf("decode merge decision: %w", err)
	}

	eval.EvaluatedAt, err = parseTime(evaluatedAt)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("parse evaluated_at: %w", err)
	}

	return eval, nil
}
