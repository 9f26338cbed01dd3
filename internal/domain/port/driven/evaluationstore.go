package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// ErrEvaluationNotFound indicates no evaluation has been recorded for a change request.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// EvaluationStore persists the history of pipeline runs.
type EvaluationStore interface {
	// Save persists eval, assigning a RunID when it is empty, and returns the stored record.
	Save(ctx context.Context, eval model.Evaluation) (model.Evaluation, error)
	// Latest returns ErrEvaluationNotFound when the change request has no history.
	Latest(ctx context.Context, ref model.ChangeRequestRef) (model.Evaluation, error)
	// ListByChangeRequest returns up to limit evaluations, newest first.
	ListByChangeRequest(ctx context.Context, ref model.ChangeRequestRef, limit int) ([]model.Evaluation, error)
}
