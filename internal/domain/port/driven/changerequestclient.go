// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// ChangeRequestClient is the driven port over the code hosting service.
// Read methods are idempotent; write methods are invoked only by the
// pipeline, never by the decision components.
type ChangeRequestClient interface {
	// FetchComments returns issue comments, inline review comments, and
	// review bodies for the change request, oldest first.
	FetchComments(ctx context.Context, ref model.ChangeRequestRef) ([]model.RawComment, error)
	// FetchStatus returns draft, conflict, CI, and approval state.
	FetchStatus(ctx context.Context, ref model.ChangeRequestRef) (model.ChangeRequestStatus, error)

	// CreateTrackingItem opens an issue in repo and returns its number.
	CreateTrackingItem(ctx context.Context, repo, title, body string, labels []string) (int, error)
	// PostComment adds a top-level comment to the change request.
	PostComment(ctx context.Context, ref model.ChangeRequestRef, body string) error
}

// WorkflowRunReader is optionally implemented by a ChangeRequestClient that
// can report CI workflow outcomes. The coordinator uses it to detect a
// reviewer whose workflow has already failed.
type WorkflowRunReader interface {
	// WorkflowRunFailed reports whether the most recent run of workflowName
	// for the change request concluded with failure, cancelled, or timed_out.
	WorkflowRunFailed(ctx context.Context, ref model.ChangeRequestRef, workflowName string) (bool, error)
}
