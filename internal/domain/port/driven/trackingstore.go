package driven

import (
	"context"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// TrackingStore records which change requests already have a deferred-work
// tracking issue.
type TrackingStore interface {
	// Get returns nil, nil when no tracking issue has been recorded.
	Get(ctx context.Context, ref model.ChangeRequestRef) (*model.TrackingRecord, error)
	Record(ctx context.Context, rec model.TrackingRecord) error
}
