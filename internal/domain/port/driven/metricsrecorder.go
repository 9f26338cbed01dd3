package driven

import (
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// MetricsRecorder receives pipeline outcomes for export to a metrics backend.
type MetricsRecorder interface {
	ObserveWait(status model.ReviewStatus, elapsed time.Duration)
	ObserveItems(items []model.ReviewItem)
	ObserveDecision(decision model.MergeDecision)
}
