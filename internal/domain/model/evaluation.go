package model

import "time"

// Evaluation is the persisted record of one pipeline run over a change request.
type Evaluation struct {
	RunID         string // ULID, sortable by creation time.
	ChangeRequest ChangeRequestRef
	Status        ReviewStatus
	Plan          RemediationPlan
	Decision      MergeDecision
	EvaluatedAt   time.Time
}

// TrackingRecord remembers the follow-up issue created for a change
// request's deferred items so it is created at most once.
type TrackingRecord struct {
	ChangeRequest  ChangeRequestRef
	TrackingItemID int
	CreatedAt      time.Time
}
