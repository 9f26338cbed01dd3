package model

// CIStatus represents the combined state of a change request's CI checks.
type CIStatus string

const (
	CIStatusPassing CIStatus = "passing"
	CIStatusFailing CIStatus = "failing"
	CIStatusPending CIStatus = "pending"
	CIStatusUnknown CIStatus = "unknown"
)

// ReviewState represents the state of a submitted pull request review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStatePending          ReviewState = "pending"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// CommentKind distinguishes between the different origins of a raw comment.
type CommentKind string

const (
	CommentKindGeneral CommentKind = "general" // Issue comment / PR-level discussion.
	CommentKindInline  CommentKind = "inline"  // Review comment on a code line.
	CommentKindReview  CommentKind = "review"  // Body of a submitted review.
)

// MergeableStatus is GitHub's tri-state mergeability of a pull request.
type MergeableStatus string

const (
	MergeableMergeable  MergeableStatus = "mergeable"
	MergeableConflicted MergeableStatus = "conflicted"
	MergeableUnknown    MergeableStatus = "unknown"
)

// Priority is the severity bucket of a classified review item.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityDeferred Priority = "deferred"
)

// Priorities lists every priority from most to least severe.
var Priorities = []Priority{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
	PriorityDeferred,
}

// Reviewer identifies the source of a review comment.
type Reviewer string

const (
	ReviewerA     Reviewer = "reviewer-a"
	ReviewerB     Reviewer = "reviewer-b"
	ReviewerHuman Reviewer = "human"
)

// Valid reports whether r names one of the two automated reviewers.
func (r Reviewer) Valid() bool {
	return r == ReviewerA || r == ReviewerB
}

// Category is the optional topical tag of a review item.
type Category string

const (
	CategoryNone        Category = ""
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryBug         Category = "bug"
	CategoryStyle       Category = "style"
	CategoryTesting     Category = "testing"
	CategoryDocs        Category = "docs"
	CategoryOther       Category = "other"
)

// Readiness is the outcome of merge-readiness evaluation.
type Readiness string

const (
	ReadinessReady           Readiness = "ready"
	ReadinessBlocked         Readiness = "blocked"
	ReadinessWaitingReviews  Readiness = "waiting_reviews"
	ReadinessWaitingCI       Readiness = "waiting_ci"
	ReadinessWaitingApproval Readiness = "waiting_approval"
	ReadinessDraft           Readiness = "draft"
)
