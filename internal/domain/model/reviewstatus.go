package model

import "time"

// ReviewStatus is the per-change-request snapshot produced by one wait cycle.
// It is immutable once returned to the caller.
type ReviewStatus struct {
	ChangeRequest ChangeRequestRef

	ReviewerAComplete bool
	ReviewerBComplete bool
	ReviewerBFailed   bool
	ReviewerBTimedOut bool

	// AllComplete is derived by Finalize; never set it directly.
	AllComplete bool

	// Incomplete marks a wait that was cancelled before reaching a terminal state.
	Incomplete bool

	ReviewerAAt time.Time // Zero until reviewer A is first observed.
	ReviewerBAt time.Time // Zero until reviewer B is first observed.
	Polls       int
	Error       string // Last transport error, informational only.
}

// Finalize returns a copy of s with AllComplete derived from the reviewer
// flags: A complete AND (B complete OR B failed OR B timed out).
func (s ReviewStatus) Finalize() ReviewStatus {
	s.AllComplete = s.ReviewerAComplete &&
		(s.ReviewerBComplete || s.ReviewerBFailed || s.ReviewerBTimedOut)
	return s
}

// ReviewerBOutcome names the terminal state of reviewer B for logging and metrics.
func (s ReviewStatus) ReviewerBOutcome() string {
	switch {
	case s.ReviewerBComplete:
		return "complete"
	case s.ReviewerBFailed:
		return "failed"
	case s.ReviewerBTimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}
