package model

import "time"

// CheckRun represents an individual CI check run from the GitHub Checks API.
type CheckRun struct {
	ID          int64
	Name        string    // Check run name (e.g., "build", "lint").
	Status      string    // queued, in_progress, completed, waiting, requested, pending.
	Conclusion  string    // success, failure, neutral, canceled, skipped, timed_out, action_required.
	CompletedAt time.Time // Zero if not yet completed.
}

// CombinedStatus represents the aggregated commit status from the GitHub Status API.
type CombinedStatus struct {
	State    string // Overall state: success, failure, pending.
	Statuses []CommitStatus
}

// CommitStatus represents an individual status entry from the GitHub Status API.
type CommitStatus struct {
	Context string // CI service identifier (e.g., "ci/circleci").
	State   string // success, failure, pending, error.
}

// SummarizeCI aggregates check runs from the Checks API and the combined
// status from the Status API into a single CIStatus value.
// Priority: failing > pending > passing > unknown.
func SummarizeCI(checkRuns []CheckRun, combined *CombinedStatus) CIStatus {
	if len(checkRuns) == 0 && (combined == nil || len(combined.Statuses) == 0) {
		return CIStatusUnknown
	}

	var hasFailing, hasPending bool

	for _, cr := range checkRuns {
		if cr.Status != "completed" {
			// queued, in_progress, waiting, requested, pending
			hasPending = true
			continue
		}
		switch cr.Conclusion {
		case "failure", "canceled", "cancelled", "timed_out", "action_required": //nolint:misspell // GitHub API uses British "cancelled"
			hasFailing = true
		}
	}

	if combined != nil && len(combined.Statuses) > 0 {
		switch combined.State {
		case "failure", "error":
			hasFailing = true
		case "pending":
			hasPending = true
		}
	}

	if hasFailing {
		return CIStatusFailing
	}
	if hasPending {
		return CIStatusPending
	}
	return CIStatusPassing
}
