package model

import (
	"strings"
	"time"
)

// Review represents a review submitted on a pull request.
type Review struct {
	ID            int64
	ReviewerLogin string
	State         ReviewState
	Body          string
	SubmittedAt   time.Time
}

// IsBotLogin reports whether login belongs to a GitHub App account.
func IsBotLogin(login string) bool {
	return strings.HasSuffix(strings.ToLower(login), "[bot]")
}

// HasHumanApproval reports whether any non-bot reviewer's latest review is an
// approval. Earlier reviews by the same login are superseded; dismissed and
// pending reviews never count.
func HasHumanApproval(reviews []Review) bool {
	latestByReviewer := make(map[string]Review)

	for _, r := range reviews {
		if IsBotLogin(r.ReviewerLogin) {
			continue
		}
		if r.State == ReviewStatePending || r.State == ReviewStateCommented {
			continue
		}

		login := strings.ToLower(r.ReviewerLogin)
		existing, ok := latestByReviewer[login]
		if !ok || !r.SubmittedAt.Before(existing.SubmittedAt) {
			latestByReviewer[login] = r
		}
	}

	for _, r := range latestByReviewer {
		if r.State == ReviewStateApproved {
			return true
		}
	}
	return false
}
