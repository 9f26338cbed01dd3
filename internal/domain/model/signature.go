package model

import (
	"fmt"
	"strings"
	"time"
)

// maxAccountLength is GitHub's login limit with room for an App suffix.
const maxAccountLength = 100

// ReviewerSignature identifies comments posted by one of the automated
// reviewers. A comment matches when its author equals Account
// (case-insensitive) and, if Marker is set, its body contains Marker
// (case-insensitive).
type ReviewerSignature struct {
	ID       int64
	Reviewer Reviewer
	Account  string // e.g., "github-actions[bot]"
	Marker   string // e.g., "Perplexity Code Review"; empty matches any body.
	AddedAt  time.Time
}

// Matches reports whether the comment was posted by this signature's reviewer.
func (s ReviewerSignature) Matches(author, body string) bool {
	if !strings.EqualFold(author, s.Account) {
		return false
	}
	if s.Marker == "" {
		return true
	}
	return strings.Contains(strings.ToLower(body), strings.ToLower(s.Marker))
}

// Validate reports whether s names a known reviewer and a well-formed account.
func (s ReviewerSignature) Validate() error {
	if !s.Reviewer.Valid() {
		return fmt.Errorf("reviewer must be %s or %s, got %q", ReviewerA, ReviewerB, s.Reviewer)
	}
	if !ValidAccount(s.Account) {
		return fmt.Errorf("invalid account name %q", s.Account)
	}
	return nil
}

// ValidAccount reports whether account is a GitHub login: alphanumerics,
// hyphens, dots, and underscores, plus the brackets of App logins such as
// "github-actions[bot]".
func ValidAccount(account string) bool {
	if account == "" || len(account) > maxAccountLength {
		return false
	}
	for _, ch := range account {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '.' || ch == '_' || ch == '[' || ch == ']':
		default:
			return false
		}
	}
	return true
}

// DefaultSignatures are the reviewer signatures used when no store is
// configured. The persisted store is seeded with the same entries.
func DefaultSignatures() []ReviewerSignature {
	return []ReviewerSignature{
		{Reviewer: ReviewerB, Account: "github-actions[bot]", Marker: "Perplexity Code Review"},
		{Reviewer: ReviewerA, Account: "copilot-pull-request-reviewer[bot]"},
		{Reviewer: ReviewerA, Account: "copilot[bot]"},
		{Reviewer: ReviewerA, Account: "github-actions[bot]", Marker: "copilot"},
	}
}
