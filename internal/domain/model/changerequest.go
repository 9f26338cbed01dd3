package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ChangeRequestRef identifies a pull request within a repository.
type ChangeRequestRef struct {
	Repo   string // "owner/name"
	Number int
}

// String renders the reference as "owner/name#N".
func (r ChangeRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repo, r.Number)
}

// ParseChangeRequestRef parses "owner/name#N" into a ChangeRequestRef.
func ParseChangeRequestRef(s string) (ChangeRequestRef, error) {
	repo, num, ok := strings.Cut(s, "#")
	if !ok {
		return ChangeRequestRef{}, fmt.Errorf("invalid change request %q: expected owner/name#N", s)
	}

	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return ChangeRequestRef{}, fmt.Errorf("invalid change request %q: expected owner/name#N", s)
	}

	number, err := strconv.Atoi(num)
	if err != nil || number <= 0 {
		return ChangeRequestRef{}, fmt.Errorf("invalid change request number in %q", s)
	}

	return ChangeRequestRef{Repo: repo, Number: number}, nil
}

// RawComment is a single unclassified comment, inline review comment, or
// review body attached to a change request.
type RawComment struct {
	ID        int64
	Author    string
	Body      string
	Timestamp time.Time
	Kind      CommentKind
	Path      string // Inline comments only.
	Line      int    // Inline comments only; 0 when the API reports no line.
}

// ChangeRequestStatus is the merge-relevant state of a change request as
// reported by the hosting service.
type ChangeRequestStatus struct {
	IsDraft      bool
	HasConflicts bool
	CIPassed     bool
	HasApproval  bool

	Title     string
	HeadSHA   string
	CIStatus  CIStatus
	Mergeable MergeableStatus
}
