package model

import "strconv"

// ReviewItem is one classified unit of review feedback. Every raw comment
// produces exactly one ReviewItem.
type ReviewItem struct {
	CommentID   int64
	Priority    Priority
	Description string
	File        string // Empty when no location was found.
	Line        int    // 0 when no line was found.
	Reviewer    Reviewer
	Category    Category // CategoryNone when no category keyword matched.
	Suggestion  string   // Best-effort suggested fix; empty when none.
	RawText     string   // Original comment body, unaltered.
}

// IsBlocking reports whether the item prevents a ready merge decision.
func (i ReviewItem) IsBlocking() bool {
	return i.Priority == PriorityCritical || i.Priority == PriorityHigh
}

// Location renders "file:line", "file", or "" depending on what is known.
func (i ReviewItem) Location() string {
	if i.File == "" {
		return ""
	}
	if i.Line > 0 {
		return i.File + ":" + strconv.Itoa(i.Line)
	}
	return i.File
}
