package model

import "time"

// RemediationPlan buckets a change request's review items by priority.
// Each input item lives in exactly one bucket; bucket order is input order.
type RemediationPlan struct {
	ChangeRequest ChangeRequestRef
	CreatedAt     time.Time

	Critical []ReviewItem
	High     []ReviewItem
	Medium   []ReviewItem
	Low      []ReviewItem
	Deferred []ReviewItem

	// DeferredTrackingItemID is the issue number holding deferred work; 0 when none.
	DeferredTrackingItemID int
}

// Bucket returns the items stored under priority p.
func (p RemediationPlan) Bucket(priority Priority) []ReviewItem {
	switch priority {
	case PriorityCritical:
		return p.Critical
	case PriorityHigh:
		return p.High
	case PriorityMedium:
		return p.Medium
	case PriorityLow:
		return p.Low
	case PriorityDeferred:
		return p.Deferred
	default:
		return nil
	}
}

// HasBlockingItems reports whether the Critical or High bucket is non-empty.
func (p RemediationPlan) HasBlockingItems() bool {
	return len(p.Critical) > 0 || len(p.High) > 0
}

// BlockingItems returns Critical items followed by High items.
func (p RemediationPlan) BlockingItems() []ReviewItem {
	items := make([]ReviewItem, 0, len(p.Critical)+len(p.High))
	items = append(items, p.Critical...)
	return append(items, p.High...)
}

// ActionableItems returns every non-deferred item in priority order.
func (p RemediationPlan) ActionableItems() []ReviewItem {
	items := make([]ReviewItem, 0, p.TotalItems()-len(p.Deferred))
	items = append(items, p.Critical...)
	items = append(items, p.High...)
	items = append(items, p.Medium...)
	return append(items, p.Low...)
}

// TotalItems returns the number of items across all buckets.
func (p RemediationPlan) TotalItems() int {
	return len(p.Critical) + len(p.High) + len(p.Medium) + len(p.Low) + len(p.Deferred)
}
