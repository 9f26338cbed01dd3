package model

// MergeDecision is the final merge-readiness verdict for a change request.
// ReadyToMerge implies Readiness == ReadinessReady with no blocking items,
// and AutopilotRecommended implies ReadyToMerge.
type MergeDecision struct {
	ChangeRequest        ChangeRequestRef
	ReadyToMerge         bool
	Readiness            Readiness
	Reason               string
	BlockingItems        []string
	Recommendations      []string
	AutopilotRecommended bool
}
