package application

import (
	"fmt"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// Evaluator combines review completion, plan severity, CI, approval, draft,
// and conflict state into a single merge decision. It performs no I/O.
type Evaluator struct {
	requireHumanApproval bool
	requireCIPass        bool
	autopilotMode        bool
}

// NewEvaluator creates an Evaluator using the policy flags from cfg.
func NewEvaluator(cfg EngineConfig) *Evaluator {
	return &Evaluator{
		requireHumanApproval: cfg.RequireHumanApproval,
		requireCIPass:        cfg.RequireCIPass,
		autopilotMode:        cfg.AutopilotMode,
	}
}

// Evaluate returns the merge decision for a change request. The first
// matching gate determines readiness:
//
//  1. draft
//  2. merge conflicts (blocked)
//  3. automated reviews incomplete
//  4. critical or high items (blocked)
//  5. CI not passed, when required
//  6. no human approval, when required
//  7. ready
func (e *Evaluator) Evaluate(
	ref model.ChangeRequestRef,
	status model.ReviewStatus,
	plan model.RemediationPlan,
	ciPassed bool,
	hasApproval bool,
	isDraft bool,
	hasConflicts bool,
) model.MergeDecision {
	if isDraft {
		return notReady(ref, model.ReadinessDraft,
			"change request is still a draft",
			[]string{"change request is in draft mode"},
			[]string{"Mark the change request as ready for review"},
		)
	}

	if hasConflicts {
		return notReady(ref, model.ReadinessBlocked,
			"merge conflicts present",
			[]string{"merge conflicts present"},
			[]string{"Resolve merge conflicts with the base branch", "Push the resolution and wait for re-review"},
		)
	}

	if !status.AllComplete {
		return notReady(ref, model.ReadinessWaitingReviews,
			"automated reviews not complete",
			pendingReviewers(status),
			[]string{"Wait for automated reviews to complete"},
		)
	}

	if plan.HasBlockingItems() {
		blocking := plan.BlockingItems()
		descriptions := make([]string, 0, len(blocking))
		for _, item := range blocking {
			descriptions = append(descriptions, item.Description)
		}
		return notReady(ref, model.ReadinessBlocked,
			fmt.Sprintf("%d blocking issues found in review", len(blocking)),
			descriptions,
			[]string{"Address all critical and high priority items", "Push fixes and wait for re-review"},
		)
	}

	if e.requireCIPass && !ciPassed {
		return notReady(ref, model.ReadinessWaitingCI,
			"CI checks have not passed",
			[]string{"CI checks are failing or still running"},
			[]string{"Fix failing CI checks"},
		)
	}

	if e.requireHumanApproval && !hasApproval {
		return notReady(ref, model.ReadinessWaitingApproval,
			"waiting for human approval",
			[]string{"human approval required"},
			[]string{"Request review from a team member"},
		)
	}

	return model.MergeDecision{
		ChangeRequest:        ref,
		ReadyToMerge:         true,
		Readiness:            model.ReadinessReady,
		Reason:               "all checks passed - ready to merge",
		BlockingItems:        []string{},
		Recommendations:      e.readyRecommendations(status, plan),
		AutopilotRecommended: e.autopilotMode,
	}
}

func notReady(ref model.ChangeRequestRef, readiness model.Readiness, reason string, blocking, recommendations []string) model.MergeDecision {
	return model.MergeDecision{
		ChangeRequest:   ref,
		ReadyToMerge:    false,
		Readiness:       readiness,
		Reason:          reason,
		BlockingItems:   blocking,
		Recommendations: recommendations,
	}
}

// pendingReviewers names each automated reviewer still outstanding.
func pendingReviewers(status model.ReviewStatus) []string {
	var pending []string
	if !status.ReviewerAComplete {
		pending = append(pending, "reviewer A review not complete")
	}
	if !status.ReviewerBComplete && !status.ReviewerBFailed && !status.ReviewerBTimedOut {
		pending = append(pending, "reviewer B review not complete")
	}
	if len(pending) == 0 {
		pending = append(pending, "automated reviews not complete")
	}
	return pending
}

func (e *Evaluator) readyRecommendations(status model.ReviewStatus, plan model.RemediationPlan) []string {
	recs := []string{"Merge now"}

	if n := len(plan.Deferred); n > 0 {
		if plan.DeferredTrackingItemID > 0 {
			recs = append(recs, fmt.Sprintf("%d deferred items tracked in #%d", n, plan.DeferredTrackingItemID))
		} else {
			recs = append(recs, fmt.Sprintf("%d deferred items should be tracked for follow-up", n))
		}
	}

	if n := len(plan.Medium) + len(plan.Low); n > 0 {
		recs = append(recs, fmt.Sprintf("Consider addressing %d medium/low priority items in a follow-up", n))
	}

	switch {
	case status.ReviewerBTimedOut:
		recs = append(recs, "Reviewer B timed out; decision is based on reviewer A only")
	case status.ReviewerBFailed:
		recs = append(recs, "Reviewer B failed; decision is based on reviewer A only")
	}

	if e.autopilotMode {
		recs = append(recs, "Autopilot enabled: merge and proceed to the next task")
	}

	return recs
}
