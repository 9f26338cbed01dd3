package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// RunOptions controls a single pipeline run.
type RunOptions struct {
	// OriginIssue is the tracked work item the change request implements; 0 if unknown.
	OriginIssue int
	// SkipWait takes one snapshot of reviewer state instead of waiting.
	SkipWait bool
	// PostComment posts the decision back to the change request.
	PostComment bool
}

// Pipeline runs the coordinator, classifier, planner, and evaluator in that
// fixed order for one change request and records the outcome.
type Pipeline struct {
	client      driven.ChangeRequestClient
	signatures  driven.SignatureStore
	evaluations driven.EvaluationStore
	tracking    driven.TrackingStore
	recorder    driven.MetricsRecorder
	cfg         EngineConfig
	coordOpts   []CoordinatorOption
	now         func() time.Time

	// trackingGroup collapses concurrent tracking-item creation per change request.
	trackingGroup singleflight.Group
}

// NewPipeline creates a Pipeline with the required dependencies. recorder may be nil.
func NewPipeline(
	client driven.ChangeRequestClient,
	signatures driven.SignatureStore,
	evaluations driven.EvaluationStore,
	tracking driven.TrackingStore,
	recorder driven.MetricsRecorder,
	cfg EngineConfig,
	coordOpts ...CoordinatorOption,
) *Pipeline {
	return &Pipeline{
		client:      client,
		signatures:  signatures,
		evaluations: evaluations,
		tracking:    tracking,
		recorder:    recorder,
		cfg:         cfg,
		coordOpts:   coordOpts,
		now:         time.Now,
	}
}

// Run evaluates ref and returns the recorded evaluation. Missing reviews, CI
// signal, approval, or a failing transport never stop a run; they surface as
// the decision's readiness. Only invalid configuration is returned as an error.
func (p *Pipeline) Run(ctx context.Context, ref model.ChangeRequestRef, opts RunOptions) (model.Evaluation, error) {
	if err := p.cfg.Validate(); err != nil {
		return model.Evaluation{}, err
	}

	signatures := p.loadSignatures(ctx)

	// 1. Wait for automated reviewers.
	coordOpts := append([]CoordinatorOption{WithReviewerBWorkflow(p.cfg.ReviewerBWorkflow)}, p.coordOpts...)
	coordinator := NewCoordinator(p.client, signatures, coordOpts...)

	waitStart := p.now()
	var (
		status   model.ReviewStatus
		comments []model.RawComment
	)
	if opts.SkipWait {
		snapCtx, cancel := context.WithTimeout(ctx, p.cfg.ReviewTimeout)
		status, comments = coordinator.snapshot(snapCtx, ref)
		cancel()
	} else {
		var err error
		status, comments, err = coordinator.wait(ctx, ref, p.cfg.ReviewTimeout, p.cfg.PollInterval)
		if err != nil {
			return model.Evaluation{}, err
		}
	}
	if p.recorder != nil {
		p.recorder.ObserveWait(status, p.now().Sub(waitStart))
	}

	// 2. Classify the comment set the coordinator last fetched.
	items := NewClassifier(signatures).Classify(comments)
	slog.Info("classified review comments",
		"change_request", ref.String(),
		"items", len(items),
		"by_priority", CountByPriority(items),
	)
	if p.recorder != nil {
		p.recorder.ObserveItems(items)
	}

	// 3. Build the remediation plan and file deferred work once.
	planner := NewPlanner(p.client, p.cfg.DeferredLabels)
	plan := planner.CreatePlan(ref, items)
	if len(plan.Deferred) > 0 {
		plan.DeferredTrackingItemID = p.ensureTrackingItem(ctx, planner, plan, ref, opts.OriginIssue)
	}

	// 4. Evaluate merge readiness against the current change request state.
	crStatus, err := p.client.FetchStatus(ctx, ref)
	if err != nil {
		slog.Warn("fetching change request status, evaluating with unknown state",
			"change_request", ref.String(),
			"error", err,
		)
		crStatus = model.ChangeRequestStatus{CIStatus: model.CIStatusUnknown, Mergeable: model.MergeableUnknown}
	}

	decision := NewEvaluator(p.cfg).Evaluate(ref, status, plan,
		crStatus.CIPassed, crStatus.HasApproval, crStatus.IsDraft, crStatus.HasConflicts)
	if p.recorder != nil {
		p.recorder.ObserveDecision(decision)
	}

	slog.Info("merge decision",
		"change_request", ref.String(),
		"readiness", decision.Readiness,
		"ready", decision.ReadyToMerge,
		"autopilot", decision.AutopilotRecommended,
		"reason", decision.Reason,
	)

	eval := model.Evaluation{
		ChangeRequest: ref,
		Status:        status,
		Plan:          plan,
		Decision:      decision,
		EvaluatedAt:   p.now().UTC(),
	}

	saved, err := p.evaluations.Save(ctx, eval)
	if err != nil {
		slog.Error("saving evaluation", "change_request", ref.String(), "error", err)
	} else {
		eval = saved
	}

	if opts.PostComment {
		p.postDecision(ctx, ref, plan, decision)
	}

	return eval, nil
}

// loadSignatures reads configured signatures, falling back to the defaults
// when the store is empty or unavailable.
func (p *Pipeline) loadSignatures(ctx context.Context) []model.ReviewerSignature {
	sigs, err := p.signatures.ListAll(ctx)
	if err != nil {
		slog.Warn("loading reviewer signatures, using defaults", "error", err)
		return model.DefaultSignatures()
	}
	if len(sigs) == 0 {
		return model.DefaultSignatures()
	}
	return sigs
}

// ensureTrackingItem returns the existing tracking issue for ref or creates
// one. Concurrent runs for the same change request share a single creation.
// Failures are logged and yield 0 so evaluation continues.
func (p *Pipeline) ensureTrackingItem(ctx context.Context, planner *Planner, plan model.RemediationPlan, ref model.ChangeRequestRef, originIssue int) int {
	v, _, _ := p.trackingGroup.Do(trackingKey(ref), func() (any, error) {
		existing, err := p.tracking.Get(ctx, ref)
		if err != nil {
			slog.Warn("looking up deferred tracking item", "change_request", ref.String(), "error", err)
			return 0, nil
		}
		if existing != nil {
			return existing.TrackingItemID, nil
		}

		id, err := planner.CreateDeferredTrackingItem(ctx, plan, ref, originIssue)
		if err != nil {
			slog.Warn("deferred items not tracked", "change_request", ref.String(), "error", err)
			return 0, nil
		}

		rec := model.TrackingRecord{ChangeRequest: ref, TrackingItemID: id, CreatedAt: p.now().UTC()}
		if err := p.tracking.Record(ctx, rec); err != nil {
			slog.Error("recording deferred tracking item", "change_request", ref.String(), "issue", id, "error", err)
		}
		return id, nil
	})

	return v.(int)
}

// trackingKey identifies a change request regardless of repository case.
func trackingKey(ref model.ChangeRequestRef) string {
	return strings.ToLower(ref.String())
}

func (p *Pipeline) postDecision(ctx context.Context, ref model.ChangeRequestRef, plan model.RemediationPlan, decision model.MergeDecision) {
	body := FormatReviewSummaryComment(plan, decision)
	if decision.ReadyToMerge {
		body = FormatMergeReadyComment(plan, decision)
	}

	if err := p.client.PostComment(ctx, ref, body); err != nil {
		slog.Warn("posting decision comment", "change_request", ref.String(), "error", err)
	}
}
