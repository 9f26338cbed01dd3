package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// maxFetchAttempts bounds consecutive failed comment fetches before the
// coordinator gives up on reviewer B.
const maxFetchAttempts = 3

// Clock abstracts time so the wait loop can be driven by tests.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CoordinatorOption configures optional Coordinator behavior.
type CoordinatorOption func(*Coordinator)

// WithClock replaces the wall clock used for deadlines and sleeping.
func WithClock(c Clock) CoordinatorOption {
	return func(co *Coordinator) { co.clock = c }
}

// WithReviewerBWorkflow enables the workflow-failure check for reviewer B when
// the client implements driven.WorkflowRunReader.
func WithReviewerBWorkflow(name string) CoordinatorOption {
	return func(co *Coordinator) { co.workflowName = name }
}

// Coordinator polls a change request until both automated reviewers have
// responded or the timeout elapses. It never fails a run because a reviewer
// is missing; the outcome is recorded in the returned ReviewStatus.
type Coordinator struct {
	client       driven.ChangeRequestClient
	signatures   []model.ReviewerSignature
	workflowName string
	clock        Clock
}

// NewCoordinator creates a Coordinator that recognizes reviewers by signatures.
func NewCoordinator(client driven.ChangeRequestClient, signatures []model.ReviewerSignature, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		client:     client,
		signatures: signatures,
		clock:      realClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WaitForReviews polls every pollInterval until reviewer A is observed and
// reviewer B is observed or known failed, or until timeout elapses.
//
// A timeout with reviewer B absent sets ReviewerBTimedOut and is not an
// error. Three consecutive failed fetches set ReviewerBFailed. Cancelling ctx
// returns the last known status with Incomplete set. The only error returned
// wraps ErrInvalidConfiguration, before any request is made.
func (c *Coordinator) WaitForReviews(ctx context.Context, ref model.ChangeRequestRef, timeout, pollInterval time.Duration) (model.ReviewStatus, error) {
	status, _, err := c.wait(ctx, ref, timeout, pollInterval)
	return status, err
}

// wait implements WaitForReviews and also returns the comment set from the
// last successful fetch. Each fetch is bounded by the remaining wait plus one
// poll interval, so a hung request ends the wait as a timeout.
func (c *Coordinator) wait(ctx context.Context, ref model.ChangeRequestRef, timeout, pollInterval time.Duration) (model.ReviewStatus, []model.RawComment, error) {
	status := model.ReviewStatus{ChangeRequest: ref}

	if err := validateWait(timeout, pollInterval); err != nil {
		return status, nil, err
	}

	start := c.clock.Now()
	deadline := start.Add(timeout)
	failures := 0
	var latest []model.RawComment

	slog.Info("waiting for reviews",
		"change_request", ref.String(),
		"timeout", timeout,
		"poll_interval", pollInterval,
	)

	for {
		if ctx.Err() != nil {
			return c.interrupted(status, start), latest, nil
		}

		status.Polls++
		fetchCtx, cancel := context.WithTimeout(ctx, deadline.Sub(c.clock.Now())+pollInterval)
		comments, err := c.client.FetchComments(fetchCtx, ref)
		switch {
		case err != nil && ctx.Err() != nil:
			cancel()
			return c.interrupted(status, start), latest, nil
		case err != nil && fetchCtx.Err() != nil:
			cancel()
			status.Error = err.Error()
			slog.Warn("comment fetch outlived the review timeout",
				"change_request", ref.String(),
				"error", err,
			)
			return c.timedOut(status, timeout), latest, nil
		case err != nil:
			failures++
			status.Error = err.Error()
			slog.Warn("fetching comments failed",
				"change_request", ref.String(),
				"attempt", failures,
				"max_attempts", maxFetchAttempts,
				"error", err,
			)
			if failures >= maxFetchAttempts {
				cancel()
				if !status.ReviewerBComplete {
					status.ReviewerBFailed = true
				}
				slog.Warn("giving up on reviewer b after repeated fetch failures",
					"change_request", ref.String(),
					"reviewer_a_complete", status.ReviewerAComplete,
				)
				return status.Finalize(), latest, nil
			}
		default:
			failures = 0
			latest = comments
			c.observe(&status, comments)
			c.checkWorkflow(fetchCtx, ref, &status)

			if status.ReviewerAComplete && (status.ReviewerBComplete || status.ReviewerBFailed) {
				cancel()
				status = status.Finalize()
				slog.Info("reviews complete",
					"change_request", ref.String(),
					"reviewer_b", status.ReviewerBOutcome(),
					"elapsed", c.clock.Now().Sub(start).Round(time.Millisecond),
				)
				return status, latest, nil
			}
		}
		cancel()

		now := c.clock.Now()
		if !now.Before(deadline) {
			return c.timedOut(status, timeout), latest, nil
		}

		wait := pollInterval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}

		slog.Debug("reviews pending",
			"change_request", ref.String(),
			"reviewer_a_complete", status.ReviewerAComplete,
			"reviewer_b_complete", status.ReviewerBComplete,
			"remaining", deadline.Sub(now).Round(time.Second),
		)

		if err := c.clock.Sleep(ctx, wait); err != nil {
			return c.interrupted(status, start), latest, nil
		}
	}
}

// Snapshot fetches the comment set once and reports which reviewers have
// responded so far. It neither waits nor marks reviewer B as timed out.
func (c *Coordinator) Snapshot(ctx context.Context, ref model.ChangeRequestRef) model.ReviewStatus {
	status, _ := c.snapshot(ctx, ref)
	return status
}

func (c *Coordinator) snapshot(ctx context.Context, ref model.ChangeRequestRef) (model.ReviewStatus, []model.RawComment) {
	status := model.ReviewStatus{ChangeRequest: ref, Polls: 1}

	comments, err := c.client.FetchComments(ctx, ref)
	if err != nil {
		status.Error = err.Error()
		slog.Warn("fetching comments for snapshot", "change_request", ref.String(), "error", err)
		return status.Finalize(), nil
	}

	c.observe(&status, comments)
	c.checkWorkflow(ctx, ref, &status)
	return status.Finalize(), comments
}

// timedOut finalizes a status whose wait reached the timeout.
func (c *Coordinator) timedOut(status model.ReviewStatus, timeout time.Duration) model.ReviewStatus {
	if !status.ReviewerBComplete && !status.ReviewerBFailed {
		status.ReviewerBTimedOut = true
	}
	if !status.ReviewerAComplete {
		slog.Warn("timed out waiting for reviewer a", "change_request", status.ChangeRequest.String())
	}
	if status.ReviewerBTimedOut {
		slog.Warn("timed out waiting for reviewer b, proceeding without it",
			"change_request", status.ChangeRequest.String(),
			"timeout", timeout,
		)
	}
	return status.Finalize()
}

// observe records the first sighting of each reviewer in comments.
func (c *Coordinator) observe(status *model.ReviewStatus, comments []model.RawComment) {
	for _, comment := range comments {
		switch attributeReviewer(comment.Author, comment.Body, c.signatures) {
		case model.ReviewerA:
			if !status.ReviewerAComplete {
				status.ReviewerAComplete = true
				status.ReviewerAAt = c.clock.Now()
				slog.Info("reviewer a found", "change_request", status.ChangeRequest.String())
			}
		case model.ReviewerB:
			if !status.ReviewerBComplete {
				status.ReviewerBComplete = true
				status.ReviewerBFailed = false
				status.ReviewerBAt = c.clock.Now()
				slog.Info("reviewer b found", "change_request", status.ChangeRequest.String())
			}
		}
	}
}

// checkWorkflow marks reviewer B as failed when its CI workflow has failed.
// Errors are logged and ignored; a missing signal is not a failure.
func (c *Coordinator) checkWorkflow(ctx context.Context, ref model.ChangeRequestRef, status *model.ReviewStatus) {
	if c.workflowName == "" || status.ReviewerBComplete || status.ReviewerBFailed {
		return
	}

	reader, ok := c.client.(driven.WorkflowRunReader)
	if !ok {
		return
	}

	failed, err := reader.WorkflowRunFailed(ctx, ref, c.workflowName)
	if err != nil {
		slog.Debug("checking reviewer b workflow", "change_request", ref.String(), "error", err)
		return
	}

	if failed {
		status.ReviewerBFailed = true
		slog.Warn("reviewer b workflow failed, continuing without it",
			"change_request", ref.String(),
			"workflow", c.workflowName,
		)
	}
}

// interrupted finalizes a status whose wait was cancelled.
func (c *Coordinator) interrupted(status model.ReviewStatus, start time.Time) model.ReviewStatus {
	status.Incomplete = true
	slog.Warn("review wait cancelled",
		"change_request", status.ChangeRequest.String(),
		"elapsed", c.clock.Now().Sub(start).Round(time.Millisecond),
		"polls", status.Polls,
	)
	return status.Finalize()
}
