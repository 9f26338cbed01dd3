package github

import (
	"context"
	"fmt"
	"log/slog"

	gh "github.com/google/go-github/v82/github"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// FetchStatus reports draft state, mergeability, CI outcome, and human
// approval for the pull request. CI counts as passed when every check on
// the head commit succeeded or when the commit has no checks at all.
func (c *Client) FetchStatus(ctx context.Context, ref model.ChangeRequestRef) (model.ChangeRequestStatus, error) {
	owner, repo, err := splitRepo(ref.Repo)
	if err != nil {
		return model.ChangeRequestStatus{}, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, ref.Number)
	if err != nil {
		return model.ChangeRequestStatus{}, fmt.Errorf("fetching pull request %s: %w", ref, err)
	}
	logRateLimit(resp, ref.Repo+"/pull", 0, 1)

	headSHA := pr.GetHead().GetSHA()

	var (
		checkRuns []model.CheckRun
		combined  *model.CombinedStatus
		reviews   []model.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		checkRuns, err = c.fetchCheckRuns(gctx, owner, repo, headSHA)
		return err
	})
	g.Go(func() error {
		var err error
		combined, err = c.fetchCombinedStatus(gctx, owner, repo, headSHA)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = c.fetchReviews(gctx, owner, repo, ref.Number)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ChangeRequestStatus{}, err
	}

	ci := model.SummarizeCI(checkRuns, combined)
	mergeable := mapMergeable(pr.Mergeable)

	status := model.ChangeRequestStatus{
		IsDraft:      pr.GetDraft(),
		HasConflicts: mergeable == model.MergeableConflicted,
		CIPassed:     ci == model.CIStatusPassing || ci == model.CIStatusUnknown,
		HasApproval:  model.HasHumanApproval(reviews),
		Title:        pr.GetTitle(),
		HeadSHA:      headSHA,
		CIStatus:     ci,
		Mergeable:    mergeable,
	}

	slog.Debug("fetched change request status",
		"change_request", ref.String(),
		"draft", status.IsDraft,
		"mergeable", status.Mergeable,
		"ci", status.CIStatus,
		"approved", status.HasApproval,
	)

	return status, nil
}

func (c *Client) fetchCheckRuns(ctx context.Context, owner, repo, sha string) ([]model.CheckRun, error) {
	opts := &gh.ListCheckRunsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var all []model.CheckRun

	for {
		result, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, owner, repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("listing check runs for %s/%s@%s (page %d): %w", owner, repo, sha, opts.Page, err)
		}

		logRateLimit(resp, owner+"/"+repo+"/check-runs", opts.Page, len(result.CheckRuns))

		for _, cr := range result.CheckRuns {
			all = append(all, model.CheckRun{
				ID:          cr.GetID(),
				Name:        cr.GetName(),
				Status:      cr.GetStatus(),
				Conclusion:  cr.GetConclusion(),
				CompletedAt: cr.GetCompletedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// fetchCombinedStatus returns nil when the commit has no legacy statuses.
func (c *Client) fetchCombinedStatus(ctx context.Context, owner, repo, sha string) (*model.CombinedStatus, error) {
	cs, resp, err := c.gh.Repositories.GetCombinedStatus(ctx, owner, repo, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching combined status for %s/%s@%s: %w", owner, repo, sha, err)
	}

	logRateLimit(resp, owner+"/"+repo+"/status", 0, len(cs.Statuses))

	if len(cs.Statuses) == 0 {
		return nil, nil
	}

	statuses := make([]model.CommitStatus, 0, len(cs.Statuses))
	for _, s := range cs.Statuses {
		statuses = append(statuses, model.CommitStatus{
			Context: s.GetContext(),
			State:   s.GetState(),
		})
	}

	return &model.CombinedStatus{State: cs.GetState(), Statuses: statuses}, nil
}

// mapMergeable converts GitHub's tri-state mergeable field. nil means GitHub
// has not computed it yet.
func mapMergeable(mergeable *bool) model.MergeableStatus {
	if mergeable == nil {
		return model.MergeableUnknown
	}
	if *mergeable {
		return model.MergeableMergeable
	}
	return model.MergeableConflicted
}
