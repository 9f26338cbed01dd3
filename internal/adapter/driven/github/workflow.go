package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// workflowRunLookback is how many recent pull_request runs are inspected.
const workflowRunLookback = 50

// WorkflowRunFailed reports whether the most recent run of the named Actions
// workflow for the pull request concluded with failure, cancelled, or
// timed_out. It returns false when no matching run exists.
func (c *Client) WorkflowRunFailed(ctx context.Context, ref model.ChangeRequestRef, workflowName string) (bool, error) {
	owner, repo, err := splitRepo(ref.Repo)
	if err != nil {
		return false, err
	}

	opts := &gh.ListWorkflowRunsOptions{
		Event:       "pull_request",
		ListOptions: gh.ListOptions{PerPage: workflowRunLookback},
	}

	runs, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		return false, fmt.Errorf("listing workflow runs for %s: %w", ref.Repo, err)
	}
	logRateLimit(resp, ref.Repo+"/actions/runs", 0, len(runs.WorkflowRuns))

	// Runs are returned newest first; the first match is the latest attempt.
	for _, run := range runs.WorkflowRuns {
		if !strings.EqualFold(run.GetName(), workflowName) || !runForPullRequest(run, ref.Number) {
			continue
		}
		switch run.GetConclusion() {
		case "failure", "cancelled", "timed_out": //nolint:misspell // GitHub API uses British "cancelled"
			return true, nil
		default:
			return false, nil
		}
	}

	return false, nil
}

func runForPullRequest(run *gh.WorkflowRun, number int) bool {
	for _, pr := range run.PullRequests {
		if pr.GetNumber() == number {
			return true
		}
	}
	return false
}
