package github

import (
	"context"
	"fmt"
	"log/slog"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// CreateTrackingItem opens an issue in repo and returns its number.
func (c *Client) CreateTrackingItem(ctx context.Context, repoFullName, title, body string, labels []string) (int, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return 0, err
	}

	req := &gh.IssueRequest{
		Title: gh.Ptr(title),
		Body:  gh.Ptr(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	issue, resp, err := c.gh.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return 0, fmt.Errorf("creating issue in %s: %w", repoFullName, err)
	}
	logRateLimit(resp, repoFullName+"/issues", 0, 1)

	slog.Info("issue created", "repo", repoFullName, "issue", issue.GetNumber(), "title", title)

	return issue.GetNumber(), nil
}

// PostComment adds a general comment to the pull request conversation.
func (c *Client) PostComment(ctx context.Context, ref model.ChangeRequestRef, body string) error {
	owner, repo, err := splitRepo(ref.Repo)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, ref.Number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("commenting on %s: %w", ref, err)
	}
	logRateLimit(resp, ref.Repo+"/issue-comments", 0, 1)

	return nil
}
