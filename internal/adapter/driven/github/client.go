// Package github implements the ChangeRequestClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ChangeRequestClient = (*Client)(nil)
	_ driven.WorkflowRunReader   = (*Client)(nil)
)

const perPage = 100

// requestTimeout bounds a single API request, including rate-limit waits.
const requestTimeout = 30 * time.Second

// Client implements driven.ChangeRequestClient against the GitHub REST API.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = requestTimeout

	return &Client{gh: gh.NewClient(rateLimitClient).WithAuthToken(token)}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchComments returns every issue comment, inline review comment, and
// non-empty review body on the pull request, ordered by creation time.
// The three lists are fetched concurrently; any failure fails the call.
func (c *Client) FetchComments(ctx context.Context, ref model.ChangeRequestRef) ([]model.RawComment, error) {
	owner, repo, err := splitRepo(ref.Repo)
	if err != nil {
		return nil, err
	}

	var issueComments, reviewComments, reviewBodies []model.RawComment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		issueComments, err = c.fetchIssueComments(gctx, owner, repo, ref.Number)
		return err
	})
	g.Go(func() error {
		var err error
		reviewComments, err = c.fetchReviewComments(gctx, owner, repo, ref.Number)
		return err
	})
	g.Go(func() error {
		reviews, err := c.fetchReviews(gctx, owner, repo, ref.Number)
		if err != nil {
			return err
		}
		for _, r := range reviews {
			if strings.TrimSpace(r.Body) == "" || r.State == model.ReviewStatePending {
				continue
			}
			reviewBodies = append(reviewBodies, model.RawComment{
				ID:        r.ID,
				Author:    r.ReviewerLogin,
				Body:      r.Body,
				Timestamp: r.SubmittedAt,
				Kind:      model.CommentKindReview,
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]model.RawComment, 0, len(issueComments)+len(reviewComments)+len(reviewBodies))
	all = append(all, issueComments...)
	all = append(all, reviewComments...)
	all = append(all, reviewBodies...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})

	slog.Debug("fetched comments",
		"change_request", ref.String(),
		"issue_comments", len(issueComments),
		"review_comments", len(reviewComments),
		"review_bodies", len(reviewBodies),
	)

	return all, nil
}

func (c *Client) fetchIssueComments(ctx context.Context, owner, repo string, number int) ([]model.RawComment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var all []model.RawComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s/%s#%d (page %d): %w", owner, repo, number, opts.Page, err)
		}

		logRateLimit(resp, owner+"/"+repo+"/issue-comments", opts.Page, len(comments))

		for _, comment := range comments {
			all = append(all, model.RawComment{
				ID:        comment.GetID(),
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				Timestamp: comment.GetCreatedAt().Time,
				Kind:      model.CommentKindGeneral,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (c *Client) fetchReviewComments(ctx context.Context, owner, repo string, number int) ([]model.RawComment, error) {
	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var all []model.RawComment

	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing review comments for %s/%s#%d (page %d): %w", owner, repo, number, opts.Page, err)
		}

		logRateLimit(resp, owner+"/"+repo+"/review-comments", opts.Page, len(comments))

		for _, comment := range comments {
			line := comment.GetLine()
			if line == 0 {
				line = comment.GetOriginalLine()
			}
			all = append(all, model.RawComment{
				ID:        comment.GetID(),
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				Timestamp: comment.GetCreatedAt().Time,
				Kind:      model.CommentKindInline,
				Path:      comment.GetPath(),
				Line:      line,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (c *Client) fetchReviews(ctx context.Context, owner, repo string, number int) ([]model.Review, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var all []model.Review

	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for %s/%s#%d (page %d): %w", owner, repo, number, opts.Page, err)
		}

		logRateLimit(resp, owner+"/"+repo+"/reviews", opts.Page, len(reviews))

		for _, r := range reviews {
			all = append(all, model.Review{
				ID:            r.GetID(),
				ReviewerLogin: r.GetUser().GetLogin(),
				State:         model.ReviewState(strings.ToLower(r.GetState())),
				Body:          r.GetBody(),
				SubmittedAt:   r.GetSubmittedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
