package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// ErrNoDeferredItems is returned when a tracking item is requested for a plan
// without deferred items.
var ErrNoDeferredItems = errors.New("plan has no deferred items")

// Planner aggregates review items into a remediation plan and files
// deferred work as a tracking issue.
type Planner struct {
	client driven.ChangeRequestClient
	labels []string
	now    func() time.Time
}

// NewPlanner creates a Planner. client may be nil when only CreatePlan is used.
func NewPlanner(client driven.ChangeRequestClient, labels []string) *Planner {
	return &Planner{
		client: client,
		labels: labels,
		now:    time.Now,
	}
}

// CreatePlan buckets items by priority, preserving input order within each bucket.
func (p *Planner) CreatePlan(ref model.ChangeRequestRef, items []model.ReviewItem) model.RemediationPlan {
	plan := model.RemediationPlan{
		ChangeRequest: ref,
		CreatedAt:     p.now().UTC(),
		Critical:      []model.ReviewItem{},
		High:          []model.ReviewItem{},
		Medium:        []model.ReviewItem{},
		Low:           []model.ReviewItem{},
		Deferred:      []model.ReviewItem{},
	}

	for _, item := range items {
		switch item.Priority {
		case model.PriorityCritical:
			plan.Critical = append(plan.Critical, item)
		case model.PriorityHigh:
			plan.High = append(plan.High, item)
		case model.PriorityLow:
			plan.Low = append(plan.Low, item)
		case model.PriorityDeferred:
			plan.Deferred = append(plan.Deferred, item)
		default:
			plan.Medium = append(plan.Medium, item)
		}
	}

	slog.Info("remediation plan created",
		"change_request", ref.String(),
		"critical", len(plan.Critical),
		"high", len(plan.High),
		"medium", len(plan.Medium),
		"low", len(plan.Low),
		"deferred", len(plan.Deferred),
	)

	return plan
}

// CreateDeferredTrackingItem opens an issue listing the plan's deferred items
// and links it from the change request. originIssue is the tracked work item
// the change request implements; 0 omits the back-reference.
//
// The caller is responsible for invoking this at most once per change
// request; no deduplication happens here.
func (p *Planner) CreateDeferredTrackingItem(ctx context.Context, plan model.RemediationPlan, ref model.ChangeRequestRef, originIssue int) (int, error) {
	if len(plan.Deferred) == 0 {
		return 0, ErrNoDeferredItems
	}

	title := fmt.Sprintf("Deferred tasks from PR #%d", ref.Number)
	body := FormatDeferredTrackingBody(plan, ref, originIssue, p.now())

	issueNumber, err := p.client.CreateTrackingItem(ctx, ref.Repo, title, body, p.labels)
	if err != nil {
		return 0, fmt.Errorf("creating deferred tracking item for %s: %w", ref, err)
	}

	slog.Info("deferred tracking item created",
		"change_request", ref.String(),
		"issue", issueNumber,
		"items", len(plan.Deferred),
	)

	link := fmt.Sprintf("📋 Deferred tasks have been logged in #%d", issueNumber)
	if err := p.client.PostComment(ctx, ref, link); err != nil {
		slog.Warn("linking deferred tracking item", "change_request", ref.String(), "issue", issueNumber, "error", err)
	}

	return issueNumber, nil
}

// FormatDeferredTrackingBody renders deferred items grouped under category
// headings in first-seen order, with uncategorized items last.
func FormatDeferredTrackingBody(plan model.RemediationPlan, ref model.ChangeRequestRef, originIssue int, createdAt time.Time) string {
	var order []model.Category
	groups := make(map[model.Category][]model.ReviewItem)

	for _, item := range plan.Deferred {
		cat := item.Category
		if cat == model.CategoryNone {
			cat = model.CategoryOther
		}
		if _, seen := groups[cat]; !seen && cat != model.CategoryOther {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], item)
	}
	if len(groups[model.CategoryOther]) > 0 {
		order = append(order, model.CategoryOther)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Deferred Tasks from PR #%d\n\n", ref.Number)
	b.WriteString("The following items were identified during code review and deferred for future work.\n\n")

	for _, cat := range order {
		fmt.Fprintf(&b, "## %s\n\n", categoryHeading(cat))
		for _, item := range groups[cat] {
			fmt.Fprintf(&b, "- [ ] %s", headline(item.Description, 200))
			if loc := item.Location(); loc != "" {
				fmt.Fprintf(&b, " (`%s`)", loc)
			}
			if item.Reviewer == model.ReviewerA || item.Reviewer == model.ReviewerB {
				fmt.Fprintf(&b, " _via %s_", item.Reviewer)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Context\n\n")
	fmt.Fprintf(&b, "- Original PR: #%d\n", ref.Number)
	if originIssue > 0 {
		fmt.Fprintf(&b, "- Original Issue: #%d\n", originIssue)
	}
	fmt.Fprintf(&b, "- Created: %s\n", createdAt.UTC().Format(time.RFC3339))

	return b.String()
}

func categoryHeading(cat model.Category) string {
	switch cat {
	case model.CategorySecurity:
		return "Security"
	case model.CategoryPerformance:
		return "Performance"
	case model.CategoryBug:
		return "Bugs"
	case model.CategoryStyle:
		return "Style"
	case model.CategoryTesting:
		return "Testing"
	case model.CategoryDocs:
		return "Documentation"
	default:
		return "Other Tasks"
	}
}

// headline returns the first non-empty line of s, truncated to limit runes.
func headline(s string, limit int) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > limit {
			return string(r[:limit-1]) + "…"
		}
		return line
	}
	return ""
}
