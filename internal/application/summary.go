package application

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

const rule = "============================================================"

// maxCommentItems limits how many blocking items a PR comment lists.
const maxCommentItems = 5

// FormatDecision renders a decision as a plain-text block for terminals and logs.
func FormatDecision(d model.MergeDecision) string {
	lines := []string{
		rule,
		"Merge Recommendation: " + d.ChangeRequest.String(),
		rule,
		"",
	}

	if d.ReadyToMerge {
		lines = append(lines, "✅ READY TO MERGE")
	} else {
		lines = append(lines, fmt.Sprintf("❌ NOT READY (%s)", strings.ToUpper(string(d.Readiness))))
	}
	lines = append(lines, "Reason: "+d.Reason, "")

	if len(d.BlockingItems) > 0 {
		lines = append(lines, "Blocking Items:")
		for _, item := range d.BlockingItems {
			lines = append(lines, "  • "+headline(item, 120))
		}
		lines = append(lines, "")
	}

	if len(d.Recommendations) > 0 {
		lines = append(lines, "Recommendations:")
		for _, rec := range d.Recommendations {
			lines = append(lines, "  • "+rec)
		}
		lines = append(lines, "")
	}

	if d.AutopilotRecommended {
		lines = append(lines, "🤖 AUTOPILOT RECOMMENDED", "")
	}

	lines = append(lines, rule)
	return strings.Join(lines, "\n")
}

// FormatPlanSummary renders per-bucket counts with blocking item headlines.
func FormatPlanSummary(plan model.RemediationPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Remediation Plan for %s\n%s\n", plan.ChangeRequest, rule)
	fmt.Fprintf(&b, "Total Items: %d\n\n", plan.TotalItems())

	if len(plan.Critical) > 0 {
		fmt.Fprintf(&b, "🔴 Critical: %d\n", len(plan.Critical))
		for _, item := range plan.Critical {
			fmt.Fprintf(&b, "  - %s\n", headline(item.Description, 80))
		}
		b.WriteString("\n")
	}
	if len(plan.High) > 0 {
		fmt.Fprintf(&b, "🟠 High Priority: %d\n", len(plan.High))
		for _, item := range plan.High {
			fmt.Fprintf(&b, "  - %s\n", headline(item.Description, 80))
		}
		b.WriteString("\n")
	}
	if len(plan.Medium) > 0 {
		fmt.Fprintf(&b, "🟡 Medium Priority: %d\n\n", len(plan.Medium))
	}
	if len(plan.Low) > 0 {
		fmt.Fprintf(&b, "🟢 Low Priority: %d\n\n", len(plan.Low))
	}
	if len(plan.Deferred) > 0 {
		fmt.Fprintf(&b, "⏭️ Deferred: %d\n", len(plan.Deferred))
		if plan.DeferredTrackingItemID > 0 {
			fmt.Fprintf(&b, "   (Logged in issue #%d)\n", plan.DeferredTrackingItemID)
		}
		b.WriteString("\n")
	}

	if plan.HasBlockingItems() {
		b.WriteString("⚠️ BLOCKING ITEMS PRESENT - address before merge")
	} else {
		b.WriteString("✓ No blocking items")
	}

	return b.String()
}

// FormatReviewSummaryComment renders the markdown comment posted on a change
// request that is not ready to merge.
func FormatReviewSummaryComment(plan model.RemediationPlan, d model.MergeDecision) string {
	var b strings.Builder

	b.WriteString("## 🤖 Automated Review Summary\n\n")
	fmt.Fprintf(&b, "**Status:** %s\n\n", readinessLabel(d.Readiness))
	fmt.Fprintf(&b, "**Reason:** %s\n\n", d.Reason)

	b.WriteString("| Priority | Items |\n|---|---|\n")
	for _, p := range model.Priorities {
		fmt.Fprintf(&b, "| %s | %d |\n", priorityLabel(p), len(plan.Bucket(p)))
	}
	b.WriteString("\n")

	if blocking := plan.BlockingItems(); len(blocking) > 0 {
		b.WriteString("### Blocking Items\n\n")
		for i, item := range blocking {
			if i == maxCommentItems {
				fmt.Fprintf(&b, "- …and %d more\n", len(blocking)-maxCommentItems)
				break
			}
			fmt.Fprintf(&b, "- **%s** %s", priorityLabel(item.Priority), headline(item.Description, 160))
			if loc := item.Location(); loc != "" {
				fmt.Fprintf(&b, " (`%s`)", loc)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(d.Recommendations) > 0 {
		b.WriteString("### Next Steps\n\n")
		for _, rec := range d.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if plan.DeferredTrackingItemID > 0 {
		fmt.Fprintf(&b, "📋 Deferred items are tracked in #%d\n", plan.DeferredTrackingItemID)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatMergeReadyComment renders the markdown comment posted when a change
// request is ready to merge.
func FormatMergeReadyComment(plan model.RemediationPlan, d model.MergeDecision) string {
	var b strings.Builder

	b.WriteString("## ✅ Ready to Merge\n\n")
	b.WriteString("All automated reviews are complete, no blocking items remain, and merge gates are satisfied.\n\n")

	for _, rec := range d.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	if d.AutopilotRecommended {
		b.WriteString("\n🤖 Autopilot is enabled for this change request.\n")
	}

	if plan.DeferredTrackingItemID > 0 {
		fmt.Fprintf(&b, "\n📋 Deferred items are tracked in #%d\n", plan.DeferredTrackingItemID)
	}

	return strings.TrimRight(b.String(), "\n")
}

func readinessLabel(r model.Readiness) string {
	switch r {
	case model.ReadinessReady:
		return "✅ Ready"
	case model.ReadinessBlocked:
		return "🚫 Blocked"
	case model.ReadinessWaitingReviews:
		return "⏳ Waiting for reviews"
	case model.ReadinessWaitingCI:
		return "⏳ Waiting for CI"
	case model.ReadinessWaitingApproval:
		return "⏳ Waiting for approval"
	case model.ReadinessDraft:
		return "📝 Draft"
	default:
		return string(r)
	}
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "Critical"
	case model.PriorityHigh:
		return "High"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityLow:
		return "Low"
	case model.PriorityDeferred:
		return "Deferred"
	default:
		return string(p)
	}
}
