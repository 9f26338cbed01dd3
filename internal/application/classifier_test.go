package application

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

func classifyBody(body string) model.ReviewItem {
	items := NewClassifier(model.DefaultSignatures()).Classify([]model.RawComment{{Author: "alice", Body: body}})
	return items[0]
}

const vercelComment = "**The latest updates on your projects**. Learn more about [Vercel for Git ↗︎](https://vercel.link/github-learn-more)\n\n" +
	"| Name | Status | Preview | Updated (UTC) |\n" +
	"| :--- | :----- | :------ | :------ |\n" +
	"| **web** | ✅ Ready ([Inspect](https://vercel.com/acme/web/9f8WqkZ2)) | [Visit Preview](https://web-git-feature-acme.vercel.app) | Mar 1, 2026 12:00pm |\n\n" +
	"<!-- [vc]: #eyJpc01vbm9yZXBvIjp0cnVlLCJ0eXBlIjoiZ2l0aHViIiwicHJvamVjdHMiOlt7Im5hbWUiOiJ3ZWIifV19 -->"

func TestClassify_CardinalityPreserved(t *testing.T) {
	comments := []model.RawComment{
		{Author: "alice", Body: ""},
		{Author: "alice", Body: "   "},
		{Author: "vercel[bot]", Body: vercelComment},
		{Author: "bob", Body: strings.Repeat("QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo=", 8)},
		{Author: "github-actions[bot]", Body: "## 🔍 Perplexity Code Review\n[HIGH] missing nil check"},
		{Author: "copilot[bot]", Body: "consider renaming"},
		{Author: "carol", Body: "[CRITICAL] [LOW] mixed markers"},
		{Author: "carol", Body: "\x00\xff binary garbage"},
	}

	for n := 0; n <= len(comments); n++ {
		items := NewClassifier(model.DefaultSignatures()).Classify(comments[:n])
		require.Len(t, items, n)
	}
}

func TestClassify_PreservesOrder(t *testing.T) {
	var comments []model.RawComment
	for i := range 20 {
		comments = append(comments, model.RawComment{ID: int64(i + 1), Author: "alice", Body: fmt.Sprintf("comment %d", i)})
	}

	items := NewClassifier(nil).Classify(comments)

	require.Len(t, items, 20)
	for i, item := range items {
		assert.Equal(t, int64(i+1), item.CommentID)
		assert.Equal(t, comments[i].Body, item.RawText)
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	items := NewClassifier(nil).Classify(nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClassify_CriticalMarkerStripped(t *testing.T) {
	item := classifyBody("[CRITICAL] SQL injection in query builder")

	assert.Equal(t, model.PriorityCritical, item.Priority)
	assert.Equal(t, "SQL injection in query builder", item.Description)
	assert.Equal(t, "[CRITICAL] SQL injection in query builder", item.RawText)
	assert.Equal(t, model.CategorySecurity, item.Category)
	assert.True(t, item.IsBlocking())
}

func TestClassify_DeferredBeforeLow(t *testing.T) {
	item := classifyBody("consider adding i18n support later")

	assert.Equal(t, model.PriorityDeferred, item.Priority)
	assert.Equal(t, "consider adding i18n support later", item.Description)
	assert.Equal(t, model.CategoryNone, item.Category)
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.Priority
	}{
		{name: "bracket critical", body: "[critical] tokens logged in plaintext", want: model.PriorityCritical},
		{name: "bold high", body: "**High** the retry loop never exits", want: model.PriorityHigh},
		{name: "bold high with colon", body: "**HIGH:** the retry loop never exits", want: model.PriorityHigh},
		{name: "bracket medium", body: "[MEDIUM] extract this into a helper", want: model.PriorityMedium},
		{name: "bracket low", body: "[Low] typo in log message", want: model.PriorityLow},
		{name: "bracket deferred", body: "[DEFERRED] move to the new config format", want: model.PriorityDeferred},
		{name: "marker beats keyword", body: "[LOW] potential crash only in debug builds", want: model.PriorityLow},
		{name: "most severe marker wins", body: "[LOW] nit, but also [CRITICAL] leak", want: model.PriorityCritical},
		{name: "security keyword", body: "This endpoint has a security hole", want: model.PriorityCritical},
		{name: "vulnerability keyword", body: "Possible vulnerability when the header is missing", want: model.PriorityCritical},
		{name: "breaking keyword", body: "This is a breaking change for API clients", want: model.PriorityCritical},
		{name: "bug keyword", body: "Off-by-one bug in the pagination loop", want: model.PriorityHigh},
		{name: "must fix keyword", body: "Must fix before release: wrong default", want: model.PriorityHigh},
		{name: "out of scope keyword", body: "Caching is out of scope here", want: model.PriorityDeferred},
		{name: "nice to have keyword", body: "A progress bar would be nice to have", want: model.PriorityDeferred},
		{name: "follow-up keyword", body: "Let's do the rename in a follow-up", want: model.PriorityDeferred},
		{name: "nit keyword", body: "nit: trailing whitespace", want: model.PriorityLow},
		{name: "consider keyword", body: "Consider using strings.Builder here", want: model.PriorityLow},
		{name: "minor keyword", body: "Minor: the variable name is unclear", want: model.PriorityLow},
		{name: "refactor keyword", body: "Please refactor this switch", want: model.PriorityMedium},
		{name: "default medium", body: "Why does this return early?", want: model.PriorityMedium},
		{name: "keyword needs word boundary", body: "The laterals are fine and the nitrogen sensor too", want: model.PriorityMedium},
		{name: "empty body", body: "", want: model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyBody(tt.body).Priority)
		})
	}
}

func TestClassify_Category(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.Category
	}{
		{name: "security", body: "Possible XSS through the title field", want: model.CategorySecurity},
		{name: "performance", body: "This loop is slow for large inputs", want: model.CategoryPerformance},
		{name: "bug", body: "The wrong index is used here", want: model.CategoryBug},
		{name: "style", body: "Naming does not follow the package convention", want: model.CategoryStyle},
		{name: "testing", body: "Please add tests for the empty case", want: model.CategoryTesting},
		{name: "docs", body: "Update the README with the new flag", want: model.CategoryDocs},
		{name: "security before bug", body: "Injection bug in the query builder", want: model.CategorySecurity},
		{name: "none", body: "Looks good", want: model.CategoryNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyBody(tt.body).Category)
		})
	}
}

func TestClassify_ReviewerAttribution(t *testing.T) {
	tests := []struct {
		name   string
		author string
		body   string
		want   model.Reviewer
	}{
		{name: "reviewer b marker", author: "github-actions[bot]", body: "## 🔍 Perplexity Code Review\nAll good", want: model.ReviewerB},
		{name: "reviewer b marker wins over copilot mention", author: "github-actions[bot]", body: "Perplexity Code Review (agrees with Copilot)", want: model.ReviewerB},
		{name: "copilot reviewer account", author: "copilot-pull-request-reviewer[bot]", body: "anything", want: model.ReviewerA},
		{name: "copilot account case insensitive", author: "Copilot[bot]", body: "anything", want: model.ReviewerA},
		{name: "copilot via actions", author: "github-actions[bot]", body: "Copilot code review complete", want: model.ReviewerA},
		{name: "unmarked actions comment", author: "github-actions[bot]", body: "Build finished", want: model.ReviewerHuman},
		{name: "other bot", author: "vercel[bot]", body: vercelComment, want: model.ReviewerHuman},
		{name: "person", author: "alice", body: "Perplexity Code Review says hi", want: model.ReviewerHuman},
	}

	classifier := NewClassifier(model.DefaultSignatures())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := classifier.Classify([]model.RawComment{{Author: tt.author, Body: tt.body}})
			assert.Equal(t, tt.want, items[0].Reviewer)
		})
	}
}

func TestClassify_Location(t *testing.T) {
	tests := []struct {
		name     string
		comment  model.RawComment
		wantFile string
		wantLine int
	}{
		{
			name:     "inline comment position wins",
			comment:  model.RawComment{Body: "see `other/file.go:9`", Path: "internal/app/service.go", Line: 42, Kind: model.CommentKindInline},
			wantFile: "internal/app/service.go",
			wantLine: 42,
		},
		{
			name:     "backticked path with line",
			comment:  model.RawComment{Body: "In `internal/app/service.go:42` the error is dropped"},
			wantFile: "internal/app/service.go",
			wantLine: 42,
		},
		{
			name:     "backticked path without line",
			comment:  model.RawComment{Body: "The handler in `api/handler.ts` lacks validation"},
			wantFile: "api/handler.ts",
		},
		{
			name:     "bare path with line",
			comment:  model.RawComment{Body: "main.go:17 shadows err"},
			wantFile: "main.go",
			wantLine: 17,
		},
		{
			name:     "nested path with line word",
			comment:  model.RawComment{Body: "see pkg/util/strings.go, line 10 for details"},
			wantFile: "pkg/util/strings.go",
			wantLine: 10,
		},
		{
			name:     "in file phrase",
			comment:  model.RawComment{Body: "Unused import in config.py line 3"},
			wantFile: "config.py",
			wantLine: 3,
		},
		{
			name:    "urls are ignored",
			comment: model.RawComment{Body: "See https://example.com/docs/guide.html for background"},
		},
		{
			name:    "no location",
			comment: model.RawComment{Body: "Looks good to me"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewClassifier(nil).Classify([]model.RawComment{tt.comment})[0]
			assert.Equal(t, tt.wantFile, item.File)
			assert.Equal(t, tt.wantLine, item.Line)
		})
	}
}

func TestClassify_Suggestion(t *testing.T) {
	t.Run("suggestion block", func(t *testing.T) {
		body := "Use the constant.\n```suggestion\nreturn ErrNotFound\n```"
		assert.Equal(t, "return ErrNotFound", classifyBody(body).Suggestion)
	})

	t.Run("suggestion prefix", func(t *testing.T) {
		body := "The timeout is hardcoded.\nSuggestion: read it from config"
		assert.Equal(t, "read it from config", classifyBody(body).Suggestion)
	})

	t.Run("fix prefix", func(t *testing.T) {
		body := "Fix: close the response body"
		assert.Equal(t, "close the response body", classifyBody(body).Suggestion)
	})

	t.Run("none", func(t *testing.T) {
		assert.Empty(t, classifyBody("No changes needed").Suggestion)
	})
}

func TestClassify_OpaquePayloads(t *testing.T) {
	encoded := strings.Repeat("QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo+YnVnL2NyYXNo", 6)

	tests := []struct {
		name string
		body string
	}{
		{name: "deployment status table", body: vercelComment},
		{name: "base64 blob", body: encoded},
		{name: "html comment payload", body: "<!-- critical:security:bug -->"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item model.ReviewItem
			require.NotPanics(t, func() { item = classifyBody(tt.body) })

			assert.Equal(t, model.PriorityMedium, item.Priority)
			assert.Equal(t, model.CategoryNone, item.Category)
			assert.Equal(t, strings.TrimSpace(tt.body), item.Description)
			assert.Equal(t, tt.body, item.RawText)
		})
	}
}

func TestCountByPriority(t *testing.T) {
	items := NewClassifier(nil).Classify([]model.RawComment{
		{Body: "[CRITICAL] a"},
		{Body: "[critical] b"},
		{Body: "nit: c"},
		{Body: "d"},
	})

	counts := CountByPriority(items)

	assert.Equal(t, 2, counts[model.PriorityCritical])
	assert.Equal(t, 1, counts[model.PriorityLow])
	assert.Equal(t, 1, counts[model.PriorityMedium])
	assert.Equal(t, 0, counts[model.PriorityHigh])
}
