package application

import (
	"regexp"
	"strings"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// markerRule matches an explicit priority marker such as "[CRITICAL]" or
// "**High**". The matched text is removed from the item description.
type markerRule struct {
	priority model.Priority
	pattern  *regexp.Regexp
}

// keywordRule maps any of its keywords, matched on word boundaries, to a value.
type keywordRule[T any] struct {
	value    T
	keywords []string
	pattern  *regexp.Regexp
}

func newMarkerRule(priority model.Priority, word string) markerRule {
	w := regexp.QuoteMeta(word)
	return markerRule{
		priority: priority,
		pattern:  regexp.MustCompile(`(?i)\[\s*` + w + `\s*\]:?|\*\*\s*` + w + `\s*:?\s*\*\*:?`),
	}
}

func newKeywordRule[T any](value T, keywords ...string) keywordRule[T] {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return keywordRule[T]{
		value:    value,
		keywords: keywords,
		pattern:  regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// priorityMarkers are checked first, most severe first.
var priorityMarkers = []markerRule{
	newMarkerRule(model.PriorityCritical, "critical"),
	newMarkerRule(model.PriorityHigh, "high"),
	newMarkerRule(model.PriorityMedium, "medium"),
	newMarkerRule(model.PriorityLow, "low"),
	newMarkerRule(model.PriorityDeferred, "deferred"),
}

// priorityKeywords are checked in order when no marker is present; the first
// rule with a matching keyword wins. Deferred precedes Low so that
// "consider X later" is deferred rather than a low-priority suggestion.
var priorityKeywords = []keywordRule[model.Priority]{
	newKeywordRule(model.PriorityCritical,
		"critical", "security", "vulnerability", "vulnerable", "exploit",
		"data loss", "crash", "fatal", "breaking", "injection"),
	newKeywordRule(model.PriorityHigh,
		"high priority", "important", "must fix", "required", "bug",
		"incorrect", "broken"),
	newKeywordRule(model.PriorityDeferred,
		"defer", "deferred", "future", "later", "follow-up", "follow up",
		"separate pr", "out of scope", "technical debt", "tech debt", "nice to have"),
	newKeywordRule(model.PriorityLow,
		"low priority", "minor", "nit", "nitpick", "consider", "suggestion", "optional"),
	newKeywordRule(model.PriorityMedium,
		"medium", "should fix", "improvement", "refactor", "cleanup"),
}

// categoryKeywords tag an item with at most one category, first match wins.
var categoryKeywords = []keywordRule[model.Category]{
	newKeywordRule(model.CategorySecurity,
		"security", "vulnerability", "auth", "authentication", "authorization",
		"xss", "csrf", "injection", "secret", "secrets"),
	newKeywordRule(model.CategoryPerformance,
		"performance", "slow", "optimize", "optimization", "efficiency", "memory", "latency"),
	newKeywordRule(model.CategoryBug,
		"bug", "error", "incorrect", "wrong", "broken", "crash"),
	newKeywordRule(model.CategoryStyle,
		"style", "formatting", "naming", "convention", "lint"),
	newKeywordRule(model.CategoryTesting,
		"test", "tests", "testing", "coverage", "edge case"),
	newKeywordRule(model.CategoryDocs,
		"doc", "docs", "documentation", "comment", "readme", "docstring", "jsdoc", "godoc"),
}

var (
	// suggestionPattern matches GitHub suggestion blocks in comment bodies.
	// Example: ```suggestion\n<proposed code>\n```
	suggestionPattern = regexp.MustCompile("(?s)`{3,}suggestion[^\n]*\n(.*?)\n`{3,}")

	// suggestionPrefixPattern matches a "Suggestion: ..." style line.
	suggestionPrefixPattern = regexp.MustCompile(`(?im)^\s*(?:suggested fix|suggestion|recommendation|recommended|fix)\s*:\s*(.+?)\s*$`)

	// Location patterns, tried in order.
	backtickPathPattern = regexp.MustCompile("`((?:[\\w.+-]+/)*[\\w+-][\\w.+-]*\\.[A-Za-z]\\w{0,7})(?::(\\d+))?`")
	pathLinePattern     = regexp.MustCompile(`\b((?:[\w.+-]+/)*[\w+-][\w.+-]*\.[A-Za-z]\w{0,7}):(\d+)\b`)
	nestedPathPattern   = regexp.MustCompile(`\b((?:[\w.+-]+/)+[\w+-][\w.+-]*\.[A-Za-z]\w{0,7})\b(?:[\s,]+line\s+(\d+))?`)
	inFilePattern       = regexp.MustCompile(`(?i)\bin\s+([\w+-][\w.+-]*\.[A-Za-z]\w{0,7})\b(?:[\s,]+line\s+(\d+))?`)

	// Noise removed before keyword and location matching. Bot payloads often
	// embed URLs, hidden HTML comments, and long encoded tokens.
	urlPattern         = regexp.MustCompile(`https?://\S+`)
	htmlCommentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	longTokenPattern   = regexp.MustCompile(`\S{48,}`)
)

var locationPatterns = []*regexp.Regexp{
	backtickPathPattern,
	pathLinePattern,
	nestedPathPattern,
	inFilePattern,
}

// matchKeyword returns the value of the first rule with a keyword in text.
func matchKeyword[T any](rules []keywordRule[T], text string) (T, bool) {
	for _, rule := range rules {
		if rule.pattern.MatchString(text) {
			return rule.value, true
		}
	}
	var zero T
	return zero, false
}
