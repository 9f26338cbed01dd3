package application

import (
	"strconv"
	"strings"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// Classifier converts raw review comments into prioritized review items.
// Classification is pure and total: every comment yields exactly one item,
// in input order, and unmatched text degrades to Medium with no category.
type Classifier struct {
	signatures []model.ReviewerSignature
}

// NewClassifier creates a Classifier that attributes comments using signatures.
func NewClassifier(signatures []model.ReviewerSignature) *Classifier {
	return &Classifier{signatures: signatures}
}

// Classify returns one ReviewItem per comment, preserving order.
func (c *Classifier) Classify(comments []model.RawComment) []model.ReviewItem {
	items := make([]model.ReviewItem, 0, len(comments))
	for _, comment := range comments {
		items = append(items, c.classifyOne(comment))
	}
	return items
}

func (c *Classifier) classifyOne(comment model.RawComment) model.ReviewItem {
	body := comment.Body
	matchText := stripNoise(body)

	priority, description := detectPriority(body, matchText)

	category, _ := matchKeyword(categoryKeywords, matchText)

	file, line := comment.Path, comment.Line
	if file == "" {
		file, line = extractLocation(matchText)
	}

	return model.ReviewItem{
		CommentID:   comment.ID,
		Priority:    priority,
		Description: description,
		File:        file,
		Line:        line,
		Reviewer:    attributeReviewer(comment.Author, body, c.signatures),
		Category:    category,
		Suggestion:  extractSuggestion(body),
		RawText:     body,
	}
}

// detectPriority applies explicit markers, then keyword rules, then the
// Medium default. The description is body with any matched marker removed.
func detectPriority(body, matchText string) (model.Priority, string) {
	for _, rule := range priorityMarkers {
		loc := rule.pattern.FindStringIndex(body)
		if loc == nil {
			continue
		}
		description := strings.TrimSpace(body[:loc[0]] + body[loc[1]:])
		if description == "" {
			description = strings.TrimSpace(body)
		}
		return rule.priority, description
	}

	description := strings.TrimSpace(body)
	if priority, ok := matchKeyword(priorityKeywords, matchText); ok {
		return priority, description
	}
	return model.PriorityMedium, description
}

// stripNoise removes URLs, hidden HTML comments, and long encoded tokens so
// they cannot trigger keyword or location matches.
func stripNoise(body string) string {
	text := htmlCommentPattern.ReplaceAllString(body, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	return longTokenPattern.ReplaceAllString(text, " ")
}

// extractLocation finds the first file reference, with an optional line.
func extractLocation(text string) (string, int) {
	for _, pattern := range locationPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		line := 0
		if len(m) > 2 && m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				line = n
			}
		}
		return m[1], line
	}
	return "", 0
}

// extractSuggestion returns the first suggestion block's content or the text
// of a "Suggestion:" line.
func extractSuggestion(body string) string {
	if m := suggestionPattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	if m := suggestionPrefixPattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

// CountByPriority tallies items per priority.
func CountByPriority(items []model.ReviewItem) map[model.Priority]int {
	counts := make(map[model.Priority]int, len(model.Priorities))
	for _, item := range items {
		counts[item.Priority]++
	}
	return counts
}
