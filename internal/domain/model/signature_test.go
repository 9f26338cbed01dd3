package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewerSignatureMatches(t *testing.T) {
	marked := ReviewerSignature{Reviewer: ReviewerB, Account: "github-actions[bot]", Marker: "Perplexity Code Review"}
	anyBody := ReviewerSignature{Reviewer: ReviewerA, Account: "copilot[bot]"}

	assert.True(t, marked.Matches("github-actions[bot]", "## perplexity code review\nall good"))
	assert.True(t, marked.Matches("GitHub-Actions[bot]", "Perplexity Code Review"))
	assert.False(t, marked.Matches("github-actions[bot]", "Build succeeded"))
	assert.False(t, marked.Matches("alice", "Perplexity Code Review"))

	assert.True(t, anyBody.Matches("Copilot[bot]", ""))
	assert.False(t, anyBody.Matches("copilot", "anything"))
}

func TestDefaultSignatures(t *testing.T) {
	sigs := DefaultSignatures()

	var a, b int
	for _, s := range sigs {
		assert.True(t, s.Reviewer.Valid())
		assert.NotEmpty(t, s.Account)
		switch s.Reviewer {
		case ReviewerA:
			a++
		case ReviewerB:
			b++
		}
	}
	assert.Positive(t, a)
	assert.Positive(t, b)
	assert.Equal(t, ReviewerB, sigs[0].Reviewer, "reviewer B signatures are checked first")
}

func TestReviewerSignatureValidate(t *testing.T) {
	tests := []struct {
		name    string
		sig     ReviewerSignature
		wantErr string
	}{
		{name: "app login", sig: ReviewerSignature{Reviewer: ReviewerB, Account: "github-actions[bot]"}},
		{name: "user login", sig: ReviewerSignature{Reviewer: ReviewerA, Account: "review_robot-2.0"}},
		{name: "human reviewer", sig: ReviewerSignature{Reviewer: ReviewerHuman, Account: "alice"}, wantErr: "reviewer must be reviewer-a or reviewer-b"},
		{name: "empty account", sig: ReviewerSignature{Reviewer: ReviewerA}, wantErr: "invalid account name"},
		{name: "space in account", sig: ReviewerSignature{Reviewer: ReviewerA, Account: "review robot"}, wantErr: "invalid account name"},
		{name: "path in account", sig: ReviewerSignature{Reviewer: ReviewerA, Account: "../etc"}, wantErr: "invalid account name"},
		{name: "overlong account", sig: ReviewerSignature{Reviewer: ReviewerA, Account: strings.Repeat("a", 101)}, wantErr: "invalid account name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sig.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
