package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// EvaluateRequest is the optional JSON body for the create evaluation endpoint.
type EvaluateRequest struct {
	OriginIssue int  `json:"origin_issue"`
	SkipWait    bool `json:"skip_wait"`
	Comment     bool `json:"comment"`
}

// AddSignatureRequest is the JSON body for the add signature endpoint.
type AddSignatureRequest struct {
	Reviewer string `json:"reviewer"`
	Account  string `json:"account"`
	Marker   string `json:"marker"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Time       string `json:"time"`
	Evaluation bool   `json:"evaluation_enabled"`
}

// SignatureResponse is the JSON representation of a reviewer signature.
type SignatureResponse struct {
	ID       int64  `json:"id"`
	Reviewer string `json:"reviewer"`
	Account  string `json:"account"`
	Marker   string `json:"marker"`
	AddedAt  string `json:"added_at"`
}

// EvaluationResponse is the JSON representation of one recorded pipeline run.
type EvaluationResponse struct {
	RunID       string                  `json:"run_id"`
	Repository  string                  `json:"repository"`
	Number      int                     `json:"number"`
	EvaluatedAt string                  `json:"evaluated_at"`
	Status      ReviewStatusResponse    `json:"status"`
	Plan        RemediationPlanResponse `json:"plan"`
	Decision    DecisionResponse        `json:"decision"`
}

// ReviewStatusResponse reports the outcome of the reviewer wait.
type ReviewStatusResponse struct {
	ReviewerAComplete bool   `json:"reviewer_a_complete"`
	ReviewerBComplete bool   `json:"reviewer_b_complete"`
	ReviewerBFailed   bool   `json:"reviewer_b_failed"`
	ReviewerBTimedOut bool   `json:"reviewer_b_timed_out"`
	AllComplete       bool   `json:"all_complete"`
	Incomplete        bool   `json:"incomplete"`
	ReviewerAAt       string `json:"reviewer_a_at,omitempty"`
	ReviewerBAt       string `json:"reviewer_b_at,omitempty"`
	Polls             int    `json:"polls"`
	Error             string `json:"error,omitempty"`
}

// RemediationPlanResponse holds the classified items bucketed by priority.
type RemediationPlanResponse struct {
	Critical               []ReviewItemResponse `json:"critical"`
	High                   []ReviewItemResponse `json:"high"`
	Medium                 []ReviewItemResponse `json:"medium"`
	Low                    []ReviewItemResponse `json:"low"`
	Deferred               []ReviewItemResponse `json:"deferred"`
	TotalItems             int                  `json:"total_items"`
	DeferredTrackingItemID int                  `json:"deferred_tracking_item_id,omitempty"`
}

// ReviewItemResponse is one classified review item.
type ReviewItemResponse struct {
	CommentID   int64  `json:"comment_id"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
	Reviewer    string `json:"reviewer"`
	Category    string `json:"category,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// DecisionResponse is the merge-readiness verdict.
type DecisionResponse struct {
	ReadyToMerge         bool     `json:"ready_to_merge"`
	Readiness            string   `json:"readiness"`
	Reason               string   `json:"reason"`
	BlockingItems        []string `json:"blocking_items"`
	Recommendations      []string `json:"recommendations"`
	AutopilotRecommended bool     `json:"autopilot_recommended"`
}

func toSignatureResponse(sig model.ReviewerSignature) SignatureResponse {
	return SignatureResponse{
		ID:       sig.ID,
		Reviewer: string(sig.Reviewer),
		Account:  sig.Account,
		Marker:   sig.Marker,
		AddedAt:  formatTime(sig.AddedAt),
	}
}

// NewEvaluationResponse converts a domain Evaluation to its JSON response
// representation. Nil slices are rendered as empty arrays. The CLI reuses it
// for --json output.
func NewEvaluationResponse(eval model.Evaluation) EvaluationResponse {
	status := eval.Status
	plan := eval.Plan
	decision := eval.Decision

	return EvaluationResponse{
		RunID:       eval.RunID,
		Repository:  eval.ChangeRequest.Repo,
		Number:      eval.ChangeRequest.Number,
		EvaluatedAt: formatTime(eval.EvaluatedAt),
		Status: ReviewStatusResponse{
			ReviewerAComplete: status.ReviewerAComplete,
			ReviewerBComplete: status.ReviewerBComplete,
			ReviewerBFailed:   status.ReviewerBFailed,
			ReviewerBTimedOut: status.ReviewerBTimedOut,
			AllComplete:       status.AllComplete,
			Incomplete:        status.Incomplete,
			ReviewerAAt:       formatTime(status.ReviewerAAt),
			ReviewerBAt:       formatTime(status.ReviewerBAt),
			Polls:             status.Polls,
			Error:             status.Error,
		},
		Plan: RemediationPlanResponse{
			Critical:               toReviewItemResponses(plan.Critical),
			High:                   toReviewItemResponses(plan.High),
			Medium:                 toReviewItemResponses(plan.Medium),
			Low:                    toReviewItemResponses(plan.Low),
			Deferred:               toReviewItemResponses(plan.Deferred),
			TotalItems:             plan.TotalItems(),
			DeferredTrackingItemID: plan.DeferredTrackingItemID,
		},
		Decision: DecisionResponse{
			ReadyToMerge:         decision.ReadyToMerge,
			Readiness:            string(decision.Readiness),
			Reason:               decision.Reason,
			BlockingItems:        nonNil(decision.BlockingItems),
			Recommendations:      nonNil(decision.Recommendations),
			AutopilotRecommended: decision.AutopilotRecommended,
		},
	}
}

func toReviewItemResponses(items []model.ReviewItem) []ReviewItemResponse {
	resp := make([]ReviewItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, ReviewItemResponse{
			CommentID:   item.CommentID,
			Priority:    string(item.Priority),
			Description: item.Description,
			File:        item.File,
			Line:        item.Line,
			Reviewer:    string(item.Reviewer),
			Category:    string(item.Category),
			Suggestion:  item.Suggestion,
		})
	}
	return resp
}

// formatTime renders t as RFC 3339 in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
