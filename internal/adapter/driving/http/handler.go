package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/reviewgate/internal/adapter/driving/web"
	"github.com/ericfisherdev/reviewgate/internal/application"
	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	pipeline    *application.Pipeline
	evaluations driven.EvaluationStore
	signatures  driven.SignatureStore
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. pipeline may be
// nil when no GitHub token is configured; evaluation requests then fail with 503.
func NewHandler(
	pipeline *application.Pipeline,
	evaluations driven.EvaluationStore,
	signatures driven.SignatureStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		pipeline:    pipeline,
		evaluations: evaluations,
		signatures:  signatures,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. metrics serves GET /metrics; pass nil
// to use the default Prometheus registry.
func NewServeMux(h *Handler, metrics http.Handler, logger *slog.Logger) http.Handler {
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("POST /api/v1/repos/{owner}/{repo}/prs/{number}/evaluations", h.CreateEvaluation)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/prs/{number}/evaluations", h.ListEvaluations)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/prs/{number}/evaluations/latest", h.LatestEvaluation)
	mux.HandleFunc("GET /api/v1/signatures", h.ListSignatures)
	mux.HandleFunc("POST /api/v1/signatures", h.AddSignature)
	mux.HandleFunc("DELETE /api/v1/signatures/{id}", h.RemoveSignature)
	mux.Handle("GET /metrics", metrics)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// CreateEvaluation runs the review pipeline for a pull request and returns the
// recorded evaluation. The request blocks until the reviewer wait completes
// unless skip_wait is set.
func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	ref, ok := changeRequestFromPath(w, r)
	if !ok {
		return
	}

	if h.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation unavailable: GitHub token not configured")
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OriginIssue < 0 {
		writeError(w, http.StatusBadRequest, "origin_issue must not be negative")
		return
	}

	eval, err := h.pipeline.Run(r.Context(), ref, application.RunOptions{
		OriginIssue: req.OriginIssue,
		SkipWait:    req.SkipWait,
		PostComment: req.Comment,
	})
	if err != nil {
		h.logger.Error("failed to evaluate pull request", "change_request", ref.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusCreated, NewEvaluationResponse(eval))
}

// ListEvaluations returns the evaluation history for a pull request, newest first.
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	ref, ok := changeRequestFromPath(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	evals, err := h.evaluations.ListByChangeRequest(r.Context(), ref, limit)
	if err != nil {
		h.logger.Error("failed to list evaluations", "change_request", ref.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]EvaluationResponse, 0, len(evals))
	for _, eval := range evals {
		resp = append(resp, NewEvaluationResponse(eval))
	}

	writeJSON(w, http.StatusOK, resp)
}

// LatestEvaluation returns the most recent evaluation for a pull request.
// With ?format=html the decision comment is rendered as a standalone page.
func (h *Handler) LatestEvaluation(w http.ResponseWriter, r *http.Request) {
	ref, ok := changeRequestFromPath(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "html" {
		writeError(w, http.StatusBadRequest, "format must be json or html")
		return
	}

	eval, err := h.evaluations.Latest(r.Context(), ref)
	if err != nil {
		if errors.Is(err, driven.ErrEvaluationNotFound) {
			writeError(w, http.StatusNotFound, "no evaluation recorded for pull request")
			return
		}
		h.logger.Error("failed to get latest evaluation", "change_request", ref.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if format == "html" {
		body := application.FormatReviewSummaryComment(eval.Plan, eval.Decision)
		if eval.Decision.ReadyToMerge {
			body = application.FormatMergeReadyComment(eval.Plan, eval.Decision)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, web.RenderPage(ref.String(), body))
		return
	}

	writeJSON(w, http.StatusOK, NewEvaluationResponse(eval))
}

// ListSignatures returns all configured reviewer signatures.
func (h *Handler) ListSignatures(w http.ResponseWriter, r *http.Request) {
	sigs, err := h.signatures.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list signatures", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SignatureResponse, 0, len(sigs))
	for _, sig := range sigs {
		resp = append(resp, toSignatureResponse(sig))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddSignature registers a new reviewer signature.
func (h *Handler) AddSignature(w http.ResponseWriter, r *http.Request) {
	var req AddSignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reviewer := model.Reviewer(req.Reviewer)
	if !reviewer.Valid() {
		writeError(w, http.StatusBadRequest, "reviewer must be reviewer-a or reviewer-b")
		return
	}
	if !model.ValidAccount(req.Account) {
		writeError(w, http.StatusBadRequest, "invalid account name")
		return
	}

	sig, err := h.signatures.Add(r.Context(), model.ReviewerSignature{
		Reviewer: reviewer,
		Account:  req.Account,
		Marker:   req.Marker,
		AddedAt:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, driven.ErrSignatureAlreadyExists) {
			writeError(w, http.StatusConflict, "signature already exists")
			return
		}
		h.logger.Error("failed to add signature", "account", req.Account, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toSignatureResponse(sig))
}

// RemoveSignature deletes a reviewer signature by ID.
func (h *Handler) RemoveSignature(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid signature id")
		return
	}

	if err := h.signatures.Remove(r.Context(), id); err != nil {
		if errors.Is(err, driven.ErrSignatureNotFound) {
			writeError(w, http.StatusNotFound, "signature not found")
			return
		}
		h.logger.Error("failed to remove signature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Time:       time.Now().UTC().Format(time.RFC3339),
		Evaluation: h.pipeline != nil,
	})
}

// changeRequestFromPath builds the change request reference from the
// {owner}/{repo}/{number} path values, writing a 400 when they are invalid.
func changeRequestFromPath(w http.ResponseWriter, r *http.Request) (model.ChangeRequestRef, bool) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")

	if !isValidRepoPart(owner) || !isValidRepoPart(repo) {
		writeError(w, http.StatusBadRequest, "invalid repository name: expected owner/repo format")
		return model.ChangeRequestRef{}, false
	}

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return model.ChangeRequestRef{}, false
	}

	return model.ChangeRequestRef{Repo: owner + "/" + repo, Number: number}, true
}

// isValidRepoPart reports whether part is a non-empty repository owner or name
// made of alphanumeric characters, hyphens, dots, or underscores.
func isValidRepoPart(part string) bool {
	if part == "" {
		return false
	}
	for _, ch := range part {
		if !isValidRepoChar(ch) {
			return false
		}
	}
	return true
}

// isValidRepoChar returns true if the rune is allowed in a repository owner or name.
func isValidRepoChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
