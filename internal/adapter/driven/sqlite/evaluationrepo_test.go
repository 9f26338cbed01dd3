package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

var testRef = model.ChangeRequestRef{Repo: "acme/widgets", Number: 7}

func testEvaluation(readiness model.Readiness, at time.Time) model.Evaluation {
	return model.Evaluation{
		ChangeRequest: testRef,
		Status: model.ReviewStatus{
			ChangeRequest:     testRef,
			ReviewerAComplete: true,
			ReviewerBTimedOut: true,
			AllComplete:       true,
			Polls:             21,
		},
		Plan: model.RemediationPlan{
			ChangeRequest: testRef,
			CreatedAt:     at,
			Critical:      []model.ReviewItem{},
			High:          []model.ReviewItem{},
			Medium: []model.ReviewItem{{
				CommentID:   55,
				Priority:    model.PriorityMedium,
				Description: "extract a helper",
				File:        "server.go",
				Line:        12,
				Reviewer:    model.ReviewerA,
				Category:    model.CategoryStyle,
				RawText:     "[MEDIUM] extract a helper",
			}},
			Low:                    []model.ReviewItem{},
			Deferred:               []model.ReviewItem{},
			DeferredTrackingItemID: 0,
		},
		Decision: model.MergeDecision{
			ChangeRequest:   testRef,
			ReadyToMerge:    readiness == model.ReadinessReady,
			Readiness:       readiness,
			Reason:          "reason for " + string(readiness),
			BlockingItems:   []string{},
			Recommendations: []string{"Merge now"},
		},
		EvaluatedAt: at,
	}
}

func TestEvaluationRepo_SaveAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepo(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	saved, err := repo.Save(ctx, testEvaluation(model.ReadinessReady, at))
	require.NoError(t, err)
	assert.Len(t, saved.RunID, 26, "run id is a ULID")

	got, err := repo.Latest(ctx, testRef)
	require.NoError(t, err)

	assert.Equal(t, saved.RunID, got.RunID)
	assert.Equal(t, testRef, got.ChangeRequest)
	assert.Equal(t, at, got.EvaluatedAt)
	assert.Equal(t, saved.Status, got.Status)
	assert.Equal(t, saved.Decision, got.Decision)
	require.Len(t, got.Plan.Medium, 1)
	assert.Equal(t, saved.Plan.Medium[0], got.Plan.Medium[0])
	assert.Equal(t, at, got.Plan.CreatedAt)
}

func TestEvaluationRepo_KeepsProvidedRunID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepo(db)

	eval := testEvaluation(model.ReadinessBlocked, time.Now())
	eval.RunID = "01JQ0000000000000000000000"

	saved, err := repo.Save(context.Background(), eval)

	require.NoError(t, err)
	assert.Equal(t, "01JQ0000000000000000000000", saved.RunID)
}

func TestEvaluationRepo_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepo(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	readiness := []model.Readiness{
		model.ReadinessWaitingReviews,
		model.ReadinessBlocked,
		model.ReadinessWaitingApproval,
		model.ReadinessReady,
	}
	for i, r := range readiness {
		_, err := repo.Save(ctx, testEvaluation(r, at.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	other := testEvaluation(model.ReadinessDraft, at)
	other.ChangeRequest = model.ChangeRequestRef{Repo: "acme/widgets", Number: 8}
	_, err := repo.Save(ctx, other)
	require.NoError(t, err)

	all, err := repo.ListByChangeRequest(ctx, testRef, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, eval := range all {
		assert.Equal(t, readiness[len(readiness)-1-i], eval.Decision.Readiness)
	}

	limited, err := repo.ListByChangeRequest(ctx, testRef, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, model.ReadinessReady, limited[0].Decision.Readiness)

	latest, err := repo.Latest(ctx, testRef)
	require.NoError(t, err)
	assert.Equal(t, model.ReadinessReady, latest.Decision.Readiness)
}

func TestEvaluationRepo_LatestNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepo(db)

	_, err := repo.Latest(context.Background(), testRef)

	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrEvaluationNotFound))
}

func TestEvaluationRepo_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepo(db)

	evals, err := repo.ListByChangeRequest(context.Background(), testRef, 10)

	require.NoError(t, err)
	assert.NotNil(t, evals)
	assert.Empty(t, evals)
}

func TestEvaluationRepo_RepositoryCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepo(db)
	ctx := context.Background()

	eval := testEvaluation(model.ReadinessReady, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	eval.ChangeRequest.Repo = "Acme/Widgets"
	saved, err := repo.Save(ctx, eval)
	require.NoError(t, err)

	got, err := repo.Latest(ctx, testRef)
	require.NoError(t, err)
	assert.Equal(t, saved.RunID, got.RunID)

	list, err := repo.ListByChangeRequest(ctx, testRef, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
