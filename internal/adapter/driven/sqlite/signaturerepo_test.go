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

func TestSignatureRepo_SeededDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignatureRepo(db)

	sigs, err := repo.ListAll(context.Background())
	require.NoError(t, err)

	defaults := model.DefaultSignatures()
	require.Len(t, sigs, len(defaults))
	for i, want := range defaults {
		assert.Equal(t, want.Reviewer, sigs[i].Reviewer)
		assert.Equal(t, want.Account, sigs[i].Account)
		assert.Equal(t, want.Marker, sigs[i].Marker)
		assert.NotZero(t, sigs[i].ID)
		assert.False(t, sigs[i].AddedAt.IsZero())
	}
}

func TestSignatureRepo_AddOrdersReviewerBFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignatureRepo(db)
	ctx := context.Background()

	added := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	saved, err := repo.Add(ctx, model.ReviewerSignature{
		Reviewer: model.ReviewerB,
		Account:  " deep-review[bot] ",
		AddedAt:  added,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "deep-review[bot]", saved.Account)

	sigs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, sigs, 5)

	assert.Equal(t, model.ReviewerB, sigs[0].Reviewer)
	assert.Equal(t, model.ReviewerB, sigs[1].Reviewer)
	assert.Equal(t, "deep-review[bot]", sigs[1].Account)
	assert.Equal(t, added, sigs[1].AddedAt)
	for _, sig := range sigs[2:] {
		assert.Equal(t, model.ReviewerA, sig.Reviewer)
	}

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestSignatureRepo_AddDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignatureRepo(db)

	_, err := repo.Add(context.Background(), model.ReviewerSignature{
		Reviewer: model.ReviewerA,
		Account:  "Copilot[bot]",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrSignatureAlreadyExists))
}

func TestSignatureRepo_AddInvalid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignatureRepo(db)
	ctx := context.Background()

	_, err := repo.Add(ctx, model.ReviewerSignature{Reviewer: model.ReviewerHuman, Account: "alice"})
	assert.Error(t, err)

	_, err = repo.Add(ctx, model.ReviewerSignature{Reviewer: model.ReviewerA, Account: "  "})
	assert.Error(t, err)
}

func TestSignatureRepo_Remove(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignatureRepo(db)
	ctx := context.Background()

	sigs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sigs)

	require.NoError(t, repo.Remove(ctx, sigs[0].ID))

	remaining, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, len(sigs)-1)

	_, err = repo.Get(ctx, sigs[0].ID)
	assert.True(t, errors.Is(err, driven.ErrSignatureNotFound))
}

func TestSignatureRepo_RemoveNonexistent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignatureRepo(db)

	err := repo.Remove(context.Background(), 9999)

	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrSignatureNotFound))
}
