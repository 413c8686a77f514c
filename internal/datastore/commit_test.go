package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRecording(t *testing.T, ds Interface, personID uint) Recording {
	t.Helper()
	rec := Recording{
		PersonID:     personID,
		SentenceText: "a sentence to be spoken",
		Status:       StatusPending,
	}
	require.NoError(t, ds.SaveRecording(context.Background(), &rec))
	return rec
}

func TestCommitReviewHappyPath(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()
	rec := pendingRecording(t, ds, 1)

	review := &Review{
		RecordingID: rec.ID,
		ReviewerID:  2,
		Decision:    DecisionApproved,
		Confidence:  90,
		TimeSpent:   12 * time.Second,
	}
	require.NoError(t, ds.CommitReview(ctx, review))
	require.NotZero(t, review.ID)

	// Both writes must be visible and consistent.
	updated, err := ds.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)
	require.NotNil(t, updated.ReviewerID)
	assert.Equal(t, uint(2), *updated.ReviewerID)
	require.NotNil(t, updated.DecidedAt)

	stored, err := ds.GetReview(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, stored.ID)
	assert.Equal(t, DecisionApproved, stored.Decision)
	assert.Equal(t, 90, stored.Confidence)
}

func TestCommitReviewAlreadyResolved(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()
	rec := pendingRecording(t, ds, 1)

	first := &Review{RecordingID: rec.ID, ReviewerID: 2, Decision: DecisionRejected, Confidence: 60}
	require.NoError(t, ds.CommitReview(ctx, first))

	second := &Review{RecordingID: rec.ID, ReviewerID: 3, Decision: DecisionApproved, Confidence: 80}
	err := ds.CommitReview(ctx, second)
	require.ErrorIs(t, err, ErrAlreadyResolved)

	// The losing commit must not have written anything.
	reviews, scanErr := ds.GetAllReviews(ctx)
	require.NoError(t, scanErr)
	require.Len(t, reviews, 1)
	assert.Equal(t, first.ID, reviews[0].ID)

	updated, err := ds.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, updated.Status)
}

// TestCommitReviewUniqueIndexBackstop drives the insert path into the unique
// index by fabricating the inconsistent state the conditional update cannot
// see: a pending recording that already carries a review row.
func TestCommitReviewUniqueIndexBackstop(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()
	rec := pendingRecording(t, ds, 1)

	sqlite := ds.(*SQLiteStore)
	orphan := Review{RecordingID: rec.ID, ReviewerID: 9, Decision: DecisionApproved, CreatedAt: time.Now()}
	require.NoError(t, sqlite.DB.Create(&orphan).Error)

	attempt := &Review{RecordingID: rec.ID, ReviewerID: 2, Decision: DecisionRejected, Confidence: 50}
	err := ds.CommitReview(ctx, attempt)
	require.ErrorIs(t, err, ErrAlreadyReviewed)

	// The rolled-back transaction must have released the claim as well.
	updated, getErr := ds.GetRecording(ctx, rec.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusPending, updated.Status, "failed insert must roll back the status claim")
	assert.Nil(t, updated.ReviewerID)

	reviews, scanErr := ds.GetAllReviews(ctx)
	require.NoError(t, scanErr)
	require.Len(t, reviews, 1, "only the pre-existing review may remain")
	assert.Equal(t, orphan.ID, reviews[0].ID)
}

func TestCommitReviewValidation(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()
	rec := pendingRecording(t, ds, 1)

	err := ds.CommitReview(ctx, &Review{RecordingID: rec.ID, ReviewerID: 2, Decision: "maybe"})
	require.Error(t, err, "unknown decision must be rejected")

	err = ds.CommitReview(ctx, &Review{RecordingID: rec.ID, ReviewerID: 2, Decision: DecisionApproved, Confidence: 101})
	require.Error(t, err, "confidence above 100 must be rejected")

	err = ds.CommitReview(ctx, nil)
	require.Error(t, err, "nil review must be rejected")

	// Nothing may have been written by the rejected attempts.
	updated, getErr := ds.GetRecording(ctx, rec.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusPending, updated.Status)
}

func TestApplyReviewToRecording(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()
	rec := pendingRecording(t, ds, 1)

	decided := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	review := &Review{ID: 77, RecordingID: rec.ID, ReviewerID: 4, Decision: DecisionRejected, CreatedAt: decided}
	require.NoError(t, ds.ApplyReviewToRecording(ctx, review))

	updated, err := ds.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, updated.Status)
	require.NotNil(t, updated.ReviewerID)
	assert.Equal(t, uint(4), *updated.ReviewerID)
	require.NotNil(t, updated.DecidedAt)
	assert.True(t, decided.Equal(*updated.DecidedAt))

	require.NoError(t, ds.ResetRecordingToPending(ctx, rec.ID))
	reset, err := ds.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reset.Status)
	assert.Nil(t, reset.ReviewerID)
	assert.Nil(t, reset.DecidedAt)
}

func TestApplyReviewToMissingRecording(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))

	review := &Review{RecordingID: 9999, ReviewerID: 1, Decision: DecisionApproved, CreatedAt: time.Now()}
	err := ds.ApplyReviewToRecording(context.Background(), review)
	require.Error(t, err)
}
