// commit.go: the single-writer path for review decisions.
package datastore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Typed conflict results for the commit protocol. Both signal a lost race,
// not a system failure; the caller's correct response is to refresh its
// queue and pick another item.
var (
	// ErrAlreadyResolved means the recording's status moved past pending
	// before this commit could claim it.
	ErrAlreadyResolved = errors.New("recording already resolved by another review")

	// ErrAlreadyReviewed means a review row already exists for the recording.
	ErrAlreadyReviewed = errors.New("recording already has a review")
)

// CommitReview atomically records a reviewer's decision on one recording.
//
// The race window between reading a recording's status and writing the
// decision is closed twice over: a conditional update claims the recording
// only while its status is still pending (zero affected rows means someone
// else already claimed it), and the unique index on reviews.recording_id
// turns a second concurrent insert into a duplicate-key error instead of a
// silent duplicate. Both writes happen in one transaction so the recording
// status and the review row commit together or not at all.
//
// On a lost race CommitReview returns ErrAlreadyResolved or
// ErrAlreadyReviewed; a client retry after a timeout therefore converges on
// one of those instead of creating a second review.
func (ds *DataStore) CommitReview(ctx context.Context, review *Review) error {
	if review == nil {
		return validationError("review must not be nil", "review", nil)
	}
	if !ValidDecision(review.Decision) {
		return validationError("unknown review decision", "decision", review.Decision)
	}
	if review.Confidence < 0 || review.Confidence > 100 {
		return validationError("confidence must be within 0-100", "confidence", review.Confidence)
	}

	decidedAt := review.CreatedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now()
		review.CreatedAt = decidedAt
	}

	err := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim the recording while it is still pending. Zero affected rows
		// means another reviewer got there first.
		claim := tx.Model(&Recording{}).
			Where("id = ? AND status = ?", review.RecordingID, StatusPending).
			Updates(map[string]any{
				"status":      review.Decision,
				"reviewer_id": review.ReviewerID,
				"decided_at":  decidedAt,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		// The unique index on recording_id backs this insert; a duplicate
		// rolls back the claim above as well.
		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReviewed
			}
			return err
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyResolved), errors.Is(err, ErrAlreadyReviewed):
		return err
	default:
		return dbError(err, "commit_review", "recording_id", review.RecordingID, "reviewer_id", review.ReviewerID)
	}
}

// ApplyReviewToRecording rewrites a recording's status, reviewer, and
// decision timestamp to match the given review. Only the auditor uses this;
// it repairs state, it never makes new business decisions.
func (ds *DataStore) ApplyReviewToRecording(ctx context.Context, review *Review) error {
	if review == nil {
		return validationError("review must not be nil", "review", nil)
	}
	result := ds.DB.WithContext(ctx).Model(&Recording{}).
		Where("id = ?", review.RecordingID).
		Updates(map[string]any{
			"status":      review.Decision,
			"reviewer_id": review.ReviewerID,
			"decided_at":  review.CreatedAt,
		})
	if result.Error != nil {
		return dbError(result.Error, "apply_review_to_recording", "recording_id", review.RecordingID)
	}
	if result.RowsAffected == 0 {
		return notFoundError("recording not found", "recording_id", review.RecordingID)
	}
	return nil
}

// ResetRecordingToPending reverts a resolved recording that has no backing
// review to the pending state, clearing the reviewer fields.
func (ds *DataStore) ResetRecordingToPending(ctx context.Context, recordingID uint) error {
	result := ds.DB.WithContext(ctx).Model(&Recording{}).
		Where("id = ?", recordingID).
		Updates(map[string]any{
			"status":      StatusPending,
			"reviewer_id": nil,
			"decided_at":  nil,
		})
	if result.Error != nil {
		return dbError(result.Error, "reset_recording_to_pending", "recording_id", recordingID)
	}
	if result.RowsAffected == 0 {
		return notFoundError("recording not found", "recording_id", recordingID)
	}
	return nil
}
