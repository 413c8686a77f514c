// commit.go: the review commit protocol.
package review

import (
	"context"
	"time"

	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/errors"
)

// Commit records one reviewer's decision on one recording, exactly once.
//
// Eligibility is re-verified against fresh store state, then the write is
// delegated to the store's atomic claim-and-insert. Losing the race returns
// ErrAlreadyResolved or ErrAlreadyReviewed; the caller should refresh its
// queue and move on. Retrying after a timeout is safe: if the original write
// landed, the retry converges on one of the two sentinels instead of
// creating a duplicate.
func (s *Service) Commit(ctx context.Context, recordingID, reviewerID uint, decision string, confidence int, timeSpent time.Duration) (*datastore.Review, error) {
	start := time.Now()

	if !datastore.ValidDecision(decision) {
		return nil, errors.Newf("unknown review decision %q", decision).
			Component("review").
			Category(errors.CategoryValidation).
			Context("decision", decision).
			Build()
	}
	if confidence < 0 || confidence > 100 {
		return nil, errors.Newf("confidence must be within 0-100, got %d", confidence).
			Component("review").
			Category(errors.CategoryValidation).
			Context("confidence", confidence).
			Build()
	}

	// Fresh read inside the same logical operation. These pre-checks give
	// fast, cheap answers for the common lost-race cases; the store-level
	// claim below is what actually closes the race window.
	recording, err := s.store.GetRecording(ctx, recordingID)
	if err != nil {
		s.metrics.RecordCommit(decision, "error")
		return nil, err
	}
	if recording.PersonID == reviewerID {
		s.metrics.RecordCommit(decision, "error")
		return nil, errors.Newf("reviewer %d owns recording %d", reviewerID, recordingID).
			Component("review").
			Category(errors.CategoryValidation).
			Context("recording_id", recordingID).
			Context("reviewer_id", reviewerID).
			Build()
	}
	if recording.Resolved() {
		s.metrics.RecordCommit(decision, "already_resolved")
		s.metrics.RecordCommitConflict("precheck")
		return nil, ErrAlreadyResolved
	}
	if _, err := s.store.GetReview(ctx, recordingID); err == nil {
		s.metrics.RecordCommit(decision, "already_reviewed")
		s.metrics.RecordCommitConflict("precheck")
		return nil, ErrAlreadyReviewed
	} else if !datastore.IsNotFound(err) {
		s.metrics.RecordCommit(decision, "error")
		return nil, err
	}

	review := &datastore.Review{
		RecordingID: recordingID,
		ReviewerID:  reviewerID,
		Decision:    decision,
		Confidence:  confidence,
		TimeSpent:   timeSpent,
		CreatedAt:   time.Now(),
	}

	err = s.store.CommitReview(ctx, review)
	switch {
	case err == nil:
		s.metrics.RecordCommit(decision, "created")
		s.metrics.RecordCommitDuration("created", time.Since(start).Seconds())
		s.log().Info("review committed",
			"recording_id", recordingID,
			"reviewer_id", reviewerID,
			"decision", decision)
		return review, nil

	case errors.Is(err, ErrAlreadyResolved):
		s.metrics.RecordCommit(decision, "already_resolved")
		s.metrics.RecordCommitConflict("claim")
		s.log().Debug("commit lost race, recording already resolved",
			"recording_id", recordingID,
			"reviewer_id", reviewerID)
		return nil, err

	case errors.Is(err, ErrAlreadyReviewed):
		s.metrics.RecordCommit(decision, "already_reviewed")
		s.metrics.RecordCommitConflict("insert")
		s.log().Debug("commit lost race, review already exists",
			"recording_id", recordingID,
			"reviewer_id", reviewerID)
		return nil, err

	default:
		s.metrics.RecordCommit(decision, "error")
		s.metrics.RecordCommitDuration("error", time.Since(start).Seconds())
		return nil, err
	}
}
