// auditor.go: offline duplicate and consistency remediation.
package review

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/logging"
	"github.com/voicecorpus/voicecorpus-go/internal/observability/metrics"
)

// Auditor scans committed reviews for recordings carrying more than one
// review row, keeps the earliest, deletes the rest, and restores recording
// state consistency. It is a safety net behind the commit protocol, run by
// a batch scheduler, never on the request path. It repairs state; it never
// makes new business decisions.
type Auditor struct {
	store   datastore.Interface
	logger  *slog.Logger
	metrics *metrics.ReviewMetrics
}

// AuditReport summarizes one auditor run.
type AuditReport struct {
	RunID               string        // unique identifier for this run
	StartedAt           time.Time
	Duration            time.Duration
	ReviewsScanned      int
	RecordingsScanned   int
	DuplicateRecordings int // recordings found with more than one review
	ReviewsDeleted      int
	RecordingsFixed     int // recordings whose status/reviewer fields were repaired
}

// Clean reports whether the run found nothing to repair.
func (r *AuditReport) Clean() bool {
	return r.DuplicateRecordings == 0 && r.ReviewsDeleted == 0 && r.RecordingsFixed == 0
}

// NewAuditor creates an auditor over the given store.
func NewAuditor(store datastore.Interface) *Auditor {
	return &Auditor{
		store:  store,
		logger: logging.ForService("audit"),
	}
}

// SetMetrics attaches review metrics to the auditor.
func (a *Auditor) SetMetrics(m *metrics.ReviewMetrics) {
	a.metrics = m
}

func (a *Auditor) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

// Run executes one full audit pass and returns its report.
func (a *Auditor) Run(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	reviews, err := a.store.GetAllReviews(ctx)
	if err != nil {
		a.metrics.RecordAuditRun("error", 0, 0)
		return nil, err
	}
	report.ReviewsScanned = len(reviews)

	kept, err := a.reconcileDuplicates(ctx, reviews, report)
	if err != nil {
		a.metrics.RecordAuditRun("error", report.ReviewsDeleted, report.RecordingsFixed)
		return nil, err
	}

	if err := a.reconcileRecordings(ctx, kept, report); err != nil {
		a.metrics.RecordAuditRun("error", report.ReviewsDeleted, report.RecordingsFixed)
		return nil, err
	}

	report.Duration = time.Since(report.StartedAt)

	status := "repaired"
	if report.Clean() {
		status = "clean"
	}
	a.metrics.RecordAuditRun(status, report.ReviewsDeleted, report.RecordingsFixed)

	a.log().Info("audit run complete",
		"run_id", report.RunID,
		"reviews_scanned", report.ReviewsScanned,
		"recordings_scanned", report.RecordingsScanned,
		"duplicate_recordings", report.DuplicateRecordings,
		"reviews_deleted", report.ReviewsDeleted,
		"recordings_fixed", report.RecordingsFixed,
		"duration_ms", report.Duration.Milliseconds())

	return report, nil
}

// reconcileDuplicates removes all but the earliest review per recording and
// returns the surviving review per recording ID.
func (a *Auditor) reconcileDuplicates(ctx context.Context, reviews []datastore.Review, report *AuditReport) (map[uint]datastore.Review, error) {
	byRecording := make(map[uint][]datastore.Review)
	for i := range reviews {
		byRecording[reviews[i].RecordingID] = append(byRecording[reviews[i].RecordingID], reviews[i])
	}

	kept := make(map[uint]datastore.Review, len(byRecording))
	for recordingID, group := range byRecording {
		if len(group) == 1 {
			kept[recordingID] = group[0]
			continue
		}

		report.DuplicateRecordings++
		a.log().Warn("invariant violation: recording has multiple reviews",
			"recording_id", recordingID,
			"review_count", len(group))

		// Earliest review wins; review ID breaks creation-time ties.
		sort.Slice(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID < group[j].ID
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})

		keep := group[0]
		for _, extra := range group[1:] {
			if err := a.store.DeleteReview(ctx, extra.ID); err != nil {
				return nil, err
			}
			report.ReviewsDeleted++
			a.log().Info("deleted duplicate review",
				"recording_id", recordingID,
				"review_id", extra.ID,
				"kept_review_id", keep.ID)
		}

		// Make the recording reflect the surviving review, unless a
		// last-writer race left it matching that review already.
		rec, err := a.store.GetRecording(ctx, recordingID)
		if err != nil {
			return nil, err
		}
		if !recordingMatchesReview(&rec, &keep) {
			if err := a.store.ApplyReviewToRecording(ctx, &keep); err != nil {
				return nil, err
			}
			report.RecordingsFixed++
		}
		kept[recordingID] = keep
	}

	return kept, nil
}

// reconcileRecordings restores the status ⇔ review-existence invariant for
// every recording: pending with a review adopts the review's decision,
// resolved without a review reverts to pending, and resolved state that
// disagrees with its review is rewritten from the review.
func (a *Auditor) reconcileRecordings(ctx context.Context, kept map[uint]datastore.Review, report *AuditReport) error {
	recordings, err := a.store.GetAllRecordings(ctx)
	if err != nil {
		return err
	}
	report.RecordingsScanned = len(recordings)

	for i := range recordings {
		rec := &recordings[i]
		keptReview, hasReview := kept[rec.ID]

		switch {
		case !rec.Resolved() && hasReview:
			a.log().Warn("invariant violation: pending recording has a review",
				"recording_id", rec.ID,
				"review_id", keptReview.ID)
			if err := a.store.ApplyReviewToRecording(ctx, &keptReview); err != nil {
				return err
			}
			report.RecordingsFixed++

		case rec.Resolved() && !hasReview:
			a.log().Warn("invariant violation: resolved recording has no review",
				"recording_id", rec.ID,
				"status", rec.Status)
			if err := a.store.ResetRecordingToPending(ctx, rec.ID); err != nil {
				return err
			}
			report.RecordingsFixed++

		case rec.Resolved() && hasReview && !recordingMatchesReview(rec, &keptReview):
			a.log().Warn("invariant violation: recording state disagrees with its review",
				"recording_id", rec.ID,
				"status", rec.Status,
				"decision", keptReview.Decision)
			if err := a.store.ApplyReviewToRecording(ctx, &keptReview); err != nil {
				return err
			}
			report.RecordingsFixed++
		}
	}

	return nil
}

// recordingMatchesReview reports whether a resolved recording's fields agree
// with the given review.
func recordingMatchesReview(rec *datastore.Recording, review *datastore.Review) bool {
	if rec.Status != review.Decision {
		return false
	}
	if rec.ReviewerID == nil || *rec.ReviewerID != review.ReviewerID {
		return false
	}
	return rec.DecidedAt != nil
}
