// eligibility.go: computing a reviewer's work queue.
package review

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/errors"
)

// EligibleFor returns the recordings the given reviewer may currently act
// on, ordered by creation time ascending for fairness.
//
// Status is read fresh from the store on every call; a recording another
// reviewer just resolved never appears. Excluded are the reviewer's own
// recordings (matched by canonical person ID) and recordings they have
// already reviewed.
func (s *Service) EligibleFor(ctx context.Context, reviewerID uint, statusWanted string) ([]datastore.Recording, error) {
	if statusWanted == "" {
		statusWanted = datastore.StatusPending
	}

	reviewer, err := s.store.GetPerson(ctx, reviewerID)
	if err != nil {
		s.metrics.RecordEligibilityQuery("error", 0)
		return nil, err
	}
	if !reviewer.Reviewer {
		s.metrics.RecordEligibilityQuery("error", 0)
		return nil, errors.Newf("person %d does not hold the reviewer role", reviewerID).
			Component("review").
			Category(errors.CategoryValidation).
			Context("person_id", reviewerID).
			Build()
	}

	// The candidate set and the reviewer's own history are independent
	// full scans; fetch them concurrently.
	var candidates []datastore.Recording
	var ownReviews []datastore.Review

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.store.GetRecordingsByStatus(gctx, statusWanted)
		return err
	})
	g.Go(func() error {
		var err error
		ownReviews, err = s.store.GetReviewsByReviewer(gctx, reviewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.RecordEligibilityQuery("error", 0)
		return nil, err
	}

	alreadyReviewed := make(map[uint]struct{}, len(ownReviews))
	for i := range ownReviews {
		alreadyReviewed[ownReviews[i].RecordingID] = struct{}{}
	}

	eligible := make([]datastore.Recording, 0, len(candidates))
	for i := range candidates {
		rec := candidates[i]
		if rec.PersonID == reviewer.ID {
			continue // never offer a reviewer their own recording
		}
		if _, seen := alreadyReviewed[rec.ID]; seen {
			continue
		}
		eligible = append(eligible, rec)
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].ID < eligible[j].ID
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	s.metrics.RecordEligibilityQuery("success", len(eligible))
	return eligible, nil
}
