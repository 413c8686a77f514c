// scan.go: paginated full-table scans.
//
// Naive single-request reads silently cap out at the store's default row
// limit, which previously left the eligibility and cap logic operating on a
// fraction of the true data. Every aggregation in the review subsystem goes
// through fetchAllPages so results are complete or the scan fails loudly.
package datastore

import (
	"context"

	"gorm.io/gorm"
)

const defaultScanPageSize = 1000

// fetchAllPages reads a collection in fixed-size pages ordered by primary key
// until a short page signals exhaustion, concatenating the results. A page
// error aborts the whole scan; there is no partial silent success.
func fetchAllPages[T any](ctx context.Context, db *gorm.DB, pageSize int, apply func(*gorm.DB) *gorm.DB) ([]T, int, error) {
	if pageSize <= 0 {
		pageSize = defaultScanPageSize
	}

	var all []T
	pages := 0
	for offset := 0; ; offset += pageSize {
		var page []T
		query := db.WithContext(ctx).Order("id ASC").Limit(pageSize).Offset(offset)
		if apply != nil {
			query = apply(query)
		}
		if err := query.Find(&page).Error; err != nil {
			return nil, pages, err
		}
		pages++
		all = append(all, page...)
		if len(page) < pageSize {
			return all, pages, nil
		}
	}
}

// GetAllRecordings retrieves every recording regardless of status.
func (ds *DataStore) GetAllRecordings(ctx context.Context) ([]Recording, error) {
	recordings, pages, err := fetchAllPages[Recording](ctx, ds.DB, ds.pageSize, nil)
	if err != nil {
		return nil, dbError(err, "get_all_recordings", "pages_read", pages)
	}
	ds.getMetrics().RecordScan("recordings", pages, len(recordings))
	return recordings, nil
}

// GetRecordingsByStatus retrieves every recording in the given status,
// ordered by primary key ascending.
func (ds *DataStore) GetRecordingsByStatus(ctx context.Context, status string) ([]Recording, error) {
	recordings, pages, err := fetchAllPages[Recording](ctx, ds.DB, ds.pageSize, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", status)
	})
	if err != nil {
		return nil, dbError(err, "get_recordings_by_status", "status", status, "pages_read", pages)
	}
	ds.getMetrics().RecordScan("recordings", pages, len(recordings))
	return recordings, nil
}

// GetAllReviews retrieves every review row.
func (ds *DataStore) GetAllReviews(ctx context.Context) ([]Review, error) {
	reviews, pages, err := fetchAllPages[Review](ctx, ds.DB, ds.pageSize, nil)
	if err != nil {
		return nil, dbError(err, "get_all_reviews", "pages_read", pages)
	}
	ds.getMetrics().RecordScan("reviews", pages, len(reviews))
	return reviews, nil
}

// GetReviewsByReviewer retrieves every review authored by one reviewer.
func (ds *DataStore) GetReviewsByReviewer(ctx context.Context, reviewerID uint) ([]Review, error) {
	reviews, pages, err := fetchAllPages[Review](ctx, ds.DB, ds.pageSize, func(q *gorm.DB) *gorm.DB {
		return q.Where("reviewer_id = ?", reviewerID)
	})
	if err != nil {
		return nil, dbError(err, "get_reviews_by_reviewer", "reviewer_id", reviewerID, "pages_read", pages)
	}
	ds.getMetrics().RecordScan("reviews", pages, len(reviews))
	return reviews, nil
}

// GetActiveSentences retrieves every active sentence.
func (ds *DataStore) GetActiveSentences(ctx context.Context) ([]Sentence, error) {
	sentences, pages, err := fetchAllPages[Sentence](ctx, ds.DB, ds.pageSize, func(q *gorm.DB) *gorm.DB {
		return q.Where("active = ?", true)
	})
	if err != nil {
		return nil, dbError(err, "get_active_sentences", "pages_read", pages)
	}
	ds.getMetrics().RecordScan("sentences", pages, len(sentences))
	return sentences, nil
}
