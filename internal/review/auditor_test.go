package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
)

// dropReviewUniqueIndex simulates the legacy store that lacked the unique
// constraint, which is how duplicate reviews got into production data in the
// first place.
func dropReviewUniqueIndex(t *testing.T, store datastore.Interface) *datastore.SQLiteStore {
	t.Helper()
	sqlite, ok := store.(*datastore.SQLiteStore)
	require.True(t, ok, "test store must be SQLite-backed")
	require.NoError(t, sqlite.DB.Migrator().DropIndex(&datastore.Review{}, "RecordingID"))
	return sqlite
}

func TestAuditorCleanStore(t *testing.T) {
	t.Parallel()

	service, store, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	reviewer := addPerson(t, store, "rev@example.org", "Rev", true)
	contributor := addPerson(t, store, "con@example.org", "Con", false)
	rec := addRecording(t, store, contributor.ID, "clean sentence", now)
	_, err := service.Commit(ctx, rec.ID, reviewer.ID, datastore.DecisionApproved, 90, time.Second)
	require.NoError(t, err)

	report, err := NewAuditor(store).Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "a consistent store needs no repairs")
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.ReviewsScanned)
	assert.Equal(t, 1, report.RecordingsScanned)
}

func TestAuditorReconcilesDuplicates(t *testing.T) {
	t.Parallel()

	_, store, _ := newTestService(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	contributor := addPerson(t, store, "con@example.org", "Con", false)
	rec := addRecording(t, store, contributor.ID, "doubly reviewed", base)

	sqlite := dropReviewUniqueIndex(t, store)

	// Three reviews for one recording; the earliest must survive. The
	// recording's own state reflects the last writer, as the race bug did.
	earliest := datastore.Review{RecordingID: rec.ID, ReviewerID: 10, Decision: datastore.DecisionRejected, CreatedAt: base.Add(time.Minute)}
	middle := datastore.Review{RecordingID: rec.ID, ReviewerID: 11, Decision: datastore.DecisionApproved, CreatedAt: base.Add(2 * time.Minute)}
	latest := datastore.Review{RecordingID: rec.ID, ReviewerID: 12, Decision: datastore.DecisionApproved, CreatedAt: base.Add(3 * time.Minute)}
	require.NoError(t, sqlite.DB.Create(&earliest).Error)
	require.NoError(t, sqlite.DB.Create(&middle).Error)
	require.NoError(t, sqlite.DB.Create(&latest).Error)
	require.NoError(t, store.ApplyReviewToRecording(ctx, &latest))

	report, err := NewAuditor(store).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicateRecordings)
	assert.Equal(t, 2, report.ReviewsDeleted)
	assert.GreaterOrEqual(t, report.RecordingsFixed, 1)

	reviews, err := store.GetAllReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1, "only the earliest review may remain")
	assert.Equal(t, earliest.ID, reviews[0].ID)

	fixed, err := store.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.StatusRejected, fixed.Status, "recording must match the kept review")
	require.NotNil(t, fixed.ReviewerID)
	assert.Equal(t, uint(10), *fixed.ReviewerID)

	// A second run finds nothing left to repair.
	again, err := NewAuditor(store).Run(ctx)
	require.NoError(t, err)
	assert.True(t, again.Clean())
}

func TestAuditorSkipsRewriteWhenRecordingMatchesKeptReview(t *testing.T) {
	t.Parallel()

	_, store, _ := newTestService(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	contributor := addPerson(t, store, "con@example.org", "Con", false)
	rec := addRecording(t, store, contributor.ID, "first writer won", base)

	sqlite := dropReviewUniqueIndex(t, store)

	// The recording already reflects the earliest review; only the later
	// duplicate needs removing. The recording itself must be left alone,
	// since rewriting a row to its current values reads as zero affected
	// rows on some backends and would abort the run.
	earliest := datastore.Review{RecordingID: rec.ID, ReviewerID: 40, Decision: datastore.DecisionApproved, CreatedAt: base.Add(time.Minute)}
	duplicate := datastore.Review{RecordingID: rec.ID, ReviewerID: 41, Decision: datastore.DecisionRejected, CreatedAt: base.Add(2 * time.Minute)}
	require.NoError(t, sqlite.DB.Create(&earliest).Error)
	require.NoError(t, sqlite.DB.Create(&duplicate).Error)
	require.NoError(t, store.ApplyReviewToRecording(ctx, &earliest))

	report, err := NewAuditor(store).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicateRecordings)
	assert.Equal(t, 1, report.ReviewsDeleted)
	assert.Equal(t, 0, report.RecordingsFixed, "a recording matching the kept review needs no rewrite")

	fixed, err := store.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.StatusApproved, fixed.Status)
	require.NotNil(t, fixed.ReviewerID)
	assert.Equal(t, uint(40), *fixed.ReviewerID)
}

func TestAuditorResetsResolvedWithoutReview(t *testing.T) {
	t.Parallel()

	_, store, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	contributor := addPerson(t, store, "con@example.org", "Con", false)
	rec := addRecording(t, store, contributor.ID, "phantom approval", now)

	// Resolved state with no review row behind it.
	phantom := datastore.Review{ID: 500, RecordingID: rec.ID, ReviewerID: 20, Decision: datastore.DecisionApproved, CreatedAt: now}
	require.NoError(t, store.ApplyReviewToRecording(ctx, &phantom))

	report, err := NewAuditor(store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RecordingsFixed)

	reset, err := store.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.StatusPending, reset.Status)
	assert.Nil(t, reset.ReviewerID)
	assert.Nil(t, reset.DecidedAt)
}

func TestAuditorAdoptsReviewForPendingRecording(t *testing.T) {
	t.Parallel()

	_, store, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	contributor := addPerson(t, store, "con@example.org", "Con", false)
	rec := addRecording(t, store, contributor.ID, "half committed", now)

	// A review row exists but the recording never left pending, the other
	// half of a torn write.
	sqlite, ok := store.(*datastore.SQLiteStore)
	require.True(t, ok)
	orphan := datastore.Review{RecordingID: rec.ID, ReviewerID: 30, Decision: datastore.DecisionRejected, CreatedAt: now}
	require.NoError(t, sqlite.DB.Create(&orphan).Error)

	report, err := NewAuditor(store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RecordingsFixed)

	fixed, err := store.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.StatusRejected, fixed.Status)
	require.NotNil(t, fixed.ReviewerID)
	assert.Equal(t, uint(30), *fixed.ReviewerID)
}
