// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/observability/metrics"
)

// Interface abstracts the underlying database implementation and defines the
// operations the review subsystem needs from the backing store.
type Interface interface {
	Open() error
	Close() error

	// person operations
	SavePerson(ctx context.Context, person *Person) error
	GetPerson(ctx context.Context, id uint) (Person, error)
	GetPersonByEmail(ctx context.Context, email string) (Person, error)

	// sentence operations
	SaveSentence(ctx context.Context, sentence *Sentence) error
	GetActiveSentences(ctx context.Context) ([]Sentence, error)

	// recording operations
	SaveRecording(ctx context.Context, recording *Recording) error
	GetRecording(ctx context.Context, id uint) (Recording, error)
	GetAllRecordings(ctx context.Context) ([]Recording, error)
	GetRecordingsByStatus(ctx context.Context, status string) ([]Recording, error)

	// review operations
	CommitReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, recordingID uint) (Review, error)
	GetAllReviews(ctx context.Context) ([]Review, error)
	GetReviewsByReviewer(ctx context.Context, reviewerID uint) ([]Review, error)
	DeleteReview(ctx context.Context, id uint) error

	// auditor support
	ApplyReviewToRecording(ctx context.Context, review *Review) error
	ResetRecordingToPending(ctx context.Context, recordingID uint) error

	SetMetrics(m *metrics.ReviewMetrics)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB       *gorm.DB // GORM database instance
	pageSize int      // page size for full-table scans

	metricsMu sync.RWMutex
	metrics   *metrics.ReviewMetrics
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	pageSize := settings.Review.PageSize
	if pageSize <= 0 {
		pageSize = defaultScanPageSize
	}

	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			DataStore: DataStore{pageSize: pageSize},
			Settings:  settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			DataStore: DataStore{pageSize: pageSize},
			Settings:  settings,
		}
	default:
		return nil
	}
}

// SetMetrics attaches review metrics to the store. Safe for concurrent use.
func (ds *DataStore) SetMetrics(m *metrics.ReviewMetrics) {
	ds.metricsMu.Lock()
	defer ds.metricsMu.Unlock()
	ds.metrics = m
}

// getMetrics returns the attached metrics, which may be nil.
func (ds *DataStore) getMetrics() *metrics.ReviewMetrics {
	ds.metricsMu.RLock()
	defer ds.metricsMu.RUnlock()
	return ds.metrics
}

// SavePerson inserts or updates a person record.
func (ds *DataStore) SavePerson(ctx context.Context, person *Person) error {
	if person.Email == "" {
		return validationError("person email must not be empty", "email", person.Email)
	}
	if err := ds.DB.WithContext(ctx).Save(person).Error; err != nil {
		return dbError(err, "save_person", "email", person.Email)
	}
	return nil
}

// GetPerson retrieves a person by their canonical identifier.
func (ds *DataStore) GetPerson(ctx context.Context, id uint) (Person, error) {
	var person Person
	if err := ds.DB.WithContext(ctx).First(&person, id).Error; err != nil {
		return Person{}, dbError(err, "get_person", "person_id", id)
	}
	return person, nil
}

// GetPersonByEmail retrieves a person by email. Kept for external callers
// that only hold an email; internal matching always uses the ID.
func (ds *DataStore) GetPersonByEmail(ctx context.Context, email string) (Person, error) {
	var person Person
	if err := ds.DB.WithContext(ctx).Where("email = ?", email).First(&person).Error; err != nil {
		return Person{}, dbError(err, "get_person_by_email", "email", email)
	}
	return person, nil
}

// SaveSentence inserts or updates a sentence record.
func (ds *DataStore) SaveSentence(ctx context.Context, sentence *Sentence) error {
	if sentence.Text == "" {
		return validationError("sentence text must not be empty", "text", sentence.Text)
	}
	if err := ds.DB.WithContext(ctx).Save(sentence).Error; err != nil {
		return dbError(err, "save_sentence", "text", sentence.Text)
	}
	return nil
}

// SaveRecording inserts or updates a recording record.
func (ds *DataStore) SaveRecording(ctx context.Context, recording *Recording) error {
	if recording.SentenceText == "" {
		return validationError("recording sentence text must not be empty", "sentence_text", recording.SentenceText)
	}
	if recording.Status == "" {
		recording.Status = StatusPending
	}
	if err := ds.DB.WithContext(ctx).Save(recording).Error; err != nil {
		return dbError(err, "save_recording", "recording_id", recording.ID)
	}
	return nil
}

// GetRecording retrieves a recording by ID. The status is always read fresh
// from the store, never from any cache.
func (ds *DataStore) GetRecording(ctx context.Context, id uint) (Recording, error) {
	var recording Recording
	if err := ds.DB.WithContext(ctx).First(&recording, id).Error; err != nil {
		return Recording{}, dbError(err, "get_recording", "recording_id", id)
	}
	return recording, nil
}

// GetReview retrieves the review for a recording, if one exists.
func (ds *DataStore) GetReview(ctx context.Context, recordingID uint) (Review, error) {
	var review Review
	if err := ds.DB.WithContext(ctx).Where("recording_id = ?", recordingID).First(&review).Error; err != nil {
		return Review{}, dbError(err, "get_review", "recording_id", recordingID)
	}
	return review, nil
}

// DeleteReview removes a review row by its own ID. Used by the auditor when
// reconciling duplicates; the request path never deletes reviews.
func (ds *DataStore) DeleteReview(ctx context.Context, id uint) error {
	if err := ds.DB.WithContext(ctx).Delete(&Review{}, id).Error; err != nil {
		return dbError(err, "delete_review", "review_id", id)
	}
	return nil
}

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return err != nil && errorIs(err, gorm.ErrRecordNotFound)
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
