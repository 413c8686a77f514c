package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
)

// createTestSettings creates minimal settings for database tests.
func createTestSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Review.PageSize = 1000
	settings.Review.ContributionCap = 3
	return settings
}

// createDatabase initializes a temporary database for testing purposes.
// It ensures the database connection is opened and handles potential errors.
func createDatabase(t *testing.T, settings *conf.Settings) Interface {
	t.Helper()
	tempDir := t.TempDir()
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = tempDir + "/test.db"

	dataStore := New(settings)

	// Attempt to open a database connection.
	require.NoError(t, dataStore.Open(), "Failed to open database")

	// Ensure the database is closed after the test completes.
	t.Cleanup(func() {
		assert.NoError(t, dataStore.Close(), "Failed to close datastore")
	})

	return dataStore
}

func TestRecordingRoundTrip(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()

	created := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	original := Recording{
		PersonID:     7,
		SentenceText: "The quick brown fox jumps over the lazy dog.",
		ClipName:     "clip_007.wav",
		CreatedAt:    created,
	}

	require.NoError(t, ds.SaveRecording(ctx, &original), "Failed to save recording")
	require.NotZero(t, original.ID, "Recording ID should be assigned after save")

	loaded, err := ds.GetRecording(ctx, original.ID)
	require.NoError(t, err, "Failed to load recording")

	assert.Equal(t, original.ID, loaded.ID, "ID mismatch")
	assert.Equal(t, original.PersonID, loaded.PersonID, "PersonID mismatch")
	assert.Equal(t, original.SentenceText, loaded.SentenceText, "SentenceText mismatch")
	assert.Equal(t, original.ClipName, loaded.ClipName, "ClipName mismatch")
	assert.Equal(t, StatusPending, loaded.Status, "new recording should default to pending")
	assert.Nil(t, loaded.ReviewerID, "pending recording must have no reviewer")
	assert.Nil(t, loaded.DecidedAt, "pending recording must have no decision timestamp")
	assert.True(t, created.Equal(loaded.CreatedAt), "CreatedAt mismatch: got %v, want %v", loaded.CreatedAt, created)
}

func TestPersonEmailUnique(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))
	ctx := context.Background()

	first := Person{Email: "ada@example.org", Name: "Ada", Reviewer: true}
	require.NoError(t, ds.SavePerson(ctx, &first))

	duplicate := Person{Email: "ada@example.org", Name: "Imposter"}
	err := ds.SavePerson(ctx, &duplicate)
	require.Error(t, err, "duplicate email must be rejected")

	loaded, err := ds.GetPersonByEmail(ctx, "ada@example.org")
	require.NoError(t, err)
	assert.Equal(t, first.ID, loaded.ID)
	assert.Equal(t, "Ada", loaded.Name)
}

func TestSavePersonValidation(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))

	err := ds.SavePerson(context.Background(), &Person{Name: "No Email"})
	require.Error(t, err, "person without email must be rejected")
}

func TestGetRecordingNotFound(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t, createTestSettings(t))

	_, err := ds.GetRecording(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "missing recording should map to a not-found error")
}
