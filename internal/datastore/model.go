// model.go this code defines the data model for the application
package datastore

import "time"

// Recording status values. A recording starts as pending and is resolved to
// approved or rejected by exactly one review.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review decision values.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Person is the canonical identity shared across contributor and reviewer
// roles. Self-review exclusion compares Person IDs, never email strings, so
// an email change has no effect on matching.
type Person struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	Name      string
	Reviewer  bool      `gorm:"index"` // true if this person may review recordings
	CreatedAt time.Time `gorm:"index"`
}

// Sentence represents one prompt text offered to contributors. Text is the
// natural key used for the contribution cap; the distinct-contributor count
// is derived from recordings, never stored here.
type Sentence struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"uniqueIndex;not null"`
	Active    bool   `gorm:"index"`
	CreatedAt time.Time
}

// Recording represents one spoken-audio submission of a sentence by a contributor.
// ReviewerID and DecidedAt are set if and only if Status is not pending.
type Recording struct {
	ID           uint   `gorm:"primaryKey"`
	PersonID     uint   `gorm:"index;not null"`                                   // owning contributor
	SentenceText string `gorm:"index;not null"`                                   // natural key into sentences
	ClipName     string                                                           // audio clip path, managed externally
	Status       string `gorm:"type:varchar(20);index;not null;default:pending"` // pending, approved, rejected
	ReviewerID   *uint
	DecidedAt    *time.Time
	CreatedAt    time.Time `gorm:"index"`

	Review *Review `gorm:"foreignKey:RecordingID;constraint:OnDelete:CASCADE"` // One-to-one relationship with cascade delete
}

// Review represents one reviewer's decision on exactly one recording.
// The unique index on RecordingID is the store-level enforcement of the
// at-most-one-review invariant; a second concurrent insert fails with a
// duplicate-key error instead of creating a silent duplicate.
// GORM will automatically create table name as 'reviews'
type Review struct {
	ID          uint          `gorm:"primaryKey"`
	RecordingID uint          `gorm:"uniqueIndex;not null;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;foreignKey:RecordingID;references:ID"` // Foreign key to associate with Recording
	ReviewerID  uint          `gorm:"index;not null"`
	Decision    string        `gorm:"type:varchar(20);not null"` // Values: "approved", "rejected"
	Confidence  int                                              // reviewer confidence, 0-100
	TimeSpent   time.Duration                                    // time the reviewer spent on the decision
	CreatedAt   time.Time     `gorm:"index"`                     // When the review was created
}

// Resolved reports whether the recording has received a binding decision.
func (r *Recording) Resolved() bool {
	return r.Status != StatusPending
}

// ValidDecision reports whether d is a known review decision.
func ValidDecision(d string) bool {
	return d == DecisionApproved || d == DecisionRejected
}
