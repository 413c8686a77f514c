// Package review implements the review assignment and conflict resolution
// core: deciding which recordings a reviewer may act on, committing at most
// one binding decision per recording under concurrent reviewers, and
// auditing the committed state for invariant violations.
//
// All shared state lives in the backing store; service instances hold no
// request state and are safe for concurrent use.
package review

import (
	"log/slog"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/logging"
	"github.com/voicecorpus/voicecorpus-go/internal/observability/metrics"
)

// Expected lost-race results of Commit. Callers should treat both as a
// signal to refresh their queue, never as a hard failure.
var (
	ErrAlreadyResolved = datastore.ErrAlreadyResolved
	ErrAlreadyReviewed = datastore.ErrAlreadyReviewed
)

// Service coordinates eligibility queries and review commits against the
// backing store.
type Service struct {
	store      datastore.Interface
	aggregator *Aggregator
	logger     *slog.Logger
	metrics    *metrics.ReviewMetrics
}

// NewService creates a review service backed by the given store.
func NewService(store datastore.Interface, settings *conf.Settings) *Service {
	return &Service{
		store:      store,
		aggregator: NewAggregator(store, settings),
		logger:     logging.ForService("review"),
	}
}

// SetMetrics attaches review metrics to the service. Metrics are optional;
// a nil receiver on the metrics methods is a no-op.
func (s *Service) SetMetrics(m *metrics.ReviewMetrics) {
	s.metrics = m
	s.store.SetMetrics(m)
}

// Aggregator returns the sentence contribution aggregator used by this service.
func (s *Service) Aggregator() *Aggregator {
	return s.aggregator
}

// log guards against use before logging.Init in tests.
func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}
