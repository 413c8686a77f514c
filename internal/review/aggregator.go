// aggregator.go: sentence contribution aggregation and the contribution cap.
package review

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
)

const contributorsCacheKey = "contributors_by_sentence"

// DefaultContributionCap is the number of distinct contributors a sentence
// accepts before it disappears from the available listing.
const DefaultContributionCap = 3

// Aggregator computes, per sentence text, the set of distinct contributors
// who have ever recorded it. Every recording counts regardless of status: a
// contributor claims a sentence slot the moment they record, not on
// approval.
//
// The result is a read-mostly cache. It feeds the available-sentence listing
// and is advisory only; the commit protocol's correctness never depends on
// it, so staleness costs fairness at worst.
type Aggregator struct {
	store datastore.Interface
	cache *gocache.Cache
	cap   int
}

// NewAggregator creates an aggregator with the configured cap and cache TTL.
func NewAggregator(store datastore.Interface, settings *conf.Settings) *Aggregator {
	contributionCap := DefaultContributionCap
	ttl := 5 * time.Minute
	if settings != nil {
		if settings.Review.ContributionCap > 0 {
			contributionCap = settings.Review.ContributionCap
		}
		if settings.Review.CacheTTL > 0 {
			ttl = settings.Review.CacheTTL
		}
	}

	return &Aggregator{
		store: store,
		cache: gocache.New(ttl, 2*ttl),
		cap:   contributionCap,
	}
}

// ContributionCap returns the configured per-sentence contributor cap.
func (a *Aggregator) ContributionCap() int {
	return a.cap
}

// ContributorsBySentence returns the mapping from sentence text to the set
// of distinct contributor IDs, recomputing it from a full recording scan
// when the cached copy has expired.
func (a *Aggregator) ContributorsBySentence(ctx context.Context) (map[string]map[uint]struct{}, error) {
	if cached, found := a.cache.Get(contributorsCacheKey); found {
		return cached.(map[string]map[uint]struct{}), nil
	}

	recordings, err := a.store.GetAllRecordings(ctx)
	if err != nil {
		return nil, err
	}

	contributors := make(map[string]map[uint]struct{})
	for i := range recordings {
		rec := &recordings[i]
		set, ok := contributors[rec.SentenceText]
		if !ok {
			set = make(map[uint]struct{})
			contributors[rec.SentenceText] = set
		}
		set[rec.PersonID] = struct{}{}
	}

	a.cache.SetDefault(contributorsCacheKey, contributors)
	return contributors, nil
}

// ContributorCount returns the number of distinct contributors who have
// recorded the given sentence text.
func (a *Aggregator) ContributorCount(ctx context.Context, sentenceText string) (int, error) {
	contributors, err := a.ContributorsBySentence(ctx)
	if err != nil {
		return 0, err
	}
	return len(contributors[sentenceText]), nil
}

// Invalidate drops the cached aggregation so the next read recomputes it.
func (a *Aggregator) Invalidate() {
	a.cache.Delete(contributorsCacheKey)
}

// AvailableSentences returns the active sentences the given contributor may
// still record: the cap is not reached and they have not already recorded
// it themselves.
func (a *Aggregator) AvailableSentences(ctx context.Context, contributorID uint) ([]datastore.Sentence, error) {
	sentences, err := a.store.GetActiveSentences(ctx)
	if err != nil {
		return nil, err
	}

	contributors, err := a.ContributorsBySentence(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]datastore.Sentence, 0, len(sentences))
	for i := range sentences {
		sentence := sentences[i]
		set := contributors[sentence.Text]
		if len(set) >= a.cap {
			continue
		}
		if _, recorded := set[contributorID]; recorded {
			continue
		}
		available = append(available, sentence)
	}

	return available, nil
}
