// Package summary averages a user's trip scores.
package summary

import (
	"context"
	"sync"
	"time"

	"backend-socialbox/internal/scoring"

	"github.com/maypok86/otter/v2"
)

// ScoreSource lists the stored scores of every scored trip of a user.
type ScoreSource interface {
	Scores(ctx context.Context, userID string) ([]scoring.ScoreMap, error)
}

type Service struct {
	source ScoreSource
	cache  *otter.Cache[string, scoring.Summary]

	// generations counts invalidations per user. A summary read before an
	// invalidation is returned but not cached.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewService caches summaries for ttl. A zero ttl disables caching.
func NewService(source ScoreSource, ttl time.Duration) *Service {
	s := &Service{source: source, generations: map[string]uint64{}}
	if ttl > 0 {
		s.cache = otter.Must(&otter.Options[string, scoring.Summary]{
			MaximumSize:      100_000,
			ExpiryCalculator: otter.ExpiryWriting[string, scoring.Summary](ttl),
		})
	}
	return s
}

// UserScores is the mean per category over the user's scored trips.
func (s *Service) UserScores(ctx context.Context, userID string) (scoring.Summary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetIfPresent(userID); ok {
			return clone(cached), nil
		}
	}

	gen := s.generation(userID)
	scores, err := s.source.Scores(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := scoring.Average(scores)
	if s.cache != nil {
		s.mu.Lock()
		if s.generations[userID] == gen {
			s.cache.Set(userID, clone(summary))
		}
		s.mu.Unlock()
	}
	return summary, nil
}

// Invalidate drops the cached summary after one of the user's trips is
// rescored or deleted.
func (s *Service) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.generations[userID]++
	s.cache.Invalidate(userID)
	s.mu.Unlock()
}

func (s *Service) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

func clone(in scoring.Summary) scoring.Summary {
	out := make(scoring.Summary, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
