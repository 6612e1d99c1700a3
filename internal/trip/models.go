package trip

import (
	"time"

	"backend-socialbox/internal/scoring"
)

type Trip struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	StartTime  time.Time        `json:"start_time"`
	Lat        []string         `json:"lat"`
	Long       []string         `json:"long"`
	Timestamps []string         `json:"timestamps"`
	Scores     scoring.ScoreMap `json:"scores"`
	ScoredAt   *time.Time       `json:"scored_at,omitempty"`
	SlangTime  string           `json:"slang_time,omitempty"`
}

// Samples parses the raw sample strings of the trip.
func (t Trip) Samples() ([]scoring.Sample, error) {
	return scoring.ParseSamples(t.Lat, t.Long, t.Timestamps)
}

// Batch is one upload of samples appended to a trip.
type Batch struct {
	Lat        []string
	Long       []string
	Timestamps []string
}

func (b Batch) Len() int { return len(b.Lat) }
