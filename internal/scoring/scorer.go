package scoring

import "time"

// Category names one of the four trip scores.
type Category string

const (
	TimeOfDay    Category = "time_of_day"
	Acceleration Category = "acceleration"
	Braking      Category = "braking"
	Speeding     Category = "speeding"
)

// Categories lists every score category in a stable order.
var Categories = []Category{TimeOfDay, Acceleration, Braking, Speeding}

// DefaultSpeedLimitMPH is the speed above which a segment counts as speeding.
const DefaultSpeedLimitMPH = 70

// ScoreMap holds an integer percentage per category. Maps built by this
// package always carry all four categories.
type ScoreMap map[Category]int

// EmptyScores is the result for a trip without samples.
func EmptyScores() ScoreMap {
	scores := make(ScoreMap, len(Categories))
	for _, c := range Categories {
		scores[c] = 0
	}
	return scores
}

// IsZero reports whether the map is missing or has no non-zero score.
func (m ScoreMap) IsZero() bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

type Scorer struct {
	loc           *time.Location
	speedLimitMPH float64
}

type Option func(*Scorer)

// WithLocation sets the zone whose wall clock decides day and night. Without
// it the local mean solar time of the trip's first sample is used.
func WithLocation(loc *time.Location) Option {
	return func(s *Scorer) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithSpeedLimit(mph float64) Option {
	return func(s *Scorer) {
		if mph > 0 {
			s.speedLimitMPH = mph
		}
	}
}

// New returns a Scorer using the trip's local solar clock and a 70 mph limit
// unless overridden.
// A Scorer holds no per-trip state and is safe for concurrent use.
func New(opts ...Option) *Scorer {
	s := &Scorer{speedLimitMPH: DefaultSpeedLimitMPH}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreTrip derives segments from samples and scores them.
func (s *Scorer) ScoreTrip(samples []Sample) ScoreMap {
	if len(samples) == 0 {
		return EmptyScores()
	}
	return s.Score(samples, DeriveSegments(samples))
}

// Score reduces samples and their derived segments into a ScoreMap.
// Time of day is the share of samples recorded in daylight. The other three
// are the share of segments without the risky event, so higher is safer.
func (s *Scorer) Score(samples []Sample, segments []Segment) ScoreMap {
	if len(samples) == 0 {
		return EmptyScores()
	}
	return ScoreMap{
		TimeOfDay:    s.TimeOfDay(samples),
		Acceleration: AccelerationScore(segments),
		Braking:      BrakingScore(segments),
		Speeding:     SpeedingScore(segments, s.speedLimitMPH),
	}
}

// TimeOfDay is the percentage of samples whose local wall-clock time falls
// between sunrise and sunset, both inclusive.
func (s *Scorer) TimeOfDay(samples []Sample) int {
	if len(samples) == 0 {
		return 0
	}
	window := daylightFor(samples[0], s.loc)

	daytime := 0
	for _, sample := range samples {
		if window.contains(sample.At()) {
			daytime++
		}
	}
	return percent(daytime, len(samples))
}

// AccelerationScore counts adjacent segment pairs where speed at most doubles.
//
// The count covers len(segments)-1 pairs but is divided by len(segments), so
// a perfectly smooth trip scores just under 100. Stored scores depend on this
// denominator; keep it.
func AccelerationScore(segments []Segment) int {
	smooth := 0
	for i := 0; i < len(segments)-1; i++ {
		current, next := segments[i].SpeedMPH, segments[i+1].SpeedMPH
		if next <= current*2 {
			smooth++
		}
	}
	return percent(smooth, len(segments))
}

// BrakingScore counts adjacent segment pairs where next/2 <= current.
// Same denominator as AccelerationScore. The inequality is the acceleration
// one rearranged; stored braking scores depend on it as written.
func BrakingScore(segments []Segment) int {
	smooth := 0
	for i := 0; i < len(segments)-1; i++ {
		current, next := segments[i].SpeedMPH, segments[i+1].SpeedMPH
		if next/2 <= current {
			smooth++
		}
	}
	return percent(smooth, len(segments))
}

// SpeedingScore is the percentage of segments at or under limitMPH.
func SpeedingScore(segments []Segment, limitMPH float64) int {
	over := 0
	for _, seg := range segments {
		if seg.SpeedMPH > limitMPH {
			over++
		}
	}
	return percent(len(segments)-over, len(segments))
}

// percent truncates toward zero. A zero total scores 0.
func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return 100 * count / total
}
