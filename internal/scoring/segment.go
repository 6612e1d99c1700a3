package scoring

import (
	"encoding/json"
	"math"

	"backend-socialbox/internal/shared/geo"
)

const secondsPerHour = 3600

// Segment is the movement between two consecutive samples.
//
// Elapsed time is not validated: a repeated or out of order timestamp gives
// an infinite, negative or NaN speed, and that value flows into the scores.
type Segment struct {
	ElapsedSeconds float64
	DistanceMiles  float64
	SpeedMPH       float64
}

// DeriveSegments returns one segment per adjacent pair of samples, in order.
// Fewer than two samples yield no segments.
func DeriveSegments(samples []Sample) []Segment {
	if len(samples) < 2 {
		return nil
	}

	segments := make([]Segment, 0, len(samples)-1)
	for i := 0; i < len(samples)-1; i++ {
		current, next := samples[i], samples[i+1]

		elapsed := next.Time - current.Time
		distance := geo.GeodesicMiles(current.Lat, current.Lon, next.Lat, next.Lon)

		segments = append(segments, Segment{
			ElapsedSeconds: elapsed,
			DistanceMiles:  distance,
			SpeedMPH:       distance / (elapsed / secondsPerHour),
		})
	}
	return segments
}

// MarshalJSON writes non-finite values as null; encoding/json rejects them.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ElapsedSeconds *float64 `json:"elapsed_seconds"`
		DistanceMiles  *float64 `json:"distance_miles"`
		SpeedMPH       *float64 `json:"speed_mph"`
	}{
		ElapsedSeconds: finite(s.ElapsedSeconds),
		DistanceMiles:  finite(s.DistanceMiles),
		SpeedMPH:       finite(s.SpeedMPH),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
