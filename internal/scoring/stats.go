package scoring

import "math"

// Stats describes the shape of a trip, independent of its scores.
type Stats struct {
	Samples         int     `json:"samples"`
	Segments        int     `json:"segments"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationSeconds float64 `json:"duration_seconds"`
	MaxSpeedMPH     float64 `json:"max_speed_mph"`
	AvgSpeedMPH     float64 `json:"avg_speed_mph"`
}

// Summarize totals the trip. Segments with a non-finite speed add their
// distance but are ignored for the maximum speed.
func Summarize(samples []Sample, segments []Segment) Stats {
	stats := Stats{Samples: len(samples), Segments: len(segments)}
	if len(samples) > 1 {
		stats.DurationSeconds = samples[len(samples)-1].Time - samples[0].Time
	}
	for _, seg := range segments {
		stats.DistanceMiles += seg.DistanceMiles
		if !math.IsNaN(seg.SpeedMPH) && !math.IsInf(seg.SpeedMPH, 0) && seg.SpeedMPH > stats.MaxSpeedMPH {
			stats.MaxSpeedMPH = seg.SpeedMPH
		}
	}
	if stats.DurationSeconds > 0 {
		stats.AvgSpeedMPH = stats.DistanceMiles / (stats.DurationSeconds / secondsPerHour)
	}
	for _, v := range []*float64{&stats.DistanceMiles, &stats.DurationSeconds, &stats.AvgSpeedMPH} {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
	return stats
}
