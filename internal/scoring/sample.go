// Package scoring turns the raw GPS samples of a trip into four 0-100
// behavioural scores: time of day, acceleration, braking and speeding.
//
// Scoring is two pure phases. DeriveSegments converts samples into the
// speed between each consecutive pair, and Scorer.Score reduces samples and
// segments into a ScoreMap. Callers that score the same trip repeatedly can
// derive segments once and reuse them.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrLengthMismatch is returned when the latitude, longitude and timestamp
// sequences of a trip do not line up.
var ErrLengthMismatch = errors.New("lat, long and timestamp counts differ")

// Sample is one recorded GPS fix. Time is seconds since the Unix epoch.
type Sample struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"long"`
	Time float64 `json:"timestamp"`
}

// At returns the sample time as a time.Time in UTC.
func (s Sample) At() time.Time {
	sec, frac := math.Modf(s.Time)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// ParseError reports a sample value that is not a number.
type ParseError struct {
	Field string
	Index int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s[%d] %q: %v", e.Field, e.Index, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseSamples coerces the string sequences stored for a trip into samples.
// Timestamps are millisecond epoch values. If any sequence is empty the trip
// has no data and ParseSamples returns nil without an error.
func ParseSamples(lats, lons, timestamps []string) ([]Sample, error) {
	if len(lats) == 0 || len(lons) == 0 || len(timestamps) == 0 {
		return nil, nil
	}
	if len(lats) != len(lons) || len(lats) != len(timestamps) {
		return nil, ErrLengthMismatch
	}

	samples := make([]Sample, len(lats))
	for i := range lats {
		lat, err := parseField("lat", i, lats[i])
		if err != nil {
			return nil, err
		}
		lon, err := parseField("long", i, lons[i])
		if err != nil {
			return nil, err
		}
		ms, err := parseField("timestamp", i, timestamps[i])
		if err != nil {
			return nil, err
		}
		samples[i] = Sample{Lat: lat, Lon: lon, Time: ms / 1000}
	}
	return samples, nil
}

// NewSamples is ParseSamples for values that are already numeric.
func NewSamples(lats, lons, millis []float64) ([]Sample, error) {
	if len(lats) == 0 || len(lons) == 0 || len(millis) == 0 {
		return nil, nil
	}
	if len(lats) != len(lons) || len(lats) != len(millis) {
		return nil, ErrLengthMismatch
	}

	samples := make([]Sample, len(lats))
	for i := range lats {
		samples[i] = Sample{Lat: lats[i], Lon: lons[i], Time: millis[i] / 1000}
	}
	return samples, nil
}

func parseField(field string, index int, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ParseError{Field: field, Index: index, Value: raw, Err: err}
	}
	return v, nil
}
