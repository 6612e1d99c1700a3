package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backend-socialbox/internal/scoring"
)

// Values is a list of raw sample values. On the wire it is either one
// comma-delimited string or a JSON array of strings or numbers.
type Values []string

func (v *Values) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = SplitValues(s)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected string or array: %w", err)
	}
	out := make(Values, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		switch {
		case len(item) > 0 && item[0] == '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			out = append(out, s)
		case len(item) > 0 && (item[0] == '-' || (item[0] >= '0' && item[0] <= '9')):
			out = append(out, string(item))
		default:
			return fmt.Errorf("element %d: expected string or number", i)
		}
	}
	*v = out
	return nil
}

// SplitValues splits a comma-delimited upload. A blank string has no values.
func SplitValues(s string) Values {
	if strings.TrimSpace(s) == "" {
		return Values{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

type SampleUpload struct {
	Lat       Values `json:"lat"`
	Long      Values `json:"long"`
	Timestamp Values `json:"timestamp"`
}

// ScoreUpdate is pushed to websocket watchers after every rescoring.
type ScoreUpdate struct {
	TripID   string           `json:"trip_id"`
	Scores   scoring.ScoreMap `json:"scores"`
	Stats    scoring.Stats    `json:"stats"`
	ScoredAt time.Time        `json:"scored_at"`
}

type Summary struct {
	TripID string           `json:"trip_id"`
	Scores scoring.ScoreMap `json:"scores"`
	Stats  scoring.Stats    `json:"stats"`
}
