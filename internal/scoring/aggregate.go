package scoring

// Summary is the mean score per category across several trips.
type Summary map[Category]float64

// Average returns the per-category arithmetic mean of the given trip scores.
// Trips that were never scored, or whose scores are all zero, are skipped.
// With nothing to average every category is 0.
func Average(trips []ScoreMap) Summary {
	summary := make(Summary, len(Categories))
	for _, c := range Categories {
		summary[c] = 0
	}

	n := 0
	for _, scores := range trips {
		if scores.IsZero() {
			continue
		}
		n++
		for _, c := range Categories {
			summary[c] += float64(scores[c])
		}
	}
	if n == 0 {
		return summary
	}
	for _, c := range Categories {
		summary[c] /= float64(n)
	}
	return summary
}
