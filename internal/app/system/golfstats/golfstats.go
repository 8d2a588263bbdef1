// internal/app/system/golfstats/golfstats.go

// Package golfstats computes the descriptive statistics served by the club
// stats endpoint.
package golfstats

import "github.com/montanaflynn/stats"

// Summary aggregates round totals for a club.
// All fields are zero when no rounds matched.
type Summary struct {
	AverageScore float64 `json:"averageScore"`
	LowestScore  int     `json:"lowestScore"`
	HighestScore int     `json:"highestScore"`
	TotalRounds  int     `json:"totalRounds"`
}

// Summarize computes the unweighted mean, min, and max of round totals.
func Summarize(totals []int) Summary {
	if len(totals) == 0 {
		return Summary{}
	}

	data := make(stats.Float64Data, len(totals))
	for i, t := range totals {
		data[i] = float64(t)
	}

	// Mean/Min/Max only error on empty input, which is handled above.
	mean, _ := stats.Mean(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	return Summary{
		AverageScore: mean,
		LowestScore:  int(min),
		HighestScore: int(max),
		TotalRounds:  len(totals),
	}
}
