package golfstats_test

import (
	"testing"

	"github.com/fairwaylog/fairwaylog/internal/app/system/golfstats"
)

func TestSummarize_Empty(t *testing.T) {
	s := golfstats.Summarize(nil)

	if s.AverageScore != 0 || s.LowestScore != 0 || s.HighestScore != 0 || s.TotalRounds != 0 {
		t.Errorf("expected all zeros for empty input, got %+v", s)
	}
}

func TestSummarize_SingleRound(t *testing.T) {
	s := golfstats.Summarize([]int{72})

	if s.AverageScore != 72 {
		t.Errorf("average: got %v, want 72", s.AverageScore)
	}
	if s.LowestScore != 72 || s.HighestScore != 72 {
		t.Errorf("min/max: got %d/%d, want 72/72", s.LowestScore, s.HighestScore)
	}
	if s.TotalRounds != 1 {
		t.Errorf("rounds: got %d, want 1", s.TotalRounds)
	}
}

func TestSummarize_MultipleRounds(t *testing.T) {
	s := golfstats.Summarize([]int{80, 72, 91})

	if s.AverageScore != 81 {
		t.Errorf("average: got %v, want 81", s.AverageScore)
	}
	if s.LowestScore != 72 {
		t.Errorf("lowest: got %d, want 72", s.LowestScore)
	}
	if s.HighestScore != 91 {
		t.Errorf("highest: got %d, want 91", s.HighestScore)
	}
	if s.TotalRounds != 3 {
		t.Errorf("rounds: got %d, want 3", s.TotalRounds)
	}
}

func TestSummarize_FractionalAverage(t *testing.T) {
	s := golfstats.Summarize([]int{72, 73})

	if s.AverageScore != 72.5 {
		t.Errorf("average: got %v, want 72.5", s.AverageScore)
	}
}
