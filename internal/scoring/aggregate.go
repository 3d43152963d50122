package scoring

import (
	"errors"
	"math"

	"github.com/pavelanni/mockinterview/internal/model"
)

// ErrNoAnswers is returned when a final score is requested for an interview
// without answers. A finished interview always has at least one.
var ErrNoAnswers = errors.New("no answers to aggregate")

// FinalScore is the mean of the per-answer scores, rounded to the nearest integer.
func FinalScore(answers []model.AnswerRecord) (int, error) {
	if len(answers) == 0 {
		return 0, ErrNoAnswers
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	return int(math.Round(float64(total) / float64(len(answers)))), nil
}

// Score categories used by the dashboard and the CSV export.
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Good"
	CategoryAverage   = "Average"
	CategoryPoor      = "Poor"
)

// Category buckets a final score for the dashboard.
func Category(score int) string {
	switch {
	case score >= 90:
		return CategoryExcellent
	case score >= 71:
		return CategoryGood
	case score >= 41:
		return CategoryAverage
	default:
		return CategoryPoor
	}
}

// Performance labels shown to the candidate on completion. The thresholds
// differ from Category.
const (
	PerformanceExcellent = "PerformanceExcellent"
	PerformanceGood      = "PerformanceGood"
	PerformanceAverage   = "PerformanceAverage"
	PerformancePoor      = "PerformancePoor"
)

// Performance returns the message ID of the completion label for score.
func Performance(score int) string {
	switch {
	case score >= 90:
		return PerformanceExcellent
	case score >= 75:
		return PerformanceGood
	case score >= 55:
		return PerformanceAverage
	default:
		return PerformancePoor
	}
}

// Strong reports whether an answer counts as strong in candidate summaries.
func Strong(a model.AnswerRecord) bool {
	return a.Score >= 70
}
