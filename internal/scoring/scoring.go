// Package scoring implements the heuristic answer scorer and the aggregate
// interview score.
package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/mockinterview/internal/model"
)

// Heuristic weights.
const (
	lengthTier1     = 50
	lengthTier2     = 150
	lengthTier3     = 300
	lengthBonus1    = 10
	lengthBonus2    = 15
	lengthBonus3    = 10
	keywordBonus    = 8
	fastRatio       = 0.6
	fastBonus       = 10
	timeoutPenalty  = 0.8
	exampleBonus    = 5
	structureBonus  = 5
	suggestKeywords = 3
)

// Result is the outcome of scoring a single answer.
type Result struct {
	Score    int
	Feedback string
	Matched  []string
}

// Score grades an answer against its question using the tier's bands.
// It is a pure function of its inputs.
func Score(q model.Question, bands []model.ScoringBand, answer string, timeSpent int, timedOut bool) Result {
	if strings.TrimSpace(answer) == "" {
		return Result{Score: 0, Feedback: bandFeedback(bands, model.BandPoor)}
	}

	var score float64

	n := utf8.RuneCountInString(answer)
	if n > lengthTier1 {
		score += lengthBonus1
	}
	if n > lengthTier2 {
		score += lengthBonus2
	}
	if n > lengthTier3 {
		score += lengthBonus3
	}

	matched := MatchKeywords(answer, q.ExpectedKeywords)
	score += float64(len(matched) * keywordBonus)

	if !timedOut && q.TimeLimit > 0 && float64(timeSpent)/float64(q.TimeLimit) < fastRatio {
		score += fastBonus
	}

	if timedOut {
		score *= timeoutPenalty
	}

	if strings.Contains(answer, "example") || strings.Contains(answer, "for instance") {
		score += exampleBonus
	}
	if len(strings.Split(answer, ".")) > 2 {
		score += structureBonus
	}

	final := int(math.Round(clamp(score, 0, float64(Ceiling(bands)))))

	feedback := ""
	if band, ok := BandFor(bands, final); ok {
		feedback = band.Feedback
	}
	if float64(len(matched)) < float64(len(q.ExpectedKeywords))/2 {
		feedback += " Consider covering key concepts like: " + strings.Join(firstN(q.ExpectedKeywords, suggestKeywords), ", ") + "."
	}

	return Result{Score: final, Feedback: feedback, Matched: matched}
}

// MatchKeywords returns the keywords that occur in answer, case-insensitively,
// in keyword order.
func MatchKeywords(answer string, keywords []string) []string {
	lower := strings.ToLower(answer)
	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// BandFor returns the first band in table order that contains score.
func BandFor(bands []model.ScoringBand, score int) (model.ScoringBand, bool) {
	for _, b := range bands {
		if b.Contains(score) {
			return b, true
		}
	}
	return model.ScoringBand{}, false
}

// Ceiling is the maximum score the table allows, taken from the excellent band.
func Ceiling(bands []model.ScoringBand) int {
	ceiling := 0
	for _, b := range bands {
		if b.Name == model.BandExcellent {
			return b.Max
		}
		ceiling = max(ceiling, b.Max)
	}
	if ceiling == 0 {
		return 100
	}
	return ceiling
}

func bandFeedback(bands []model.ScoringBand, name model.BandName) string {
	for _, b := range bands {
		if b.Name == name {
			return b.Feedback
		}
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
