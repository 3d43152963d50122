package store

import (
	"math"
	"time"

	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/scoring"
)

// BuildExport converts completed candidates to the export format.
func BuildExport(list []model.CompletedCandidate, now time.Time) model.ResultsExport {
	out := model.ResultsExport{
		ExportedAt: now,
		Count:      len(list),
		Results:    make([]model.CandidateResult, 0, len(list)),
	}

	total := 0
	for _, c := range list {
		total += c.Interview.FinalScore

		var questions []model.QuestionResult
		for i, q := range c.Interview.Questions {
			qr := model.QuestionResult{
				ID:         q.ID,
				Text:       q.Text,
				Category:   q.Category,
				Difficulty: q.Difficulty,
				TimeLimit:  q.TimeLimit,
				Review:     c.Reviews[q.ID],
			}
			if a, ok := c.AnswerFor(i); ok {
				qr.Answer = a.Text
				qr.TimeSpent = a.TimeSpent
				qr.Timeout = a.IsTimeout
				qr.Score = a.Score
				qr.Feedback = a.Feedback
			}
			questions = append(questions, qr)
		}

		out.Results = append(out.Results, model.CandidateResult{
			ID:          c.ID,
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			FinalScore:  c.Interview.FinalScore,
			Category:    scoring.Category(c.Interview.FinalScore),
			StartedAt:   c.Interview.StartTime,
			CompletedAt: c.CompletedAt,
			Questions:   questions,
		})
	}

	if len(list) > 0 {
		out.Average = int(math.Round(float64(total) / float64(len(list))))
	}
	return out
}
