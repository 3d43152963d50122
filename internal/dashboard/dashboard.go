// Package dashboard filters, sorts and summarizes completed interviews for
// the reviewer view and the CSV export.
package dashboard

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/scoring"
)

// ScoreFilter restricts the list to one score category.
type ScoreFilter string

const (
	ScoreAll       ScoreFilter = "all"
	ScoreExcellent ScoreFilter = "excellent"
	ScoreGood      ScoreFilter = "good"
	ScoreAverage   ScoreFilter = "average"
	ScorePoor      ScoreFilter = "poor"
)

// SortField is the column the list is ordered by.
type SortField string

const (
	SortDate  SortField = "date"
	SortScore SortField = "score"
	SortName  SortField = "name"
)

// Order is the sort direction.
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// Query selects and orders completed candidates.
type Query struct {
	Search string
	Score  ScoreFilter
	Sort   SortField
	Order  Order
}

// DefaultQuery lists everything, newest first.
var DefaultQuery = Query{Score: ScoreAll, Sort: SortDate, Order: OrderDesc}

// ParseQuery reads search, score, sort and order parameters. Empty values
// fall back to DefaultQuery.
func ParseQuery(v url.Values) (Query, error) {
	q := DefaultQuery
	q.Search = strings.TrimSpace(v.Get("search"))

	if s := v.Get("score"); s != "" {
		switch f := ScoreFilter(strings.ToLower(s)); f {
		case ScoreAll, ScoreExcellent, ScoreGood, ScoreAverage, ScorePoor:
			q.Score = f
		default:
			return Query{}, fmt.Errorf("unknown score filter %q", s)
		}
	}
	if s := v.Get("sort"); s != "" {
		switch f := SortField(strings.ToLower(s)); f {
		case SortDate, SortScore, SortName:
			q.Sort = f
		default:
			return Query{}, fmt.Errorf("unknown sort field %q", s)
		}
	}
	if s := v.Get("order"); s != "" {
		switch o := Order(strings.ToLower(s)); o {
		case OrderAsc, OrderDesc:
			q.Order = o
		default:
			return Query{}, fmt.Errorf("unknown sort order %q", s)
		}
	}
	return q, nil
}

// Values encodes q in the form ParseQuery reads. An empty search is left out.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("score", string(q.Score))
	v.Set("sort", string(q.Sort))
	v.Set("order", string(q.Order))
	return v
}

// Matches reports whether score falls in the filter's category.
func (f ScoreFilter) Matches(score int) bool {
	switch f {
	case ScoreExcellent:
		return score >= 90
	case ScoreGood:
		return score >= 71 && score < 90
	case ScoreAverage:
		return score >= 41 && score < 71
	case ScorePoor:
		return score < 41
	}
	return true
}

// Apply returns the candidates matching q in the requested order. The input
// slice is not modified.
func Apply(list []model.CompletedCandidate, q Query) []model.CompletedCandidate {
	search := strings.ToLower(q.Search)
	out := make([]model.CompletedCandidate, 0, len(list))
	for _, c := range list {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		if !q.Score.Matches(c.Interview.FinalScore) {
			continue
		}
		out = append(out, c)
	}

	var cmp func(a, b model.CompletedCandidate) int
	switch q.Sort {
	case SortScore:
		cmp = func(a, b model.CompletedCandidate) int {
			return a.Interview.FinalScore - b.Interview.FinalScore
		}
	case SortName:
		col := collate.New(language.English, collate.IgnoreCase)
		cmp = func(a, b model.CompletedCandidate) int {
			return col.CompareString(a.Name, b.Name)
		}
	default:
		cmp = func(a, b model.CompletedCandidate) int {
			return a.CompletedAt.Compare(b.CompletedAt)
		}
	}
	if q.Order == OrderAsc {
		slices.SortStableFunc(out, cmp)
	} else {
		slices.SortStableFunc(out, func(a, b model.CompletedCandidate) int { return cmp(b, a) })
	}
	return out
}

// Summary holds the dashboard header metrics.
type Summary struct {
	TotalInterviews int            `json:"totalInterviews"`
	AverageScore    int            `json:"averageScore"`
	CompletionRate  int            `json:"completionRate"`
	StrongAnswers   int            `json:"strongAnswers"`
	TotalAnswers    int            `json:"totalAnswers"`
	Categories      map[string]int `json:"categories"`
}

// Summarize computes header metrics over list.
func Summarize(list []model.CompletedCandidate) Summary {
	s := Summary{
		Categories: map[string]int{
			scoring.CategoryExcellent: 0,
			scoring.CategoryGood:      0,
			scoring.CategoryAverage:   0,
			scoring.CategoryPoor:      0,
		},
	}
	total, completed := 0, 0
	for _, c := range list {
		if c.Status != model.StatusCompleted {
			continue
		}
		completed++
		total += c.Interview.FinalScore
		s.Categories[scoring.Category(c.Interview.FinalScore)]++
		for _, a := range c.Interview.Answers {
			s.TotalAnswers++
			if scoring.Strong(a) {
				s.StrongAnswers++
			}
		}
	}
	s.TotalInterviews = completed
	if completed > 0 {
		s.AverageScore = int(math.Round(float64(total) / float64(completed)))
	}
	if len(list) > 0 {
		s.CompletionRate = int(math.Round(100 * float64(completed) / float64(len(list))))
	}
	return s
}

// QuestionDetail pairs a question with the candidate's answer.
type QuestionDetail struct {
	Question model.Question     `json:"question"`
	Answer   model.AnswerRecord `json:"answer"`
	Review   string             `json:"review,omitempty"`
}

// Details is the per-candidate review view.
type Details struct {
	Candidate     model.Candidate  `json:"candidate"`
	FinalScore    int              `json:"finalScore"`
	Category      string           `json:"category"`
	CompletedAt   string           `json:"completedAt"`
	QuestionCount int              `json:"questionCount"`
	StrongAnswers int              `json:"strongAnswers"`
	TotalMinutes  int              `json:"totalMinutes"`
	Questions     []QuestionDetail `json:"questions"`
}

// BuildDetails expands a completed candidate into its review view.
func BuildDetails(c model.CompletedCandidate) Details {
	d := Details{
		Candidate:     c.Candidate,
		FinalScore:    c.Interview.FinalScore,
		Category:      scoring.Category(c.Interview.FinalScore),
		CompletedAt:   FormatDate(c.CompletedAt),
		QuestionCount: len(c.Interview.Questions),
		Questions:     make([]QuestionDetail, 0, len(c.Interview.Questions)),
	}
	seconds := 0
	for i, q := range c.Interview.Questions {
		a, _ := c.AnswerFor(i)
		if scoring.Strong(a) {
			d.StrongAnswers++
		}
		seconds += a.TimeSpent
		d.Questions = append(d.Questions, QuestionDetail{Question: q, Answer: a, Review: c.Reviews[q.ID]})
	}
	d.TotalMinutes = int(math.Round(float64(seconds) / 60))
	return d
}
