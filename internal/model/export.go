package model

import "time"

// ResultsExport is the top-level JSON structure for completed interview export.
type ResultsExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Count      int               `json:"count"`
	Average    int               `json:"average_score"`
	Results    []CandidateResult `json:"results"`
}

// CandidateResult holds one candidate's interview for export.
type CandidateResult struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	FinalScore  int              `json:"final_score"`
	Category    string           `json:"category"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt time.Time        `json:"completed_at"`
	Questions   []QuestionResult `json:"questions"`
}

// QuestionResult holds per-question data for export.
type QuestionResult struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"time_limit"`
	Answer     string     `json:"answer"`
	TimeSpent  int        `json:"time_spent"`
	Timeout    bool       `json:"timeout"`
	Score      int        `json:"score"`
	Feedback   string     `json:"feedback"`
	Review     string     `json:"review,omitempty"`
}
