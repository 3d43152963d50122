package model

import (
	"slices"
	"time"
)

// Difficulty represents the tier a question belongs to.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Tiers lists every difficulty tier in catalog order.
var Tiers = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	return slices.Contains(Tiers, d)
}

// Question is an immutable interview question.
type Question struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimit        int        `json:"timeLimit"`
	Category         string     `json:"category"`
	Tags             []string   `json:"tags"`
	ExpectedKeywords []string   `json:"expectedKeywords"`
}

// BandName names a scoring band within a tier.
type BandName string

const (
	BandExcellent BandName = "excellent"
	BandGood      BandName = "good"
	BandAverage   BandName = "average"
	BandPoor      BandName = "poor"
)

// BandNames lists the four bands every tier must define.
var BandNames = []BandName{BandExcellent, BandGood, BandAverage, BandPoor}

// ScoringBand is an inclusive score range with its feedback template.
type ScoringBand struct {
	Name     BandName `json:"name"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
	Feedback string   `json:"feedback"`
}

// Contains reports whether score falls inside the band.
func (b ScoringBand) Contains(score int) bool {
	return score >= b.Min && score <= b.Max
}

// NoAnswerText is recorded when a question times out with nothing typed.
const NoAnswerText = "No answer provided"

// AnswerRecord is the scored result for one question.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	TimeSpent  int    `json:"timeSpent"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
	IsTimeout  bool   `json:"isTimeout"`
}

// Field identifies a candidate identity field collected during info collection.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

// IdentityFields lists the identity fields in collection order.
var IdentityFields = []Field{FieldName, FieldEmail, FieldPhone}

// Candidate holds the identity of the person being interviewed.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumeFile string `json:"resumeFile,omitempty"`
	ResumeText string `json:"resumeText,omitempty"`
}

// Get returns the value of an identity field.
func (c Candidate) Get(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	}
	return ""
}

// Set assigns an identity field.
func (c *Candidate) Set(f Field, value string) {
	switch f {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	}
}

// MissingFields returns the identity fields that are still empty, in collection order.
func (c Candidate) MissingFields() []Field {
	var missing []Field
	for _, f := range IdentityFields {
		if c.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Step is a state of the interview flow.
type Step string

const (
	StepWelcome    Step = "welcome"
	StepUpload     Step = "upload"
	StepInfo       Step = "info"
	StepInterview  Step = "interview"
	StepCompletion Step = "completion"
)

// Interview is the question loop sub-state of a session.
type Interview struct {
	Questions            []Question     `json:"questions"`
	Answers              []AnswerRecord `json:"answers"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	StartTime            *time.Time     `json:"startTime"`
	EndTime              *time.Time     `json:"endTime"`
}

// InfoCollection is the cursor over identity fields still being asked.
type InfoCollection struct {
	Step          Field   `json:"step"`
	MissingFields []Field `json:"missingFields"`
}

// Session is the live record of one interview attempt. Its JSON form is the
// in-progress snapshot persisted for resume.
type Session struct {
	Candidate      Candidate      `json:"candidate"`
	Interview      Interview      `json:"interview"`
	InfoCollection InfoCollection `json:"infoCollection"`
	CurrentStep    Step           `json:"currentStep"`
}

// Snapshot is the persisted in-progress form of a Session, stored under
// the current-interview key.
type Snapshot = Session

// Resumable reports whether the session has unanswered questions left.
func (s Session) Resumable() bool {
	n := len(s.Interview.Questions)
	return n > 0 && s.Interview.CurrentQuestionIndex < n
}

// Answered reports whether every selected question has an answer.
func (s Session) Answered() bool {
	n := len(s.Interview.Questions)
	return n > 0 && s.Interview.CurrentQuestionIndex == n && len(s.Interview.Answers) == n
}

// Consistent checks the answer/index alignment invariant.
func (s Session) Consistent() bool {
	iv := s.Interview
	if iv.CurrentQuestionIndex < 0 || iv.CurrentQuestionIndex > len(iv.Questions) {
		return false
	}
	if len(iv.Answers) != iv.CurrentQuestionIndex {
		return false
	}
	for i, a := range iv.Answers {
		if a.QuestionID != iv.Questions[i].ID {
			return false
		}
	}
	return true
}

// CurrentQuestion returns the question at the current index, if any.
func (s Session) CurrentQuestion() (Question, bool) {
	iv := s.Interview
	if iv.CurrentQuestionIndex < 0 || iv.CurrentQuestionIndex >= len(iv.Questions) {
		return Question{}, false
	}
	return iv.Questions[iv.CurrentQuestionIndex], true
}

// Clone returns a deep copy that shares no slices with s.
func (s Session) Clone() Session {
	c := s
	c.Interview.Questions = slices.Clone(s.Interview.Questions)
	c.Interview.Answers = slices.Clone(s.Interview.Answers)
	c.InfoCollection.MissingFields = slices.Clone(s.InfoCollection.MissingFields)
	if s.Interview.StartTime != nil {
		t := *s.Interview.StartTime
		c.Interview.StartTime = &t
	}
	if s.Interview.EndTime != nil {
		t := *s.Interview.EndTime
		c.Interview.EndTime = &t
	}
	return c
}

// StatusCompleted marks a finished interview record.
const StatusCompleted = "completed"

// CompletedInterview is the frozen interview plus its aggregate score.
type CompletedInterview struct {
	Interview
	FinalScore int `json:"finalScore"`
}

// CompletedCandidate is the immutable record stored once an interview ends.
type CompletedCandidate struct {
	Candidate
	Interview   CompletedInterview `json:"interview"`
	CompletedAt time.Time          `json:"completedAt"`
	Status      string             `json:"status"`
	Reviews     map[string]string  `json:"reviews,omitempty"`
}

// AnswerFor returns the answer recorded for the question at index i.
func (c CompletedCandidate) AnswerFor(i int) (AnswerRecord, bool) {
	if i < 0 || i >= len(c.Interview.Answers) {
		return AnswerRecord{}, false
	}
	return c.Interview.Answers[i], true
}
