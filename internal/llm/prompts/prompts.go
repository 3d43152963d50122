package prompts

import (
	"bytes"
	"embed"
	"errors"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/mockinterview/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	candidateAnswerRegex    = regexp.MustCompile(`(?i)</?\s*candidate-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxAnswerRunes = 10000

// Variant selects the tone of the review prompt.
type Variant string

const (
	VariantStrict   Variant = "strict"
	VariantStandard Variant = "standard"
	VariantLenient  Variant = "lenient"
)

var validVariants = map[Variant]bool{
	VariantStrict:   true,
	VariantStandard: true,
	VariantLenient:  true,
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.txt"))

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// ReviewData holds template data for review prompts.
type ReviewData struct {
	QuestionText string
	Category     string
	Difficulty   string
	Keywords     string
	TimeLimit    int
	TimeSpent    int
	TimedOut     bool
	Answer       string
}

// BuildReviewPrompt renders the review prompt for one answer.
func BuildReviewPrompt(v Variant, q model.Question, a model.AnswerRecord) (string, error) {
	if !validVariants[v] {
		return "", errors.New("invalid prompt variant: " + string(v))
	}

	answer := a.Text
	if answer == model.NoAnswerText {
		answer = ""
	}
	data := ReviewData{
		QuestionText: q.Text,
		Category:     q.Category,
		Difficulty:   string(q.Difficulty),
		Keywords:     strings.Join(q.ExpectedKeywords, ", "),
		TimeLimit:    q.TimeLimit,
		TimeSpent:    a.TimeSpent,
		TimedOut:     a.IsTimeout,
		Answer:       sanitizeAnswer(answer),
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "review_"+string(v)+".txt", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeAnswer(answer string) string {
	answer = candidateAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "[No answer provided]"
	}

	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerRunes]) + "\n\n[Answer truncated due to length]"
	}
	return answer
}
