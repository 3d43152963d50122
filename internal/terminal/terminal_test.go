package terminal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/mockinterview/internal/bank"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/resume"
	"github.com/pavelanni/mockinterview/internal/session"
	"github.com/pavelanni/mockinterview/internal/store"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type nameOnly struct{}

func (nameOnly) Extract(ctx context.Context, doc resume.Document) (resume.Extracted, error) {
	return resume.Extracted{Name: "Ada Lovelace", Text: "resume"}, nil
}

// syncBuffer guards output written from scheduler goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newController(t *testing.T, st *store.Store) *session.Controller {
	t.Helper()
	b, err := bank.Default()
	if err != nil {
		t.Fatal(err)
	}
	c, err := session.New(session.Config{
		Bank:      b,
		Store:     st,
		Extractor: nameOnly{},
		// Zero delays let the real scheduler advance immediately.
		PacingDelay: 0,
		InfoDelay:   0,
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, c *session.Controller, input string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out := &syncBuffer{}
	d := New(c, strings.NewReader(input), out, "en")
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func TestFullInterview(t *testing.T) {
	st := newStore(t)
	c := newController(t, st)

	txt := writeFile(t, "notes.txt", []byte("just text"))
	pdf := writeFile(t, "cv.pdf", []byte("%PDF-1.4 resume"))

	var in strings.Builder
	fmt.Fprintf(&in, "%s\n%s\n", txt, pdf)
	in.WriteString("   \nada@example.com\n+1-555-123-4567\n")
	in.WriteString("\n") // empty answer is rejected
	for i := range 6 {
		fmt.Fprintf(&in, "Answer %d covers the state model.\nFor example, a second line.\n\n", i+1)
	}
	in.WriteString("n\n")

	out := run(t, c, in.String())

	for _, want := range []string{
		"Please upload a PDF file only.",
		"Resume cv.pdf processed.",
		"Please enter a value.",
		"What is your email address?",
		"What is your phone number?",
		"Please type an answer before submitting.",
		"Question 1 of 6",
		"Question 6 of 6",
		"Feedback: ",
		"Interview complete! Your final score is",
		"Start another interview? [y/N]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	list, err := st.ListCompleted()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("completed = %d, want 1", len(list))
	}
	got := list[0]
	if got.Email != "ada@example.com" || got.Phone != "+1-555-123-4567" {
		t.Errorf("identity = %+v", got.Candidate)
	}
	if a := got.Interview.Answers[0].Text; a != "Answer 1 covers the state model.\nFor example, a second line." {
		t.Errorf("first answer = %q", a)
	}
}

func TestResumeSavedInterview(t *testing.T) {
	st := newStore(t)
	b, err := bank.Default()
	if err != nil {
		t.Fatal(err)
	}
	qs := b.QuestionsForTier(model.DifficultyEasy)[:2]
	start := time.Now()
	snap := model.Session{
		Candidate: model.Candidate{ID: "candidate_1", Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1"},
		Interview: model.Interview{
			Questions:            qs,
			Answers:              []model.AnswerRecord{{QuestionID: qs[0].ID, Text: "first", Score: 40}},
			CurrentQuestionIndex: 1,
			StartTime:            &start,
		},
		CurrentStep: model.StepInterview,
	}
	if err := st.SaveSnapshot(snap); err != nil {
		t.Fatal(err)
	}

	c := newController(t, st)
	out := run(t, c, "y\nThe second answer.\n\nn\n")

	for _, want := range []string{
		"Welcome back, Ada Lovelace! You answered 1 of 2 questions.",
		"Resuming at question 2 of 2.",
		"Question 2 of 2",
		"Interview complete!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if snap, err := st.LoadSnapshot(); err != nil || snap != nil {
		t.Errorf("snapshot after completion = %v, %v", snap, err)
	}
	if n, _ := st.CompletedCount(); n != 1 {
		t.Errorf("completed = %d, want 1", n)
	}
}

func TestInputClosed(t *testing.T) {
	c := newController(t, newStore(t))
	d := New(c, strings.NewReader(""), &syncBuffer{}, "en")
	if err := d.Run(context.Background()); err != ErrInputClosed {
		t.Errorf("Run = %v, want ErrInputClosed", err)
	}
}
