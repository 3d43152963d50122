package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/mockinterview/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(t *testing.T, answered int) model.Session {
	t.Helper()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := []model.Question{
		{ID: "q1", Text: "One", Difficulty: model.DifficultyEasy, TimeLimit: 30, ExpectedKeywords: []string{"a"}},
		{ID: "q2", Text: "Two", Difficulty: model.DifficultyMedium, TimeLimit: 60},
		{ID: "q3", Text: "Three", Difficulty: model.DifficultyHard, TimeLimit: 90},
	}
	var answers []model.AnswerRecord
	for i := 0; i < answered; i++ {
		answers = append(answers, model.AnswerRecord{QuestionID: qs[i].ID, Text: "answer", TimeSpent: 5, Score: 40 + i, Feedback: "ok"})
	}
	return model.Session{
		Candidate: model.Candidate{ID: "candidate_1", Name: "Ada", Email: "ada@example.com"},
		Interview: model.Interview{
			Questions:            qs,
			Answers:              answers,
			CurrentQuestionIndex: answered,
			StartTime:            &start,
		},
		CurrentStep: model.StepInterview,
	}
}

func completed(id string, score int, at time.Time) model.CompletedCandidate {
	return model.CompletedCandidate{
		Candidate: model.Candidate{ID: id, Name: "Name " + id, Email: id + "@example.com", Phone: "555"},
		Interview: model.CompletedInterview{
			Interview: model.Interview{
				Questions:            []model.Question{{ID: "q1", Text: "One", Difficulty: model.DifficultyEasy, TimeLimit: 30}},
				Answers:              []model.AnswerRecord{{QuestionID: "q1", Text: "x", Score: score}},
				CurrentQuestionIndex: 1,
			},
			FinalScore: score,
		},
		CompletedAt: at,
		Status:      model.StatusCompleted,
	}
}

func TestKeyValue(t *testing.T) {
	s := newTestStore(t)

	// Missing key.
	v, ok, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Fatalf("expected missing key, got %q ok=%v", v, ok)
	}

	if err := s.Set("k", "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("k", "two"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err = s.Get("k")
	if err != nil || !ok || v != "two" {
		t.Fatalf("expected two, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("expected key to be gone")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no snapshot, got %+v", got)
	}

	want := testSession(t, 2)
	if err := s.SaveSnapshot(want); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err = s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot")
	}
	if got.Interview.CurrentQuestionIndex != 2 || len(got.Interview.Answers) != 2 {
		t.Errorf("index/answers = %d/%d, want 2/2", got.Interview.CurrentQuestionIndex, len(got.Interview.Answers))
	}
	if got.Candidate.Email != "ada@example.com" {
		t.Errorf("candidate email = %q", got.Candidate.Email)
	}
	if !got.Interview.StartTime.Equal(*want.Interview.StartTime) {
		t.Errorf("start time = %v, want %v", got.Interview.StartTime, want.Interview.StartTime)
	}
	if got.Interview.Questions[0].ExpectedKeywords[0] != "a" {
		t.Errorf("keywords not preserved: %+v", got.Interview.Questions[0])
	}

	// Save overwrites.
	if err := s.SaveSnapshot(testSession(t, 3)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, _ = s.LoadSnapshot()
	if got.Interview.CurrentQuestionIndex != 3 {
		t.Errorf("expected overwritten snapshot at index 3, got %d", got.Interview.CurrentQuestionIndex)
	}

	if err := s.DeleteSnapshot(); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if got, _ := s.LoadSnapshot(); got != nil {
		t.Error("expected snapshot to be deleted")
	}
}

func TestSnapshotJSONKeys(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(testSession(t, 1)); err != nil {
		t.Fatal(err)
	}
	raw, _, err := s.Get(KeyCurrentInterview)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"candidate"`, `"interview"`, `"currentQuestionIndex"`, `"infoCollection"`, `"missingFields"`, `"currentStep"`, `"isTimeout"`} {
		if !strings.Contains(raw, key) {
			t.Errorf("snapshot JSON missing %s: %s", key, raw)
		}
	}
}

func TestCorruptSnapshotDiscarded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json"},
		{"index past answers", `{"interview":{"questions":[{"id":"q1"}],"answers":[],"currentQuestionIndex":1},"currentStep":"interview"}`},
		{"no questions", `{"interview":{"questions":[],"answers":[],"currentQuestionIndex":0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			if err := s.Set(KeyCurrentInterview, tt.raw); err != nil {
				t.Fatal(err)
			}
			got, err := s.LoadSnapshot()
			if err != nil {
				t.Fatalf("LoadSnapshot: %v", err)
			}
			if got != nil {
				t.Fatalf("expected corrupt snapshot to be discarded, got %+v", got)
			}
			if _, ok, _ := s.Get(KeyCurrentInterview); ok {
				t.Error("corrupt snapshot still stored")
			}
		})
	}
}

func TestCompletedCandidates(t *testing.T) {
	s := newTestStore(t)

	list, err := s.ListCompleted()
	if err != nil {
		t.Fatalf("ListCompleted empty: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []model.CompletedCandidate{
		completed("b", 70, base.Add(time.Hour)),
		completed("a", 50, base),
		completed("c", 90, base.Add(2*time.Hour)),
	} {
		if err := s.AppendCompleted(c); err != nil {
			t.Fatalf("AppendCompleted %d: %v", i, err)
		}
	}

	list, err = s.ListCompleted()
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	var ids []string
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Errorf("expected newest first [c b a], got %v", ids)
	}

	n, err := s.CompletedCount()
	if err != nil || n != 3 {
		t.Errorf("CompletedCount = %d, %v", n, err)
	}

	got, err := s.GetCompleted("b")
	if err != nil {
		t.Fatalf("GetCompleted: %v", err)
	}
	if got.Interview.FinalScore != 70 || got.Status != model.StatusCompleted {
		t.Errorf("unexpected record: %+v", got)
	}
	if _, err := s.GetCompleted("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCorruptCandidatesList(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set(KeyCandidates, "[{"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ListCompleted(); err == nil {
		t.Error("expected decode error")
	}
	if err := s.AppendCompleted(completed("a", 1, time.Now())); err == nil {
		t.Error("expected append to refuse a corrupt list")
	}
	raw, _, _ := s.Get(KeyCandidates)
	if raw != "[{" {
		t.Errorf("corrupt list was overwritten: %q", raw)
	}
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SaveSnapshot(testSession(t, 1)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.LoadSnapshot()
	if err != nil || got == nil {
		t.Fatalf("expected snapshot after reopen, got %v, %v", got, err)
	}
}

func TestBuildExport(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := completed("a", 81, base)
	c.Reviews = map[string]string{"q1": "Mentions the key idea."}
	if err := s.AppendCompleted(c); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendCompleted(completed("b", 40, base.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListCompleted()
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	out := BuildExport(list, base.Add(time.Hour))
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
	if out.Average != 61 {
		t.Errorf("average = %d, want 61", out.Average)
	}
	if out.Results[0].ID != "b" || out.Results[0].Category != "Poor" {
		t.Errorf("first result = %+v", out.Results[0])
	}
	r := out.Results[1]
	if r.Category != "Good" {
		t.Errorf("category = %q, want Good", r.Category)
	}
	if len(r.Questions) != 1 || r.Questions[0].Review != "Mentions the key idea." || r.Questions[0].Score != 81 {
		t.Errorf("question result = %+v", r.Questions)
	}

	empty := BuildExport(nil, base)
	if empty.Count != 0 || empty.Average != 0 || empty.Results == nil {
		t.Errorf("empty export = %+v", empty)
	}
}
