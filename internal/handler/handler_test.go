package handler_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/mockinterview/internal/bank"
	"github.com/pavelanni/mockinterview/internal/handler"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/metrics"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/resume"
	"github.com/pavelanni/mockinterview/internal/session"
	"github.com/pavelanni/mockinterview/internal/session/sessiontest"
	"github.com/pavelanni/mockinterview/internal/store"
)

const (
	pacing = 1500 * time.Millisecond
	info   = time.Second
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type fixedExtractor struct{}

func (fixedExtractor) Extract(ctx context.Context, doc resume.Document) (resume.Extracted, error) {
	return resume.Extracted{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1-555-555-5555", Text: "resume"}, nil
}

type testServer struct {
	srv     *httptest.Server
	ctrl    *session.Controller
	st      *store.Store
	clock   *sessiontest.ManualScheduler
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b, err := bank.Default()
	if err != nil {
		t.Fatalf("bank.Default: %v", err)
	}
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ts := &testServer{
		st:      st,
		clock:   sessiontest.NewManualScheduler(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		metrics: metrics.New(false),
	}
	events := handler.NewEventLog(0)
	ts.ctrl, err = session.New(session.Config{
		Bank:        b,
		Store:       st,
		Extractor:   fixedExtractor{},
		Scheduler:   ts.clock,
		Rand:        rand.New(rand.NewPCG(1, 2)),
		Observers:   []session.Observer{events, ts.metrics},
		PacingDelay: pacing,
		InfoDelay:   info,
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(ts.ctrl.Close)

	h, err := handler.New(handler.Config{
		Controller: ts.ctrl,
		Store:      st,
		Events:     events,
		Metrics:    ts.metrics,
		Now:        ts.clock.Now,
	})
	if err != nil {
		t.Fatalf("handler.New: %v", err)
	}
	ts.srv = httptest.NewServer(h.Router())
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) postJSON(t *testing.T, path string, v any) *http.Response {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return ts.do(t, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

func (ts *testServer) upload(t *testing.T, path, name string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	return ts.do(t, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

var pdfBody = []byte("%PDF-1.4 resume")

// startInterview drives the server to the first question.
func (ts *testServer) startInterview(t *testing.T) {
	t.Helper()
	expectStatus(t, ts.do(t, http.MethodPost, "/api/begin", nil, ""), http.StatusOK)
	resp := ts.upload(t, "/api/upload", "cv.pdf", pdfBody)
	expectStatus(t, resp, http.StatusOK)
	if v := decode[session.View](t, resp); v.Step != model.StepUpload || !v.Busy {
		t.Fatalf("after upload: step=%q busy=%v", v.Step, v.Busy)
	}
	ts.clock.Advance(info)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/healthz", nil, "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string]string](t, resp); got["status"] != "ok" {
		t.Errorf("health = %v", got)
	}
}

func TestFullInterviewOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.startInterview(t)

	v := decode[session.View](t, ts.do(t, http.MethodGet, "/api/state", nil, ""))
	if v.Step != model.StepInterview || v.Question == nil {
		t.Fatalf("state = %q, question = %v", v.Step, v.Question)
	}

	resp := ts.postJSON(t, "/api/answer", map[string]string{"text": "   "})
	expectStatus(t, resp, http.StatusBadRequest)
	if e := decode[errorResponse](t, resp); e.Message != "Please type an answer before submitting." {
		t.Errorf("message = %q", e.Message)
	}

	expectStatus(t, ts.postJSON(t, "/api/draft", map[string]string{"text": "partial"}), http.StatusOK)

	total := len(v.Session.Interview.Questions)
	for i := range total {
		resp := ts.postJSON(t, "/api/answer", map[string]string{"text": "An answer with an example. It covers state. And more."})
		expectStatus(t, resp, http.StatusOK)
		if i == 0 {
			expectStatus(t, ts.postJSON(t, "/api/answer", map[string]string{"text": "too soon"}), http.StatusConflict)
		}
		ts.clock.Advance(pacing)
	}

	v = decode[session.View](t, ts.do(t, http.MethodGet, "/api/state", nil, ""))
	if v.Step != model.StepCompletion || v.Completed == nil {
		t.Fatalf("step = %q, completed = %v", v.Step, v.Completed)
	}
	id := v.Completed.ID

	list := decode[struct {
		Count      int `json:"count"`
		Candidates []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"candidates"`
	}](t, ts.do(t, http.MethodGet, "/api/candidates?search=ada", nil, ""))
	if list.Count != 1 || list.Candidates[0].ID != id || list.Candidates[0].Name != "Ada Lovelace" {
		t.Errorf("candidates = %+v", list)
	}

	resp = ts.do(t, http.MethodGet, "/api/candidates/"+id, nil, "")
	expectStatus(t, resp, http.StatusOK)
	details := decode[struct {
		QuestionCount int `json:"questionCount"`
	}](t, resp)
	if details.QuestionCount != total {
		t.Errorf("question count = %d, want %d", details.QuestionCount, total)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/api/candidates/nobody", nil, ""), http.StatusNotFound)

	resp = ts.do(t, http.MethodGet, "/api/candidates/export.csv", nil, "")
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "interview-results-2026-03-01.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "Name" || rows[1][0] != "Ada Lovelace" {
		t.Errorf("csv rows = %v", rows)
	}

	summary := decode[struct {
		TotalInterviews int `json:"totalInterviews"`
		CompletionRate  int `json:"completionRate"`
	}](t, ts.do(t, http.MethodGet, "/api/dashboard/metrics", nil, ""))
	if summary.TotalInterviews != 1 || summary.CompletionRate != 100 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		file    string
		content []byte
		message string
	}{
		{"wrong type", "/api/upload", "notes.txt", []byte("plain text"), "Please upload a PDF file only."},
		{"wrong type russian", "/api/upload?lang=ru", "notes.txt", []byte("plain text"), "Пожалуйста, загрузите только PDF-файл."},
		{"too large", "/api/upload", "big.pdf", append([]byte("%PDF-1.4 "), make([]byte, resume.MaxSize)...), "File size must be less than 5MB."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			expectStatus(t, ts.do(t, http.MethodPost, "/api/begin", nil, ""), http.StatusOK)

			resp := ts.upload(t, tt.path, tt.file, tt.content)
			expectStatus(t, resp, http.StatusBadRequest)
			if e := decode[errorResponse](t, resp); e.Message != tt.message {
				t.Errorf("message = %q, want %q", e.Message, tt.message)
			}
			if step := ts.ctrl.State().Step; step != model.StepUpload {
				t.Errorf("step = %q, want upload", step)
			}
		})
	}
}

func TestCommandInWrongStep(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, "/api/info", map[string]string{"value": "Ada"})
	expectStatus(t, resp, http.StatusConflict)
	if e := decode[errorResponse](t, resp); e.Message != "That action is not available right now." {
		t.Errorf("message = %q", e.Message)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/resume", nil, ""), http.StatusNotFound)
}

func TestFormEncodedAnswer(t *testing.T) {
	ts := newTestServer(t)
	ts.startInterview(t)

	resp := ts.do(t, http.MethodPost, "/api/answer", strings.NewReader("text=A+form+answer"), "application/x-www-form-urlencoded")
	expectStatus(t, resp, http.StatusOK)
	v := decode[session.View](t, resp)
	if n := len(v.Session.Interview.Answers); n != 1 || v.Session.Interview.Answers[0].Text != "A form answer" {
		t.Errorf("answers = %+v", v.Session.Interview.Answers)
	}
}

func TestResumeOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.startInterview(t)
	expectStatus(t, ts.postJSON(t, "/api/answer", map[string]string{"text": "first"}), http.StatusOK)
	ts.clock.Advance(pacing)
	ts.ctrl.Close()

	// A new controller over the same store picks up the snapshot.
	b, err := bank.Default()
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := session.New(session.Config{Bank: b, Store: ts.st, Scheduler: ts.clock, PacingDelay: pacing, InfoDelay: info})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ctrl.Close)
	offer, err := ctrl.Start()
	if err != nil || offer == nil {
		t.Fatalf("Start = %v, %v", offer, err)
	}
	h, err := handler.New(handler.Config{Controller: ctrl, Store: ts.st, Events: handler.NewEventLog(0)})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/resume", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	v := decode[session.View](t, resp)
	if v.Step != model.StepInterview || v.Session.Interview.CurrentQuestionIndex != 1 {
		t.Errorf("resumed at step %q index %d", v.Step, v.Session.Interview.CurrentQuestionIndex)
	}
	if v.Question == nil || v.Remaining != v.Question.TimeLimit {
		t.Errorf("remaining = %d, question = %v", v.Remaining, v.Question)
	}
}

func TestEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.startInterview(t)

	resp := ts.do(t, http.MethodGet, "/api/events?since=0", nil, "")
	expectStatus(t, resp, http.StatusOK)
	got := decode[struct {
		Events []handler.EventEntry `json:"events"`
		Last   uint64               `json:"last"`
	}](t, resp)
	if len(got.Events) == 0 || got.Last != got.Events[len(got.Events)-1].Seq {
		t.Fatalf("events = %+v", got)
	}
	var loaded *handler.EventEntry
	for i := range got.Events {
		if got.Events[i].Kind == session.EventQuestionLoaded {
			loaded = &got.Events[i]
		}
	}
	if loaded == nil || !strings.HasPrefix(loaded.Message, "Question 1 of ") {
		t.Errorf("question loaded event = %+v", loaded)
	}

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/events?since=%d", got.Last), nil, "")
	after := decode[struct {
		Events []handler.EventEntry `json:"events"`
	}](t, resp)
	if len(after.Events) != 0 {
		t.Errorf("expected no new events, got %d", len(after.Events))
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/api/events?since=abc", nil, ""), http.StatusBadRequest)
}

func TestEventLogCapacity(t *testing.T) {
	l := handler.NewEventLog(2)
	for range 3 {
		l.Notify(session.Event{Kind: session.EventTick})
	}
	entries, last := l.Since(0)
	if last != 3 || len(entries) != 2 || entries[0].Seq != 2 {
		t.Errorf("entries = %+v, last = %d", entries, last)
	}
}

func TestDashboardBadQuery(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/candidates?sort=phone", nil, ""), http.StatusBadRequest)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/begin", nil, ""), http.StatusOK)

	resp := ts.do(t, http.MethodGet, "/metrics", nil, "")
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	want := `mockinterview_http_requests_total{method="POST",route="/api/begin",status="200"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}
}

func TestDashboardPages(t *testing.T) {
	ts := newTestServer(t)
	done := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, c := range []struct {
		id, name string
		score    int
	}{{"c1", "Jane Smith", 92}, {"c2", "Alex Brown", 35}} {
		err := ts.st.AppendCompleted(model.CompletedCandidate{
			Candidate: model.Candidate{ID: c.id, Name: c.name, Email: c.id + "@example.com"},
			Interview: model.CompletedInterview{
				Interview: model.Interview{
					Questions: []model.Question{{ID: "js_e1", Text: "What is a closure?", Difficulty: model.DifficultyEasy, TimeLimit: 60}},
					Answers:   []model.AnswerRecord{{QuestionID: "js_e1", Text: "scope", TimeSpent: 30, Score: c.score, Feedback: "ok"}},
				},
				FinalScore: c.score,
			},
			CompletedAt: done,
			Status:      model.StatusCompleted,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	resp := ts.do(t, http.MethodGet, "/dashboard?score=excellent", nil, "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Jane Smith") || strings.Contains(string(body), "Alex Brown") {
		t.Errorf("filtered page = %s", body)
	}

	resp = ts.do(t, http.MethodGet, "/dashboard/candidates/c2", nil, "")
	expectStatus(t, resp, http.StatusOK)
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "What is a closure?") || !strings.Contains(string(body), "Alex Brown") {
		t.Errorf("detail page = %s", body)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/dashboard/candidates/nope", nil, ""), http.StatusNotFound)
	expectStatus(t, ts.do(t, http.MethodGet, "/dashboard?order=sideways", nil, ""), http.StatusBadRequest)
}
