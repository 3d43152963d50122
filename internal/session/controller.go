// Package session drives one interview through its steps: welcome, resume
// upload, identity collection, the timed question loop and completion.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/mockinterview/internal/bank"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/resume"
	"github.com/pavelanni/mockinterview/internal/scoring"
)

// Default delays.
const (
	DefaultPacingDelay   = 1500 * time.Millisecond
	DefaultInfoDelay     = time.Second
	DefaultReviewTimeout = 30 * time.Second

	tickInterval = time.Second
)

// Gateway persists the in-progress snapshot and completed interviews.
type Gateway interface {
	SaveSnapshot(model.Snapshot) error
	LoadSnapshot() (*model.Snapshot, error)
	DeleteSnapshot() error
	AppendCompleted(model.CompletedCandidate) error
}

// Reviewer produces an advisory comment on an answer. Comments are stored
// alongside the result and never change the score.
type Reviewer interface {
	Review(ctx context.Context, q model.Question, a model.AnswerRecord) (string, error)
}

// Config wires the controller's collaborators. Bank and Store are required.
type Config struct {
	Bank      *bank.Bank
	Store     Gateway
	Extractor resume.Extractor
	Reviewer  Reviewer
	Scheduler Scheduler
	Rand      *rand.Rand
	Logger    *slog.Logger
	Observers []Observer

	TierCounts    bank.TierCounts
	PacingDelay   time.Duration
	InfoDelay     time.Duration
	ReviewTimeout time.Duration

	// NewID generates candidate IDs.
	NewID func() string
}

// Offer describes a saved interview that can be resumed.
type Offer struct {
	Candidate model.Candidate `json:"candidate"`
	Answered  int             `json:"answered"`
	Total     int             `json:"total"`
	StartTime *time.Time      `json:"startTime,omitempty"`
}

// View is a read-only copy of the controller state.
type View struct {
	Step      model.Step                `json:"step"`
	Session   model.Session             `json:"session"`
	Question  *model.Question           `json:"question,omitempty"`
	Remaining int                       `json:"remaining"`
	Busy      bool                      `json:"busy"`
	Draft     string                    `json:"draft,omitempty"`
	Offer     *Offer                    `json:"offer,omitempty"`
	Completed *model.CompletedCandidate `json:"completed,omitempty"`
}

// Controller is the interview state machine. Commands and scheduled
// callbacks are serialized by a mutex. Every scheduled callback carries the
// generation it was created in and is dropped if the generation has moved on.
type Controller struct {
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	sess      model.Session
	draft     string
	remaining int
	busy      bool
	countdown Timer
	pending   Timer
	gen       uint64
	offer     *model.Session
	last      *model.CompletedCandidate
	closed    bool

	// ctx is cancelled by Close and bounds reviews still in flight.
	ctx  context.Context
	stop context.CancelFunc
}

func New(cfg Config) (*Controller, error) {
	if cfg.Bank == nil {
		return nil, errors.New("question bank is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.TierCounts == nil {
		cfg.TierCounts = bank.DefaultTierCounts
	}
	if err := cfg.Bank.Check(cfg.TierCounts); err != nil {
		return nil, fmt.Errorf("question selection: %w", err)
	}
	if cfg.PacingDelay < 0 || cfg.InfoDelay < 0 {
		return nil, errors.New("delays must not be negative")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = resume.NewMockExtractor(nil)
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.ReviewTimeout <= 0 {
		cfg.ReviewTimeout = DefaultReviewTimeout
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return "candidate_" + uuid.NewString() }
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Controller{
		cfg:  cfg,
		log:  log,
		sess: model.Session{CurrentStep: model.StepWelcome},
		ctx:  ctx,
		stop: stop,
	}, nil
}

// Subscribe adds an observer.
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Observers = append(c.cfg.Observers, o)
}

// Start checks storage for an interview left in progress. A snapshot with
// unanswered questions is returned as an offer to resume. A snapshot whose
// questions are all answered is finalized. With a reviewer configured the
// result is stored once the review finishes.
func (c *Controller) Start() (*Offer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.sess.CurrentStep != model.StepWelcome {
		return nil, &StepError{Op: "start", Step: c.sess.CurrentStep}
	}

	snap, err := c.cfg.Store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, nil
	}

	switch {
	case snap.Answered():
		c.log.Info("finalizing interview left unfinished", "candidate", snap.Candidate.ID)
		c.sess = *snap
		c.sess.CurrentStep = model.StepInterview
		c.finalize()
		return nil, nil
	case snap.Resumable():
		c.offer = snap
		o := offerFrom(snap)
		c.emit(Event{
			Kind:      EventResumeOffered,
			MessageID: MsgResumePrompt,
			Data:      map[string]any{"Name": o.Candidate.Name, "Answered": o.Answered, "Total": o.Total},
		})
		return &o, nil
	}
	return nil, nil
}

// PendingResume returns the current resume offer, if any.
func (c *Controller) PendingResume() *Offer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offer == nil {
		return nil
	}
	o := offerFrom(c.offer)
	return &o
}

// Begin moves from the welcome screen to the upload step. A pending resume
// offer is declined and its snapshot deleted.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("begin", model.StepWelcome); err != nil {
		return err
	}
	if c.offer != nil {
		c.offer = nil
		c.deleteSnapshot()
	}
	c.setStep(model.StepUpload)
	return nil
}

// Upload validates the resume and extracts the candidate identity. After
// the info delay the session moves to info collection, or straight to the
// interview when nothing is missing.
func (c *Controller) Upload(ctx context.Context, doc resume.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("upload", model.StepUpload); err != nil {
		return err
	}

	if err := resume.Validate(doc); err != nil {
		var ve *resume.ValidationError
		if errors.As(err, &ve) {
			c.emit(Event{
				Kind:      EventUploadRejected,
				MessageID: rejectMessage(ve.Code),
				Data:      map[string]any{"Code": ve.Code, "File": doc.Name},
			})
		}
		return err
	}

	ext, err := c.cfg.Extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract resume: %w", err)
	}

	cand := model.Candidate{
		ID:         c.cfg.NewID(),
		Name:       strings.TrimSpace(ext.Name),
		Email:      strings.TrimSpace(ext.Email),
		Phone:      strings.TrimSpace(ext.Phone),
		ResumeFile: doc.Name,
		ResumeText: ext.Text,
	}
	missing := cand.MissingFields()
	c.sess.Candidate = cand
	c.sess.InfoCollection = model.InfoCollection{MissingFields: missing}
	if len(missing) > 0 {
		c.sess.InfoCollection.Step = missing[0]
	}

	c.log.Info("resume accepted", "candidate", cand.ID, "file", doc.Name, "missing", len(missing))
	c.busy = true
	c.emit(Event{
		Kind:      EventResumeProcessed,
		MessageID: MsgResumeProcessed,
		Data:      map[string]any{"File": doc.Name, "Missing": len(missing)},
	})
	c.after(c.cfg.InfoDelay, func() {
		c.busy = false
		if len(missing) > 0 {
			c.enterInfo()
			return
		}
		c.enterInterview()
	})
	return nil
}

// SubmitInfo stores the trimmed value for the field being asked and moves
// to the next missing field. After the last one the interview starts.
func (c *Controller) SubmitInfo(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("submit info", model.StepInfo); err != nil {
		return err
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return ErrEmptyValue
	}

	ic := &c.sess.InfoCollection
	c.sess.Candidate.Set(ic.Step, v)

	if i := slices.Index(ic.MissingFields, ic.Step); i >= 0 && i+1 < len(ic.MissingFields) {
		ic.Step = ic.MissingFields[i+1]
		c.askField()
		return nil
	}

	c.busy = true
	c.emit(Event{Kind: EventInfoPrompt, MessageID: MsgInfoComplete})
	c.after(c.cfg.InfoDelay, func() {
		c.busy = false
		c.enterInterview()
	})
	return nil
}

// UpdateDraft buffers the answer being typed. It is submitted if the timer
// runs out.
func (c *Controller) UpdateDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("update draft", model.StepInterview); err != nil {
		return err
	}
	c.draft = text
	return nil
}

// SubmitAnswer scores the answer to the current question. Empty answers are
// rejected without changing state.
func (c *Controller) SubmitAnswer(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("submit answer", model.StepInterview); err != nil {
		return err
	}
	t := strings.TrimSpace(text)
	if t == "" {
		return ErrEmptyAnswer
	}
	c.submit(t, false)
	return nil
}

// Resume restores the offered snapshot and reopens its current question
// with a full timer.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("resume", model.StepWelcome); err != nil {
		return err
	}
	if c.offer == nil {
		return ErrNoSnapshot
	}

	c.cancelTimers()
	c.sess = *c.offer
	c.offer = nil
	c.setStep(model.StepInterview)

	iv := c.sess.Interview
	c.log.Info("interview resumed", "candidate", c.sess.Candidate.ID, "index", iv.CurrentQuestionIndex, "total", len(iv.Questions))
	c.emit(Event{
		Kind:      EventResumed,
		MessageID: MsgResumed,
		Data:      map[string]any{"Current": iv.CurrentQuestionIndex + 1, "Total": len(iv.Questions)},
	})
	c.loadQuestion()
	return nil
}

// StartNew cancels all timers, deletes the saved snapshot and returns to
// the welcome step. It is valid in every step.
func (c *Controller) StartNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.cancelTimers()
	err := c.cfg.Store.DeleteSnapshot()
	if err != nil {
		c.log.Error("failed to delete interview snapshot", "error", err)
		err = fmt.Errorf("delete snapshot: %w", err)
	}

	c.offer = nil
	c.last = nil
	c.draft = ""
	c.remaining = 0
	c.busy = false
	c.sess = model.Session{}
	c.setStep(model.StepWelcome)
	return err
}

// State returns a copy of the current state.
func (c *Controller) State() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Step:      c.sess.CurrentStep,
		Session:   c.sess.Clone(),
		Remaining: c.remaining,
		Busy:      c.busy,
		Draft:     c.draft,
	}
	if c.sess.CurrentStep == model.StepInterview {
		if q, ok := c.sess.CurrentQuestion(); ok {
			v.Question = &q
		}
	}
	if c.offer != nil {
		o := offerFrom(c.offer)
		v.Offer = &o
	}
	if c.last != nil {
		last := *c.last
		v.Completed = &last
	}
	return v
}

// Close stops all timers. The saved snapshot is kept so the interview can
// be resumed by the next process.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimers()
	c.closed = true
	c.stop()
}

func (c *Controller) guard(op string, step model.Step) error {
	if c.closed {
		return ErrClosed
	}
	if c.sess.CurrentStep != step {
		return &StepError{Op: op, Step: c.sess.CurrentStep}
	}
	if c.busy {
		return ErrBusy
	}
	return nil
}

func (c *Controller) enterInfo() {
	c.setStep(model.StepInfo)
	c.emit(Event{Kind: EventInfoPrompt, MessageID: MsgInfoIntro})
	c.askField()
}

func (c *Controller) askField() {
	f := c.sess.InfoCollection.Step
	c.emit(Event{
		Kind:      EventInfoPrompt,
		MessageID: askMessages[f],
		Data:      map[string]any{"Field": string(f)},
	})
}

func (c *Controller) enterInterview() {
	qs, err := c.cfg.Bank.Select(c.cfg.Rand, c.cfg.TierCounts)
	if err != nil {
		// Counts are checked in New, so this only fires if the bank changed.
		c.log.Error("failed to select questions", "error", err)
		c.emit(Event{Kind: EventError, Data: map[string]any{"Error": err.Error()}})
		return
	}

	now := c.cfg.Scheduler.Now()
	c.sess.Interview = model.Interview{
		Questions: qs,
		Answers:   []model.AnswerRecord{},
		StartTime: &now,
	}
	c.setStep(model.StepInterview)
	c.log.Info("interview started", "candidate", c.sess.Candidate.ID, "questions", len(qs))
	c.emit(Event{Kind: EventInterviewStarted, Data: map[string]any{"Total": len(qs)}})
	c.save()
	c.loadQuestion()
}

func (c *Controller) loadQuestion() {
	q, ok := c.sess.CurrentQuestion()
	if !ok {
		return
	}
	c.draft = ""
	c.remaining = q.TimeLimit
	c.emit(Event{
		Kind:      EventQuestionLoaded,
		MessageID: MsgQuestionProgress,
		Question:  &q,
		Remaining: c.remaining,
		Data: map[string]any{
			"Current": c.sess.Interview.CurrentQuestionIndex + 1,
			"Total":   len(c.sess.Interview.Questions),
		},
	})
	c.startCountdown()
}

func (c *Controller) startCountdown() {
	gen := c.gen
	c.countdown = c.cfg.Scheduler.AfterFunc(tickInterval, func() { c.tick(gen) })
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.closed || c.busy || c.sess.CurrentStep != model.StepInterview {
		return
	}

	c.remaining--
	c.emit(Event{Kind: EventTick, Remaining: c.remaining})
	if c.remaining > 0 {
		c.startCountdown()
		return
	}
	c.countdown = nil
	c.emit(Event{Kind: EventTimeUp, MessageID: MsgTimeUp})
	c.submit(c.draft, true)
}

func (c *Controller) submit(text string, timedOut bool) {
	q, ok := c.sess.CurrentQuestion()
	if !ok {
		return
	}
	c.cancelTimers()

	spent := min(max(q.TimeLimit-c.remaining, 0), q.TimeLimit)
	text = strings.TrimSpace(text)
	res := scoring.Score(q, c.cfg.Bank.Bands(q.Difficulty), text, spent, timedOut)

	rec := model.AnswerRecord{
		QuestionID: q.ID,
		Text:       text,
		TimeSpent:  spent,
		Score:      res.Score,
		Feedback:   res.Feedback,
		IsTimeout:  timedOut,
	}
	if rec.Text == "" {
		rec.Text = model.NoAnswerText
	}

	iv := &c.sess.Interview
	iv.Answers = append(iv.Answers, rec)
	iv.CurrentQuestionIndex++
	c.draft = ""
	c.busy = true
	c.save()

	c.log.Info("answer scored", "question", q.ID, "score", rec.Score, "timeout", timedOut, "time_spent", spent)
	c.emit(Event{
		Kind:      EventAnswerScored,
		MessageID: MsgAnswerScored,
		Question:  &q,
		Answer:    &rec,
		Data:      map[string]any{"Score": rec.Score, "Current": iv.CurrentQuestionIndex, "Total": len(iv.Questions)},
	})

	c.after(c.cfg.PacingDelay, func() {
		if c.sess.Resumable() {
			c.busy = false
			c.loadQuestion()
			return
		}
		c.finalize()
	})
}

// finalize computes the final score. Without a reviewer the result is
// stored at once. Otherwise the answers are reviewed off the lock and the
// session stays busy until the result is stored.
func (c *Controller) finalize() {
	c.cancelTimers()

	final, err := scoring.FinalScore(c.sess.Interview.Answers)
	if err != nil {
		c.log.Error("failed to compute final score", "candidate", c.sess.Candidate.ID, "error", err)
		c.emit(Event{Kind: EventError, Data: map[string]any{"Error": err.Error()}})
		return
	}

	now := c.cfg.Scheduler.Now()
	c.sess.Interview.EndTime = &now
	snap := c.sess.Clone()

	rec := model.CompletedCandidate{
		Candidate:   snap.Candidate,
		Interview:   model.CompletedInterview{Interview: snap.Interview, FinalScore: final},
		CompletedAt: now,
		Status:      model.StatusCompleted,
	}
	if c.cfg.Reviewer == nil {
		c.complete(rec)
		return
	}

	c.busy = true
	c.emit(Event{Kind: EventReviewing, MessageID: MsgReviewingAnswers, Data: map[string]any{"Total": len(rec.Interview.Answers)}})
	gen := c.gen
	c.cfg.Scheduler.AfterFunc(0, func() {
		reviews := c.review(rec.Interview.Interview)

		c.mu.Lock()
		defer c.mu.Unlock()
		rec.Reviews = reviews
		switch {
		case c.closed:
			// The snapshot is kept and finalized again on the next start.
			return
		case gen != c.gen:
			// The candidate moved on. The interview is still finished, so
			// store it without touching the new session or its snapshot.
			if err := c.cfg.Store.AppendCompleted(rec); err != nil {
				c.log.Error("failed to store completed interview", "candidate", rec.ID, "error", err)
			}
			return
		}
		c.complete(rec)
	})
}

// complete stores the result and moves to the completion step.
func (c *Controller) complete(rec model.CompletedCandidate) {
	// The snapshot is only removed once the result is stored, so a failed
	// write is finalized again on the next start.
	if err := c.cfg.Store.AppendCompleted(rec); err != nil {
		c.log.Error("failed to store completed interview", "candidate", rec.ID, "error", err)
		c.emit(Event{Kind: EventError, MessageID: MsgErrSaveFailed})
	} else {
		c.deleteSnapshot()
	}

	c.last = &rec
	c.busy = false
	c.setStep(model.StepCompletion)

	final := rec.Interview.FinalScore
	strong := 0
	for _, a := range rec.Interview.Answers {
		if scoring.Strong(a) {
			strong++
		}
	}
	minutes := 0
	if start, end := rec.Interview.StartTime, rec.Interview.EndTime; start != nil && end != nil {
		minutes = int(math.Round(end.Sub(*start).Minutes()))
	}
	c.log.Info("interview completed", "candidate", rec.ID, "final_score", final, "reviews", len(rec.Reviews))
	c.emit(Event{
		Kind:      EventInterviewCompleted,
		MessageID: scoring.Performance(final),
		Completed: &rec,
		Data: map[string]any{
			"Score":   final,
			"Strong":  strong,
			"Total":   len(rec.Interview.Answers),
			"Minutes": minutes,
		},
	})
}

// review runs without the controller lock.
func (c *Controller) review(iv model.Interview) map[string]string {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.ReviewTimeout)
	defer cancel()

	out := make(map[string]string)
	for i, a := range iv.Answers {
		q := iv.Questions[i]
		text, err := c.cfg.Reviewer.Review(ctx, q, a)
		if err != nil {
			c.log.Warn("answer review failed", "question", q.ID, "error", err)
			continue
		}
		if text != "" {
			out[q.ID] = text
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// after runs f with the controller locked once d has elapsed, unless the
// generation changes first.
func (c *Controller) after(d time.Duration, f func()) {
	gen := c.gen
	c.pending = c.cfg.Scheduler.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || c.closed {
			return
		}
		c.pending = nil
		f()
	})
}

func (c *Controller) cancelTimers() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.gen++
}

func (c *Controller) save() {
	if err := c.cfg.Store.SaveSnapshot(c.sess.Clone()); err != nil {
		c.log.Error("failed to save interview snapshot", "candidate", c.sess.Candidate.ID, "error", err)
		c.emit(Event{Kind: EventError, MessageID: MsgErrSaveFailed})
	}
}

func (c *Controller) deleteSnapshot() {
	if err := c.cfg.Store.DeleteSnapshot(); err != nil {
		c.log.Error("failed to delete interview snapshot", "error", err)
	}
}

func (c *Controller) setStep(s model.Step) {
	c.sess.CurrentStep = s
	c.emit(Event{Kind: EventStepChanged})
}

func (c *Controller) emit(ev Event) {
	ev.Step = c.sess.CurrentStep
	for _, o := range c.cfg.Observers {
		o.Notify(ev)
	}
}

func offerFrom(s *model.Session) Offer {
	return Offer{
		Candidate: s.Candidate,
		Answered:  len(s.Interview.Answers),
		Total:     len(s.Interview.Questions),
		StartTime: s.Interview.StartTime,
	}
}

func rejectMessage(code string) string {
	if code == resume.CodeTooLarge {
		return MsgErrFileTooLarge
	}
	return MsgErrInvalidFileType
}
