package session

import "github.com/pavelanni/mockinterview/internal/model"

// EventKind identifies what happened in the session.
type EventKind string

const (
	EventStepChanged        EventKind = "step_changed"
	EventUploadRejected     EventKind = "upload_rejected"
	EventResumeProcessed    EventKind = "resume_processed"
	EventInfoPrompt         EventKind = "info_prompt"
	EventInterviewStarted   EventKind = "interview_started"
	EventQuestionLoaded     EventKind = "question_loaded"
	EventTick               EventKind = "timer_tick"
	EventTimeUp             EventKind = "time_up"
	EventAnswerScored       EventKind = "answer_scored"
	EventReviewing          EventKind = "reviewing"
	EventInterviewCompleted EventKind = "interview_completed"
	EventResumeOffered      EventKind = "resume_offered"
	EventResumed            EventKind = "resumed"
	EventError              EventKind = "error"
)

// Message IDs of the localized text attached to events.
const (
	MsgProcessingResume   = "ProcessingResume"
	MsgResumeProcessed    = "ResumeProcessed"
	MsgInfoIntro          = "InfoIntro"
	MsgAskName            = "AskName"
	MsgAskEmail           = "AskEmail"
	MsgAskPhone           = "AskPhone"
	MsgInfoComplete       = "InfoComplete"
	MsgQuestionProgress   = "QuestionProgress"
	MsgTimeUp             = "TimeUp"
	MsgAnswerScored       = "AnswerScored"
	MsgReviewingAnswers   = "ReviewingAnswers"
	MsgInterviewComplete  = "InterviewComplete"
	MsgResumePrompt       = "ResumePrompt"
	MsgResumed            = "Resumed"
	MsgErrInvalidFileType = "ErrInvalidFileType"
	MsgErrFileTooLarge    = "ErrFileTooLarge"
	MsgErrSaveFailed      = "ErrSaveFailed"
)

var askMessages = map[model.Field]string{
	model.FieldName:  MsgAskName,
	model.FieldEmail: MsgAskEmail,
	model.FieldPhone: MsgAskPhone,
}

// Event is a notification from the controller to its observers. MessageID
// and Data describe the user-facing text so each presentation can localize it.
type Event struct {
	Kind      EventKind                 `json:"kind"`
	Step      model.Step                `json:"step"`
	MessageID string                    `json:"messageId,omitempty"`
	Data      map[string]any            `json:"data,omitempty"`
	Remaining int                       `json:"remaining,omitempty"`
	Question  *model.Question           `json:"question,omitempty"`
	Answer    *model.AnswerRecord       `json:"answer,omitempty"`
	Completed *model.CompletedCandidate `json:"completed,omitempty"`
}

// Observer receives session events. Notify is called with the controller
// locked, so observers must not call back into the controller.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(ev Event) { f(ev) }
