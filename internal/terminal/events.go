package terminal

import (
	"fmt"

	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/session"
)

// notify prints ev and wakes the driver loop. It runs with the controller
// locked and never calls back into it.
func (d *Driver) notify(ev session.Event) {
	d.print(ev)
	select {
	case d.changed <- struct{}{}:
	default:
	}
}

func (d *Driver) print(ev session.Event) {
	switch ev.Kind {
	case session.EventStepChanged, session.EventInterviewStarted:
		return
	case session.EventQuestionLoaded:
		q := ev.Question
		d.println("")
		d.println(appI18n.Td(d.loc, ev.MessageID, ev.Data))
		if q != nil {
			d.println(fmt.Sprintf("[%s] %s", q.Difficulty, q.Category))
			d.println(q.Text)
		}
		d.println(appI18n.Tp(d.loc, "SecondsLeft", ev.Remaining))
	case session.EventTick:
		if ev.Remaining == 10 || (ev.Remaining > 0 && ev.Remaining <= 5) {
			d.println(appI18n.Tp(d.loc, "SecondsLeft", ev.Remaining))
		}
	case session.EventAnswerScored:
		d.println(appI18n.Td(d.loc, ev.MessageID, ev.Data))
		if ev.Answer != nil {
			d.println(appI18n.Td(d.loc, "Feedback", map[string]any{"Feedback": ev.Answer.Feedback}))
		}
	case session.EventInterviewCompleted:
		d.println("")
		d.println(appI18n.Td(d.loc, session.MsgInterviewComplete, ev.Data))
		d.println(appI18n.T(d.loc, ev.MessageID))
		if n, ok := ev.Data["Strong"].(int); ok {
			d.println(appI18n.Tp(d.loc, "StrongAnswers", n))
		}
		if n, ok := ev.Data["Minutes"].(int); ok {
			d.println(appI18n.Tp(d.loc, "TotalMinutes", n))
		}
		if ev.Completed != nil {
			for _, q := range ev.Completed.Interview.Questions {
				if r := ev.Completed.Reviews[q.ID]; r != "" {
					d.println(fmt.Sprintf("%s: %s", q.ID, r))
				}
			}
		}
	case session.EventError:
		if ev.MessageID != "" {
			d.println(appI18n.T(d.loc, ev.MessageID))
		} else if msg, ok := ev.Data["Error"].(string); ok {
			d.println(msg)
		}
	default:
		if ev.MessageID != "" {
			d.println(appI18n.Td(d.loc, ev.MessageID, ev.Data))
		}
	}
}
