package session

import (
	"errors"
	"fmt"

	"github.com/pavelanni/mockinterview/internal/model"
)

var (
	ErrEmptyAnswer = errors.New("answer is empty")
	ErrEmptyValue  = errors.New("value is empty")
	ErrBusy        = errors.New("session is between steps")
	ErrNoSnapshot  = errors.New("no interview to resume")
	ErrClosed      = errors.New("session controller is closed")
)

// StepError is returned when a command is issued in a step that does not
// accept it.
type StepError struct {
	Op   string
	Step model.Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: not allowed in step %q", e.Op, e.Step)
}
