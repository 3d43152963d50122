// Package terminal runs an interview session on a text console.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/resume"
	"github.com/pavelanni/mockinterview/internal/session"
)

// ErrInputClosed is returned when input ends while the driver waits for it.
var ErrInputClosed = errors.New("input closed")

// Driver reads commands from in and prints localized session events to out.
type Driver struct {
	ctrl *session.Controller
	in   io.Reader
	loc  context.Context

	outMu sync.Mutex
	out   io.Writer

	lines   chan string
	changed chan struct{}
}

// New creates a driver and subscribes it to the controller's events.
// Messages are localized for lang.
func New(ctrl *session.Controller, in io.Reader, out io.Writer, lang string) *Driver {
	d := &Driver{
		ctrl:    ctrl,
		in:      in,
		out:     out,
		loc:     appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang)),
		changed: make(chan struct{}, 1),
	}
	ctrl.Subscribe(session.ObserverFunc(d.notify))
	return d
}

// Run drives interviews until the candidate declines another one, the
// input ends or ctx is canceled.
func (d *Driver) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.lines = make(chan string)
	go d.readLines(ctx)

	d.println(appI18n.T(d.loc, "AppTitle"))

	offer, err := d.ctrl.Start()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if offer != nil {
		yes, err := d.confirm(ctx, "PromptResume")
		if err != nil {
			return err
		}
		if yes {
			if err := d.ctrl.Resume(); err != nil {
				return fmt.Errorf("resume: %w", err)
			}
		}
	}

	for {
		if err := d.runOnce(ctx); err != nil {
			return err
		}
		yes, err := d.confirm(ctx, "PromptAgain")
		if err != nil || !yes {
			return err
		}
		if err := d.ctrl.StartNew(); err != nil {
			return fmt.Errorf("start new interview: %w", err)
		}
	}
}

// runOnce carries the session from its current step to completion.
func (d *Driver) runOnce(ctx context.Context) error {
	for {
		v, err := d.waitReady(ctx)
		if err != nil {
			return err
		}
		switch v.Step {
		case model.StepWelcome:
			d.println(appI18n.T(d.loc, "Welcome"))
			if err := d.ctrl.Begin(); err != nil {
				return fmt.Errorf("begin: %w", err)
			}
		case model.StepUpload:
			if err := d.upload(ctx); err != nil {
				return err
			}
		case model.StepInfo:
			if err := d.info(ctx); err != nil {
				return err
			}
		case model.StepInterview:
			if err := d.answer(ctx, v.Session.Interview.CurrentQuestionIndex); err != nil {
				return err
			}
		case model.StepCompletion:
			return nil
		}
	}
}

func (d *Driver) upload(ctx context.Context) error {
	d.println(appI18n.T(d.loc, "PromptResumePath"))
	line, err := d.readLine(ctx)
	if err != nil {
		return err
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		d.println(err.Error())
		return nil
	}
	defer f.Close()

	doc, err := resume.Read(filepath.Base(path), "", f)
	if err != nil {
		d.println(err.Error())
		return nil
	}
	d.println(appI18n.T(d.loc, session.MsgProcessingResume))
	err = d.ctrl.Upload(ctx, doc)
	var ve *resume.ValidationError
	if errors.As(err, &ve) {
		// The rejection event has already been printed.
		return nil
	}
	return err
}

func (d *Driver) info(ctx context.Context) error {
	line, err := d.readLine(ctx)
	if err != nil {
		return err
	}
	err = d.ctrl.SubmitInfo(line)
	if errors.Is(err, session.ErrEmptyValue) {
		d.println(appI18n.T(d.loc, "ErrEmptyValue"))
		return nil
	}
	return err
}

// answer collects lines for question idx until an empty line, keeping the
// controller's draft current. It returns early when the timer moves the
// session on.
func (d *Driver) answer(ctx context.Context, idx int) error {
	d.println(appI18n.T(d.loc, "PromptAnswer"))
	var buf []string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.changed:
			if !d.onQuestion(idx) {
				return nil
			}
		case line, ok := <-d.lines:
			if !ok {
				return ErrInputClosed
			}
			if !d.onQuestion(idx) {
				return nil
			}
			if strings.TrimSpace(line) != "" {
				buf = append(buf, line)
				if err := d.ctrl.UpdateDraft(strings.Join(buf, "\n")); err != nil && !isRace(err) {
					return err
				}
				continue
			}
			err := d.ctrl.SubmitAnswer(strings.Join(buf, "\n"))
			switch {
			case errors.Is(err, session.ErrEmptyAnswer):
				d.println(appI18n.T(d.loc, "ErrEmptyAnswer"))
				buf = nil
			case err == nil || isRace(err):
				return nil
			default:
				return err
			}
		}
	}
}

func (d *Driver) onQuestion(idx int) bool {
	v := d.ctrl.State()
	return v.Step == model.StepInterview && !v.Busy && v.Session.Interview.CurrentQuestionIndex == idx
}

// isRace reports errors caused by the timer submitting first.
func isRace(err error) bool {
	var se *session.StepError
	return errors.Is(err, session.ErrBusy) || errors.As(err, &se)
}

func (d *Driver) confirm(ctx context.Context, promptID string) (bool, error) {
	d.println(appI18n.T(d.loc, promptID))
	line, err := d.readLine(ctx)
	if err != nil {
		if errors.Is(err, ErrInputClosed) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true, nil
	}
	return false, nil
}

// waitReady blocks until the controller is not between steps.
func (d *Driver) waitReady(ctx context.Context) (session.View, error) {
	for {
		v := d.ctrl.State()
		if !v.Busy {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return session.View{}, ctx.Err()
		case <-d.changed:
		}
	}
}

func (d *Driver) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-d.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	}
}

func (d *Driver) readLines(ctx context.Context) {
	defer close(d.lines)
	sc := bufio.NewScanner(d.in)
	for sc.Scan() {
		select {
		case d.lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

func (d *Driver) println(s string) {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	fmt.Fprintln(d.out, s)
}
