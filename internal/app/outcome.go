package app

import (
	"errors"
	"fmt"

	"relief-go/internal/relief"
	"relief-go/internal/report"
)

// Level classifies an Outcome for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Outcome is the user-facing result of one command. Outcomes are printed and
// never stored.
type Outcome struct {
	Operation string
	Level     Level
	Message   string
}

// NewOutcome creates a successful outcome for the named operation.
func NewOutcome(operation string) *Outcome {
	return &Outcome{
		Operation: operation,
		Level:     LevelSuccess,
	}
}

// Record sets the outcome from the error an operation returned. A nil error
// keeps success with the given message. Persistence warnings and empty
// reports are warnings; anything else is an error.
func (o *Outcome) Record(err error, success string) *Outcome {
	switch {
	case err == nil:
		o.Level, o.Message = LevelSuccess, success
	case relief.IsWarning(err):
		o.Level = LevelWarning
		o.Message = fmt.Sprintf("%s, but the change was not saved: %v", success, err)
	case errors.Is(err, report.ErrNothingToReport):
		o.Level, o.Message = LevelWarning, err.Error()
	default:
		o.Level, o.Message = LevelError, err.Error()
	}
	return o
}

// Failed reports whether the operation did not take effect.
func (o *Outcome) Failed() bool {
	return o.Level == LevelError
}

func (o *Outcome) String() string {
	if o.Level == LevelSuccess {
		return o.Message
	}
	return fmt.Sprintf("%s: %s", o.Level, o.Message)
}
