package session

import (
	"errors"
	"fmt"
)

// ErrConfirmationRequired is returned by ChangeDirection when the switch
// would throw away answered questions and the caller did not confirm it.
var ErrConfirmationRequired = errors.New("direction change restarts the session and needs confirmation")

// ErrInvalidChoice is returned by SubmitAnswer in multiple-choice mode when
// the answer names none of the options. The question stays unlocked.
var ErrInvalidChoice = errors.New("answer does not name an option")

// InsufficientDataError indicates the pool is too small for the mode.
type InsufficientDataError struct {
	Mode Mode
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough words for %s quiz: have %d, need %d", e.Mode, e.Have, e.Need)
}

// FetchError indicates a collaborator failed while the session was loading.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError indicates the result of a finished session could not be
// stored. The session itself stays finished.
type PersistError struct {
	SessionID string
	Err       error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("record result of session %s: %v", e.SessionID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// InvalidTransitionError indicates an operation was called in a phase that
// does not allow it.
type InvalidTransitionError struct {
	Op    string
	Phase Phase
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.Phase)
}
