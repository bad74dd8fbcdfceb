package wizard

import "errors"

var (
	// ErrCannotAdvance is returned when the current step is incomplete or is the last one.
	ErrCannotAdvance = errors.New("cannot advance from this step")

	// ErrAtFirstStep is returned by Retreat on the first step.
	ErrAtFirstStep = errors.New("already at the first step")

	// ErrWrongStep is returned when an operation is not allowed on the current step.
	ErrWrongStep = errors.New("operation not allowed on this step")

	// ErrStepDataMismatch is returned when a payload does not fit the step's slot.
	ErrStepDataMismatch = errors.New("payload does not match step")

	// ErrValidationInProgress is returned while a validation request is outstanding.
	ErrValidationInProgress = errors.New("validation already in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("wizard is closed")
)
