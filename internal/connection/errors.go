package connection

import (
	"errors"
	"strings"
)

// ErrValidationRequired is matched by every *ValidationRequiredError.
var ErrValidationRequired = errors.New("validation required")

// ValidationRequiredError explains why a draft cannot become a Connection yet.
type ValidationRequiredError struct {
	Reasons []string
}

func (e *ValidationRequiredError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrValidationRequired.Error()
	}
	return ErrValidationRequired.Error() + ": " + strings.Join(e.Reasons, ", ")
}

// Is lets errors.Is(err, ErrValidationRequired) match.
func (e *ValidationRequiredError) Is(target error) bool {
	return target == ErrValidationRequired
}
