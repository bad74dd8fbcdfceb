package prompt

import "errors"

var (
	// ErrAborted is returned when the user declines to continue.
	ErrAborted = errors.New("wizard aborted")

	// ErrValidationFailed is returned when validation fails and the user does not retry.
	ErrValidationFailed = errors.New("credential validation failed")

	errNameRequired   = errors.New("connection name is required")
	errRegionRequired = errors.New("region is required")
	errKeyRequired    = errors.New("access key ID is required")
	errSecretRequired = errors.New("secret access key is required")
)
