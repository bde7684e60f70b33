package main

import (
	"errors"

	"github.com/broady/taskmaster/client"
)

// Exit codes.
const (
	exitSuccess = 0

	// exitUserError covers bad arguments, invalid input and unknown tasks.
	exitUserError = 1

	// exitBackendError covers server, network and listener failures.
	exitBackendError = 3
)

// usageError marks an error the user can fix by changing the command line
// or the config.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &ue), client.IsNotFound(err), client.IsInvalid(err):
		return exitUserError
	}
	return exitBackendError
}
