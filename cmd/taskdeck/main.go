package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Session completed (or was saved/discarded)
	ExitSessionFailed = 1 // The runner reported the session as failed
	ExitError         = 2 // Configuration or runtime error
)

// SessionFailedError indicates the session ran but ended with
// reason=failed.
type SessionFailedError struct {
	Message string
}

func (e *SessionFailedError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var sessionErr *SessionFailedError
		if errors.As(err, &sessionErr) {
			os.Exit(ExitSessionFailed)
		}

		os.Exit(ExitError)
	}
}
