package core

import (
	"errors"
	"fmt"
)

var (
	// ErrTimedOut - a reservation request timed out before a job was available
	ErrTimedOut = errors.New("timed out")

	// ErrDeadlineSoon - a job reserved by this client is in its last second of ttr
	ErrDeadlineSoon = errors.New("deadline soon")

	// ErrNotFound - the job does not exist or is not reserved by this client,
	// or the tube does not exist
	ErrNotFound = errors.New("not found")

	// ErrBuried - the job was buried. After a put or release, the server ran
	// out of memory trying to grow its priority queue data structure
	ErrBuried = errors.New("buried")

	// ErrJobTooBig - the job body is larger than the max-job-size
	ErrJobTooBig = errors.New("job too big")

	// ErrNotIgnored - the client attempted to ignore the only tube in its watch list
	ErrNotIgnored = errors.New("not ignored")

	// ErrDraining - the server is in drain mode and is no longer accepting new jobs
	ErrDraining = errors.New("draining")

	// ErrExpectedCRLF - the job body was not followed by a \r\n
	ErrExpectedCRLF = errors.New("expected crlf")

	// ErrOutOfMemory - the server cannot allocate enough memory for the job
	ErrOutOfMemory = errors.New("out of memory")

	// ErrInternalError - indicative of a bug in the server
	ErrInternalError = errors.New("internal error")

	// ErrBadFormat - the server rejected a command line as not well-formed
	ErrBadFormat = errors.New("bad format")

	// ErrUnknownCommand - the server does not know the command
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidTubeName - the tube name is empty, too long or has characters
	// the server does not accept. Raised before a command is sent
	ErrInvalidTubeName = errors.New("invalid tube name")

	// ErrUnexpectedResponse - the status is not one the issued command can return
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrMalformedResponse - the response could not be parsed
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is returned for every command that did not succeed: it records the
// command attempted and the raw status token received (empty if the error
// was raised locally)
type Error struct {
	// Command attempted
	Cmd CmdType

	// Raw status token from the server
	Status string

	// Job id carried by the response, if any. A put answered with
	// BURIED <id> stored the job under this id
	ID uint64

	// Err is one of the ErrXXX values in this package
	Err error
}

func (e *Error) Error() string {
	if e.Status != "" && errors.Is(e.Err, ErrUnexpectedResponse) {
		return fmt.Sprintf("%s: %v %q", e.Cmd.Verb(), e.Err, e.Status)
	}

	return fmt.Sprintf("%s: %v", e.Cmd.Verb(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns an *Error for a condition detected without a server response
func NewError(cmd CmdType, err error) *Error {
	return &Error{Cmd: cmd, Err: err}
}

// IsProtocolError reports whether err signals a protocol mismatch or a
// corrupt exchange, after which the connection cannot be trusted
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrUnexpectedResponse) || errors.Is(err, ErrMalformedResponse)
}
