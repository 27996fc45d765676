package client

import (
	"github.com/1xyz/bsclient/beanstalkd/core"
	"github.com/1xyz/bsclient/beanstalkd/proto"
)

// Errors returned by the client. Match them with errors.Is; command errors
// are *Error values carrying the command and the raw status token.
var (
	ErrTimedOut           = core.ErrTimedOut
	ErrDeadlineSoon       = core.ErrDeadlineSoon
	ErrNotFound           = core.ErrNotFound
	ErrBuried             = core.ErrBuried
	ErrJobTooBig          = core.ErrJobTooBig
	ErrNotIgnored         = core.ErrNotIgnored
	ErrDraining           = core.ErrDraining
	ErrExpectedCRLF       = core.ErrExpectedCRLF
	ErrOutOfMemory        = core.ErrOutOfMemory
	ErrInternalError      = core.ErrInternalError
	ErrBadFormat          = core.ErrBadFormat
	ErrUnknownCommand     = core.ErrUnknownCommand
	ErrInvalidTubeName    = core.ErrInvalidTubeName
	ErrUnexpectedResponse = core.ErrUnexpectedResponse
	ErrMalformedResponse  = core.ErrMalformedResponse

	// ErrClosed - the client was closed, or its connection failed earlier
	ErrClosed = proto.ErrClosed

	// ErrTimeout - a command other than a reservation ran past Config.ReadTimeout
	ErrTimeout = proto.ErrTimeout
)

// Error is the error type of a failed command
type Error = core.Error

// ConnError is an i/o failure on the connection, after which the client is closed
type ConnError = proto.ConnError
