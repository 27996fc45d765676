package core

import (
	"time"
)

const (
	// Max. length of a tube name in bytes
	MaxTubeNameBytes = 200

	// Default tube name
	DefaultTubeName = "default"

	// Max. delay, ttr or timeout accepted by the server, in seconds
	MaxDurationSeconds = (1 << 32) - 1
)

// delimiter for commands, responses and job bodies
var crlf = []byte("\r\n")

// Status tokens sent by the server as the first word of a response line
const (
	StatusInserted     = "INSERTED"
	StatusBuried       = "BURIED"
	StatusExpectedCRLF = "EXPECTED_CRLF"
	StatusJobTooBig    = "JOB_TOO_BIG"
	StatusDraining     = "DRAINING"
	StatusUsing        = "USING"
	StatusReserved     = "RESERVED"
	StatusDeadlineSoon = "DEADLINE_SOON"
	StatusTimedOut     = "TIMED_OUT"
	StatusDeleted      = "DELETED"
	StatusNotFound     = "NOT_FOUND"
	StatusReleased     = "RELEASED"
	StatusTouched      = "TOUCHED"
	StatusWatching     = "WATCHING"
	StatusNotIgnored   = "NOT_IGNORED"
	StatusFound        = "FOUND"
	StatusKicked       = "KICKED"
	StatusOK           = "OK"
	StatusPaused       = "PAUSED"

	// The server cannot allocate enough memory for the job.
	StatusOutOfMemory = "OUT_OF_MEMORY"

	// Indicative of a bug in the server.
	StatusInternalError = "INTERNAL_ERROR"

	// The command line was not well-formed. This can happen if the line's
	// length exceeds 224 bytes including \r\n, if the name of a tube
	// exceeds 200 bytes, if non-numeric characters occur where an integer
	// is expected, or if the wrong number of arguments are present.
	StatusBadFormat = "BAD_FORMAT"

	// The server does not know the command.
	StatusUnknownCommand = "UNKNOWN_COMMAND"
)

// Seconds truncates d to whole seconds for the wire. Negative durations
// are sent as zero and the result is capped at MaxDurationSeconds.
func Seconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}

	s := uint64(d / time.Second)
	if s > MaxDurationSeconds {
		return MaxDurationSeconds
	}

	return s
}
