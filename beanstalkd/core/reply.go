package core

import (
	"fmt"
	"strconv"
)

// Result is the payload of a successful (or buried) response
type Result struct {
	// job id of INSERTED, BURIED <id>, RESERVED or FOUND
	ID uint64

	// job body of RESERVED or FOUND, yaml data of OK
	Body []byte

	// count of WATCHING or KICKED <count>
	Count int

	// tube name of USING
	Tube string
}

// payload describes which fields a status line carries
type payload int

const (
	payloadNone  payload = iota
	payloadID            // <id>
	payloadJob           // <id> <bytes> followed by the body
	payloadCount         // <count>
	payloadTube          // <tube>
	payloadData          // <bytes> followed by the body
)

// expected field count per payload kind
var payloadFields = [...]int{
	payloadNone:  0,
	payloadID:    1,
	payloadJob:   2,
	payloadCount: 1,
	payloadTube:  1,
	payloadData:  1,
}

type reply struct {
	payload payload

	// nil for a successful reply
	err error
}

type replyTable map[string]reply

// replies every command may receive
var commonReplies = replyTable{
	StatusOutOfMemory:    {payloadNone, ErrOutOfMemory},
	StatusInternalError:  {payloadNone, ErrInternalError},
	StatusBadFormat:      {payloadNone, ErrBadFormat},
	StatusUnknownCommand: {payloadNone, ErrUnknownCommand},
}

var (
	notFound    = reply{payloadNone, ErrNotFound}
	foundJob    = replyTable{StatusFound: {payloadJob, nil}, StatusNotFound: notFound}
	okData      = replyTable{StatusOK: {payloadData, nil}}
	okDataOrNot = replyTable{StatusOK: {payloadData, nil}, StatusNotFound: notFound}
)

// replies maps each command to the statuses it may receive. A status that
// is neither here nor in commonReplies is a protocol error.
var replies = map[CmdType]replyTable{
	Put: {
		StatusInserted:     {payloadID, nil},
		StatusBuried:       {payloadID, ErrBuried},
		StatusExpectedCRLF: {payloadNone, ErrExpectedCRLF},
		StatusJobTooBig:    {payloadNone, ErrJobTooBig},
		StatusDraining:     {payloadNone, ErrDraining},
	},
	Use: {
		StatusUsing: {payloadTube, nil},
	},
	Reserve: {
		StatusReserved:     {payloadJob, nil},
		StatusDeadlineSoon: {payloadNone, ErrDeadlineSoon},
		StatusTimedOut:     {payloadNone, ErrTimedOut},
	},
	ReserveWithTimeout: {
		StatusReserved:     {payloadJob, nil},
		StatusDeadlineSoon: {payloadNone, ErrDeadlineSoon},
		StatusTimedOut:     {payloadNone, ErrTimedOut},
	},
	ReserveJob: {
		StatusReserved: {payloadJob, nil},
		StatusNotFound: notFound,
	},
	Delete: {
		StatusDeleted:  {payloadNone, nil},
		StatusNotFound: notFound,
	},
	Release: {
		StatusReleased: {payloadNone, nil},
		StatusBuried:   {payloadNone, ErrBuried},
		StatusNotFound: notFound,
	},
	Bury: {
		StatusBuried:   {payloadNone, nil},
		StatusNotFound: notFound,
	},
	Touch: {
		StatusTouched:  {payloadNone, nil},
		StatusNotFound: notFound,
	},
	Watch: {
		StatusWatching: {payloadCount, nil},
	},
	Ignore: {
		StatusWatching:   {payloadCount, nil},
		StatusNotIgnored: {payloadNone, ErrNotIgnored},
	},
	Peek:        foundJob,
	PeekReady:   foundJob,
	PeekDelayed: foundJob,
	PeekBuried:  foundJob,
	Kick: {
		StatusKicked: {payloadCount, nil},
	},
	KickJob: {
		StatusKicked:   {payloadNone, nil},
		StatusNotFound: notFound,
	},
	Stats:            okData,
	StatsJob:         okDataOrNot,
	StatsTube:        okDataOrNot,
	ListTubes:        okData,
	ListTubesWatched: okData,
	ListTubeUsed: {
		StatusUsing: {payloadTube, nil},
	},
	PauseTube: {
		StatusPaused:   {payloadNone, nil},
		StatusNotFound: notFound,
	},
}

// lookupReply finds how cmd interprets status
func lookupReply(cmd CmdType, status string) (reply, bool) {
	table, ok := replies[cmd]
	if !ok {
		return reply{}, false
	}

	if r, ok := table[status]; ok {
		return r, true
	}

	r, ok := commonReplies[status]
	return r, ok
}

// MapResponse translates the response to cmd into its payload or into an
// *Error wrapping one of the ErrXXX values. Statuses the command cannot
// return are ErrUnexpectedResponse, never a silent success.
//
// A non-nil Result may accompany an error: a put answered with BURIED <id>
// returns the id of the stored job along with ErrBuried.
func MapResponse(cmd CmdType, resp *Response) (*Result, error) {
	r, ok := lookupReply(cmd, resp.Status)
	if !ok {
		return nil, &Error{Cmd: cmd, Status: resp.Status, Err: ErrUnexpectedResponse}
	}

	res, err := extract(r.payload, resp)
	if err != nil {
		return nil, &Error{Cmd: cmd, Status: resp.Status, Err: err}
	}

	if r.err != nil {
		cmdErr := &Error{Cmd: cmd, Status: resp.Status, ID: res.ID, Err: r.err}
		if r.payload == payloadNone {
			return nil, cmdErr
		}

		return res, cmdErr
	}

	return res, nil
}

func extract(p payload, resp *Response) (*Result, error) {
	if len(resp.Fields) != payloadFields[p] {
		return nil, fmt.Errorf("%d fields for %s: %w", len(resp.Fields), resp.Status, ErrMalformedResponse)
	}

	res := &Result{}
	var err error
	switch p {
	case payloadID:
		res.ID, err = parseID(resp.Fields[0])
	case payloadJob:
		res.ID, err = parseID(resp.Fields[0])
		res.Body = resp.Body
	case payloadCount:
		res.Count, err = parseCount(resp.Fields[0])
	case payloadTube:
		res.Tube = resp.Fields[0]
	case payloadData:
		res.Body = resp.Body
	}

	if err != nil {
		return nil, err
	}

	return res, nil
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("job id %q: %w", s, ErrMalformedResponse)
	}

	return id, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", s, ErrMalformedResponse)
	}

	return int(n), nil
}
