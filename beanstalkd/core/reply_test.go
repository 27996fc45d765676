package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resp(status string, fields ...string) *Response {
	return &Response{Status: status, Fields: fields}
}

func TestMapResponse_Success(t *testing.T) {
	var entries = []struct {
		cmd  CmdType
		resp *Response
		out  *Result
		msg  string
	}{
		{Put, resp("INSERTED", "42"), &Result{ID: 42},
			"expect put to return the new job id"},
		{Use, resp("USING", "emails"), &Result{Tube: "emails"},
			"expect use to return the tube"},
		{Reserve, &Response{Status: "RESERVED", Fields: []string{"5", "3"}, Body: []byte("abc")},
			&Result{ID: 5, Body: []byte("abc")},
			"expect reserve to return id and body"},
		{ReserveWithTimeout, &Response{Status: "RESERVED", Fields: []string{"5", "0"}, Body: []byte{}},
			&Result{ID: 5, Body: []byte{}},
			"expect reserve-with-timeout to return id and an empty body"},
		{ReserveJob, &Response{Status: "RESERVED", Fields: []string{"8", "1"}, Body: []byte("x")},
			&Result{ID: 8, Body: []byte("x")},
			"expect reserve-job to return id and body"},
		{Delete, resp("DELETED"), &Result{}, "expect delete"},
		{Release, resp("RELEASED"), &Result{}, "expect release"},
		{Bury, resp("BURIED"), &Result{}, "expect BURIED to be a success for bury"},
		{Touch, resp("TOUCHED"), &Result{}, "expect touch"},
		{Watch, resp("WATCHING", "2"), &Result{Count: 2}, "expect watch count"},
		{Ignore, resp("WATCHING", "1"), &Result{Count: 1}, "expect ignore count"},
		{Peek, &Response{Status: "FOUND", Fields: []string{"1", "2"}, Body: []byte("hi")},
			&Result{ID: 1, Body: []byte("hi")}, "expect peek"},
		{Kick, resp("KICKED", "3"), &Result{Count: 3}, "expect kick count"},
		{KickJob, resp("KICKED"), &Result{}, "expect kick-job"},
		{Stats, &Response{Status: "OK", Fields: []string{"4"}, Body: []byte("---\n")},
			&Result{Body: []byte("---\n")}, "expect stats data"},
		{ListTubeUsed, resp("USING", "foo"), &Result{Tube: "foo"}, "expect list-tube-used"},
		{PauseTube, resp("PAUSED"), &Result{}, "expect pause-tube"},
	}

	for _, e := range entries {
		res, err := MapResponse(e.cmd, e.resp)
		assert.Nilf(t, err, e.msg)
		assert.Equalf(t, e.out, res, e.msg)
	}
}

func TestMapResponse_Errors(t *testing.T) {
	var entries = []struct {
		cmd  CmdType
		resp *Response
		err  error
		msg  string
	}{
		{Put, resp("JOB_TOO_BIG"), ErrJobTooBig, "expect job too big"},
		{Put, resp("EXPECTED_CRLF"), ErrExpectedCRLF, "expect expected crlf"},
		{Put, resp("DRAINING"), ErrDraining, "expect draining"},
		{Put, resp("OUT_OF_MEMORY"), ErrOutOfMemory, "expect out of memory for any command"},
		{Reserve, resp("DEADLINE_SOON"), ErrDeadlineSoon, "expect deadline soon"},
		{ReserveWithTimeout, resp("TIMED_OUT"), ErrTimedOut, "expect timed out"},
		{ReserveJob, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{Delete, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{Release, resp("BURIED"), ErrBuried, "expect BURIED to be an error for release"},
		{Release, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{Bury, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{Touch, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{Ignore, resp("NOT_IGNORED"), ErrNotIgnored, "expect not ignored"},
		{PeekReady, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{StatsJob, resp("NOT_FOUND"), ErrNotFound, "expect not found"},
		{Watch, resp("BAD_FORMAT"), ErrBadFormat, "expect bad format"},
		{Use, resp("UNKNOWN_COMMAND"), ErrUnknownCommand, "expect unknown command"},
		{Touch, resp("INTERNAL_ERROR"), ErrInternalError, "expect internal error"},
	}

	for _, e := range entries {
		res, err := MapResponse(e.cmd, e.resp)
		assert.Nilf(t, res, e.msg)
		assert.Truef(t, errors.Is(err, e.err), "%s: got %v", e.msg, err)

		var cmdErr *Error
		if assert.Truef(t, errors.As(err, &cmdErr), e.msg) {
			assert.Equalf(t, e.cmd, cmdErr.Cmd, e.msg)
			assert.Equalf(t, e.resp.Status, cmdErr.Status, e.msg)
		}
	}
}

func TestMapResponse_PutBuried(t *testing.T) {
	res, err := MapResponse(Put, resp("BURIED", "77"))
	assert.Truef(t, errors.Is(err, ErrBuried), "expect ErrBuried")
	assert.Equalf(t, uint64(77), res.ID, "expect the id of the buried job")

	var cmdErr *Error
	assert.Truef(t, errors.As(err, &cmdErr), "expect *Error")
	assert.Equalf(t, uint64(77), cmdErr.ID, "expect the error to carry the job id")
	assert.Equalf(t, "put: buried", err.Error(), "expect error message")
}

func TestMapResponse_ProtocolErrors(t *testing.T) {
	var entries = []struct {
		cmd  CmdType
		resp *Response
		err  error
		msg  string
	}{
		{Delete, resp("TOUCHED"), ErrUnexpectedResponse,
			"a status from another command is never a success"},
		{Put, resp("WHAT"), ErrUnexpectedResponse,
			"an unknown status is never a success"},
		{Bury, resp("NOT_IGNORED"), ErrUnexpectedResponse,
			"a known error status for another command is unexpected"},
		{Watch, resp("TIMED_OUT"), ErrUnexpectedResponse,
			"timed out only applies to reservations"},
		{Quit, resp("DELETED"), ErrUnexpectedResponse,
			"quit has no reply"},
		{Put, resp("INSERTED", "abc"), ErrMalformedResponse,
			"a non-numeric id is malformed"},
		{Put, resp("INSERTED"), ErrMalformedResponse,
			"a missing id is malformed"},
		{Delete, resp("DELETED", "1"), ErrMalformedResponse,
			"extra fields are malformed"},
		{Watch, resp("WATCHING", "-1"), ErrMalformedResponse,
			"a negative count is malformed"},
	}

	for _, e := range entries {
		_, err := MapResponse(e.cmd, e.resp)
		assert.Truef(t, errors.Is(err, e.err), "%s: got %v", e.msg, err)
		assert.Truef(t, IsProtocolError(err), e.msg)
	}
}

func TestMapResponse_ErrorMessage(t *testing.T) {
	_, err := MapResponse(ReserveWithTimeout, resp("TIMED_OUT"))
	assert.Equalf(t, "reserve-with-timeout: timed out", err.Error(), "expect message")

	_, err = MapResponse(Delete, resp("FLYING"))
	assert.Equalf(t, `delete: unexpected response "FLYING"`, err.Error(), "expect the raw status")
}

func TestReplies_CoverEveryCommand(t *testing.T) {
	for c := Unknown + 1; c < Max; c++ {
		if c == Quit {
			continue
		}

		_, ok := replies[c]
		assert.Truef(t, ok, "expect a reply table for %v", c)
	}
}
