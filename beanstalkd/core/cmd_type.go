package core

import (
	"unicode"
	"unicode/utf8"
)

// CmdType refers to the type of command in beanstalkd context

//go:generate stringer -type=CmdType --output cmd_type_string.go
type CmdType int

const (
	Unknown CmdType = iota
	Bury
	Delete
	Ignore
	Kick
	KickJob
	ListTubeUsed
	ListTubes
	ListTubesWatched
	PauseTube
	Peek
	PeekBuried
	PeekDelayed
	PeekReady
	Put
	Quit
	Release
	Reserve
	ReserveJob
	ReserveWithTimeout
	Stats
	StatsJob
	StatsTube
	Touch
	Use
	Watch
	Max
)

// wire verbs indexed by CmdType
var commandVerbs [Max]string

func init() {
	for c := Unknown + 1; c < Max; c++ {
		commandVerbs[c] = kebabCase(c.String())
	}
}

// Verb returns the command name as sent on the wire, e.g. "reserve-with-timeout"
func (c CmdType) Verb() string {
	if c <= Unknown || c >= Max {
		return "unknown"
	}

	return commandVerbs[c]
}

func kebabCase(s string) string {
	result := make([]byte, 0, len(s))
	for i, ch := range s {
		if unicode.IsUpper(ch) && i > 0 {
			result = append(result, '-')
		}

		ch = unicode.ToLower(ch)
		b := make([]byte, utf8.RuneLen(ch))
		n := utf8.EncodeRune(b, ch)
		result = append(result, b[:n]...)
	}

	return string(result)
}
