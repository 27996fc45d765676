package core

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Command is a single request, ready to be written to a connection
type Command struct {
	CmdType CmdType

	// Args are written space separated after the verb
	Args []string

	// Body is the job data, only set for a put
	Body []byte
}

func (c Command) String() string {
	return fmt.Sprintf("CmdType: %v Args:%v BodySize:%d",
		c.CmdType, c.Args, len(c.Body))
}

// HasBody reports whether a job body follows the command line
func (c *Command) HasBody() bool {
	return c.CmdType == Put
}

// Encode returns the exact wire form of this command:
// "verb arg1 ... argN\r\n" optionally followed by "body\r\n"
func (c *Command) Encode() []byte {
	var buf bytes.Buffer
	size := len(c.CmdType.Verb()) + len(crlf)
	for _, a := range c.Args {
		size += len(a) + 1
	}
	if c.HasBody() {
		size += len(c.Body) + len(crlf)
	}
	buf.Grow(size)

	buf.WriteString(c.CmdType.Verb())
	for _, a := range c.Args {
		buf.WriteByte(' ')
		buf.WriteString(a)
	}
	buf.Write(crlf)

	if c.HasBody() {
		buf.Write(c.Body)
		buf.Write(crlf)
	}

	return buf.Bytes()
}

func newCommand(t CmdType, args ...string) *Command {
	return &Command{CmdType: t, Args: args}
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func u32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

func secs(d time.Duration) string {
	return u64(Seconds(d))
}

// put <pri> <delay> <ttr> <bytes>\r\n<data>\r\n
func NewPut(body []byte, pri uint32, delay, ttr time.Duration) *Command {
	c := newCommand(Put, u32(pri), secs(delay), secs(ttr), strconv.Itoa(len(body)))
	c.Body = body
	return c
}

// use <tube>\r\n
func NewUse(tube string) *Command {
	return newCommand(Use, tube)
}

// reserve\r\n
func NewReserve() *Command {
	return newCommand(Reserve)
}

// reserve-with-timeout <seconds>\r\n
func NewReserveWithTimeout(timeout time.Duration) *Command {
	return newCommand(ReserveWithTimeout, secs(timeout))
}

// reserve-job <id>\r\n
func NewReserveJob(id uint64) *Command {
	return newCommand(ReserveJob, u64(id))
}

// delete <id>\r\n
func NewDelete(id uint64) *Command {
	return newCommand(Delete, u64(id))
}

// release <id> <pri> <delay>\r\n
func NewRelease(id uint64, pri uint32, delay time.Duration) *Command {
	return newCommand(Release, u64(id), u32(pri), secs(delay))
}

// bury <id> <pri>\r\n
func NewBury(id uint64, pri uint32) *Command {
	return newCommand(Bury, u64(id), u32(pri))
}

// touch <id>\r\n
func NewTouch(id uint64) *Command {
	return newCommand(Touch, u64(id))
}

// watch <tube>\r\n
func NewWatch(tube string) *Command {
	return newCommand(Watch, tube)
}

// ignore <tube>\r\n
func NewIgnore(tube string) *Command {
	return newCommand(Ignore, tube)
}

// peek <id>\r\n
func NewPeek(id uint64) *Command {
	return newCommand(Peek, u64(id))
}

func NewPeekReady() *Command {
	return newCommand(PeekReady)
}

func NewPeekDelayed() *Command {
	return newCommand(PeekDelayed)
}

func NewPeekBuried() *Command {
	return newCommand(PeekBuried)
}

// kick <bound>\r\n
func NewKick(bound int) *Command {
	if bound < 0 {
		bound = 0
	}
	return newCommand(Kick, strconv.Itoa(bound))
}

// kick-job <id>\r\n
func NewKickJob(id uint64) *Command {
	return newCommand(KickJob, u64(id))
}

func NewStats() *Command {
	return newCommand(Stats)
}

// stats-job <id>\r\n
func NewStatsJob(id uint64) *Command {
	return newCommand(StatsJob, u64(id))
}

// stats-tube <tube>\r\n
func NewStatsTube(tube string) *Command {
	return newCommand(StatsTube, tube)
}

func NewListTubes() *Command {
	return newCommand(ListTubes)
}

func NewListTubeUsed() *Command {
	return newCommand(ListTubeUsed)
}

func NewListTubesWatched() *Command {
	return newCommand(ListTubesWatched)
}

// pause-tube <tube> <delay>\r\n
func NewPauseTube(tube string, delay time.Duration) *Command {
	return newCommand(PauseTube, tube, secs(delay))
}

// quit\r\n
func NewQuit() *Command {
	return newCommand(Quit)
}
