package proto

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// Max. line size in bytes, inclusive of the 2 byte delimiter.
	// The longest reply is "USING <tube>" with a 200 byte tube name.
	MaxLineBytes = 224

	// The size of a read buffer
	readBufferSizeBytes = 4 * 1024
)

var delim = []byte("\r\n")

var (
	// ErrClosed - the connection was closed, explicitly or after an i/o failure
	ErrClosed = errors.New("connection closed")

	// ErrTimeout - a read deadline expired. The connection remains usable
	ErrTimeout = errors.New("read deadline exceeded")

	// ErrDelimiterMissing - a line exceeded MaxLineBytes without a \r\n,
	// or a body was not followed by \r\n
	ErrDelimiterMissing = errors.New("delimiter (\\r\\n) missing")
)

// ConnError is an i/o or framing failure. It is fatal: the connection
// is closed before the error is returned
type ConnError struct {
	// the operation that failed, e.g. read, write
	Op string

	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// Conn encapsulates the stream with a beanstalkd server. It only knows
// about lines and byte counts, nothing about commands
type Conn struct {
	// represents the underlying network stream
	conn net.Conn

	// buffered reader for the connection
	reader *bufio.Reader

	// Bytes consumed by a read that ran into its deadline. They are
	// handed to the next read so a timeout never loses stream data
	partial []byte

	// Current state of this connection, a ConnState
	state int32

	// set to 1 exactly once, by Close or by the first fatal error
	closed int32
}

// Dial connects to the beanstalkd server at addr (host:port).
// A zero timeout means no timeout.
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "dial %s", addr)
	}

	return NewConn(conn), nil
}

func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, readBufferSizeBytes),
		state:  int32(Idle),
	}
}

func (c *Conn) State() ConnState {
	return ConnState(atomic.LoadInt32(&c.state))
}

func (c *Conn) setState(s ConnState) {
	atomic.StoreInt32(&c.state, int32(s))
}

func (c *Conn) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// Send writes all of b to the connection
func (c *Conn) Send(b []byte) error {
	if c.isClosed() {
		return ErrClosed
	}

	c.setState(Sending)
	if _, err := c.conn.Write(b); err != nil {
		return c.fail("write", err)
	}

	c.setState(AwaitingStatus)
	return nil
}

// ReadLine blocks until a \r\n terminated line arrives and returns it
// without the delimiter. A zero deadline blocks indefinitely; on expiry
// ErrTimeout is returned and the connection stays open.
func (c *Conn) ReadLine(deadline time.Time) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, c.fail("set read deadline", err)
	}

	c.setState(AwaitingStatus)
	for {
		chunk, err := c.reader.ReadSlice('\n')
		c.partial = append(c.partial, chunk...)
		if len(c.partial) > MaxLineBytes {
			return nil, c.fail("read line", ErrDelimiterMissing)
		}

		if err == nil {
			break
		} else if err == bufio.ErrBufferFull {
			continue
		} else if isTimeout(err) {
			return nil, ErrTimeout
		}

		return nil, c.fail("read line", err)
	}

	line := c.partial
	c.partial = nil
	if !bytes.HasSuffix(line, delim) {
		return nil, c.fail("read line", ErrDelimiterMissing)
	}

	c.setState(Idle)
	return line[:len(line)-len(delim)], nil
}

// ReadBody reads exactly n bytes followed by the \r\n that terminates
// every body, and returns the n bytes. Deadline semantics are as ReadLine.
func (c *Conn) ReadBody(n int, deadline time.Time) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, c.fail("set read deadline", err)
	}

	c.setState(AwaitingBody)
	buf := make([]byte, n+len(delim))
	k := copy(buf, c.partial)
	c.partial = c.partial[k:]
	if len(c.partial) == 0 {
		c.partial = nil
	}

	m, err := io.ReadFull(c.reader, buf[k:])
	if err != nil {
		if isTimeout(err) {
			c.partial = append(buf[:k+m:k+m], c.partial...)
			return nil, ErrTimeout
		}

		return nil, c.fail("read body", err)
	}

	if !bytes.Equal(buf[n:], delim) {
		return nil, c.fail("read body", ErrDelimiterMissing)
	}

	c.setState(Idle)
	return buf[:n:n], nil
}

// Close closes the underlying connection. Calling Close more than once is safe
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	c.setState(Closed)
	return c.conn.Close()
}

// fail shuts the connection after an unrecoverable error
func (c *Conn) fail(op string, err error) error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		// closed underneath a blocked call
		return ErrClosed
	}

	c.setState(Closed)
	log.WithFields(log.Fields{
		"method": "conn.fail",
		"remote": c.conn.RemoteAddr()}).Errorf("%s err=%v, closing connection", op, err)
	if cerr := c.conn.Close(); cerr != nil {
		log.WithField("method", "conn.fail").Debugf("conn.Close err=%v", cerr)
	}

	return &ConnError{Op: op, Err: err}
}

func (c *Conn) String() string {
	return fmt.Sprintf("State: %v conn.localAddr: %v conn.remoteAddr: %v",
		c.State(), c.conn.LocalAddr(), c.conn.RemoteAddr())
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
