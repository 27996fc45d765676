package client

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/1xyz/bsclient/beanstalkd/core"
	"github.com/1xyz/bsclient/beanstalkd/proto"
	"github.com/armon/go-metrics"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Client is a session with one beanstalkd server over one connection.
//
// The protocol is strictly request/response, so a Client runs one command
// at a time; concurrent calls queue up behind the one in flight. Close may
// be called at any time to abort a blocked reservation.
type Client struct {
	// unique id of this session, used in logs
	id string

	config Config

	conn *proto.Conn

	// serializes exchanges on conn
	mu sync.Mutex

	// Commands whose replies are still owed by the server because a local
	// read deadline expired first, oldest first. Guarded by mu
	pending []*core.Command

	// guards the session mirrors below
	stateMu sync.RWMutex

	// tube that put commands go to
	usedTube string

	// tubes that reserve commands take jobs from
	watchedTubes tubeSet

	// local job size limit, zero if the server decides
	maxJobSize int
}

// Dial connects to the server at c.Addr and applies the tubes of c
func Dial(c *Config) (*Client, error) {
	if c == nil {
		c = NewDefaultConfig()
	}

	addr, err := ParseAddr(c.Addr)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "addr %q", c.Addr)
	}

	conn, err := proto.Dial(addr, time.Duration(c.DialTimeout))
	if err != nil {
		return nil, err
	}

	return newClient(conn, c)
}

// New returns a Client over an established connection to a server
func New(conn net.Conn, c *Config) (*Client, error) {
	if c == nil {
		c = NewDefaultConfig()
	}

	return newClient(proto.NewConn(conn), c)
}

func newClient(conn *proto.Conn, c *Config) (*Client, error) {
	cli := &Client{
		id:           uuid.New().URN(),
		config:       *c,
		conn:         conn,
		usedTube:     core.DefaultTubeName,
		watchedTubes: newTubeSet(core.DefaultTubeName),
		maxJobSize:   c.MaxJobSize,
	}

	if err := cli.applyTubes(); err != nil {
		return nil, multierr.Append(err, conn.Close())
	}

	cli.logger("newClient").Debugf("connected using=%s watching=%v",
		cli.Using(), cli.Watching())
	return cli, nil
}

// applyTubes issues the use, watch and ignore commands that c.config asks for
func (c *Client) applyTubes() error {
	if t := c.config.Use; t != "" && t != core.DefaultTubeName {
		if err := c.Use(t); err != nil {
			return err
		}
	}

	keepDefault := len(c.config.Watch) == 0
	for _, t := range c.config.Watch {
		if t == core.DefaultTubeName {
			keepDefault = true
			continue
		}
		if _, err := c.Watch(t); err != nil {
			return err
		}
	}

	if !keepDefault {
		if _, err := c.Ignore(core.DefaultTubeName); err != nil {
			return err
		}
	}

	return nil
}

// ID returns the id of this session as it appears in logs
func (c *Client) ID() string {
	return c.id
}

// Using returns the tube that put commands go to, as last confirmed by the server
func (c *Client) Using() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.usedTube
}

// Watching returns the sorted names of the watched tubes, as last
// confirmed by the server
func (c *Client) Watching() []string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.watchedTubes.Names()
}

// MaxJobSize returns the body size above which Put fails locally
func (c *Client) MaxJobSize() int {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.maxJobSize
}

// Close sends quit when no command is in flight and closes the connection.
// It is safe to call more than once and from any go-routine.
func (c *Client) Close() error {
	var quitErr error
	if c.conn.State() == proto.Idle {
		if err := c.conn.Send(core.NewQuit().Encode()); err != nil && err != proto.ErrClosed {
			quitErr = pkgerrors.WithMessage(err, "quit")
		}
	}

	return multierr.Combine(quitErr, c.conn.Close())
}

func (c *Client) logger(method string) *log.Entry {
	return log.WithFields(log.Fields{"method": method, "clientID": c.id})
}

// readDeadline is the deadline of a command that is not a reservation
func (c *Client) readDeadline() time.Time {
	if c.config.ReadTimeout <= 0 {
		return time.Time{}
	}

	return time.Now().Add(time.Duration(c.config.ReadTimeout))
}

// exchange sends cmd and returns its mapped reply. The caller holds c.mu.
//
// Replies still owed for earlier commands are read first. If the deadline
// expires, cmd joins them and the error is ErrTimedOut for a reservation
// or ErrTimeout otherwise.
func (c *Client) exchange(cmd *core.Command, deadline time.Time) (*core.Result, error) {
	defer metrics.MeasureSince([]string{"command", cmd.CmdType.Verb()}, time.Now())
	if err := c.drainPending(); err != nil {
		return nil, err
	}

	if err := c.conn.Send(cmd.Encode()); err != nil {
		return nil, c.connFailed(cmd, err)
	}

	res, err := c.readReply(cmd, deadline)
	if err == proto.ErrTimeout {
		c.pending = append(c.pending, cmd)
		c.logger("exchange").Warnf("no reply to %v within deadline, %d pending", cmd, len(c.pending))
		if isReservation(cmd.CmdType) {
			return nil, core.NewError(cmd.CmdType, core.ErrTimedOut)
		}

		return nil, pkgerrors.WithMessage(err, cmd.CmdType.Verb())
	}

	return res, err
}

// readReply reads the reply to cmd, which was already sent
func (c *Client) readReply(cmd *core.Command, deadline time.Time) (*core.Result, error) {
	line, err := c.conn.ReadLine(deadline)
	if err == proto.ErrTimeout {
		return nil, err
	} else if err != nil {
		return nil, c.connFailed(cmd, err)
	}

	resp, err := core.ParseResponse(line, c.readBody)
	if err != nil {
		if errors.Is(err, core.ErrMalformedResponse) {
			return nil, c.protocolFailed(&core.Error{Cmd: cmd.CmdType, Err: err})
		}

		return nil, c.connFailed(cmd, err)
	}

	c.logger("readReply").Debugf("cmd=%v resp=%v", cmd, resp)
	res, err := core.MapResponse(cmd.CmdType, resp)
	if err != nil {
		metrics.IncrCounter([]string{"error", resp.Status}, 1)
		if core.IsProtocolError(err) {
			return nil, c.protocolFailed(err)
		}
	}

	return res, err
}

// readBody reads a body announced by a status line. The status line
// arrived, so the body follows without waiting on the server
func (c *Client) readBody(n int) ([]byte, error) {
	return c.conn.ReadBody(n, time.Time{})
}

// drainPending reads the replies owed for commands that ran past their
// deadline. Jobs reserved by a late reply are released back to their tube
// and late use, watch and ignore replies update the session mirrors.
func (c *Client) drainPending() error {
	var lateJobs []uint64
	for len(c.pending) > 0 {
		cmd := c.pending[0]
		res, err := c.readReply(cmd, c.readDeadline())
		if err == proto.ErrTimeout {
			return pkgerrors.WithMessagef(err, "awaiting reply to %v", cmd.CmdType.Verb())
		}

		c.pending = c.pending[1:]
		if c.conn.State() == proto.Closed {
			return err
		}

		c.logger("drainPending").Warnf("late reply to %v err=%v", cmd, err)
		if err == nil {
			lateJobs = c.applyLate(cmd, res, lateJobs)
		}
	}

	for _, id := range lateJobs {
		if err := c.returnJob(id); err != nil {
			c.logger("drainPending").Errorf("returnJob id=%d err=%v", id, err)
			if c.conn.State() == proto.Closed {
				return err
			}
		}
	}

	return nil
}

func (c *Client) applyLate(cmd *core.Command, res *core.Result, lateJobs []uint64) []uint64 {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	switch cmd.CmdType {
	case core.Use:
		c.usedTube = res.Tube
	case core.Watch:
		c.watchedTubes.Set(cmd.Args[0])
	case core.Ignore:
		c.watchedTubes.Remove(cmd.Args[0])
	case core.Reserve, core.ReserveWithTimeout, core.ReserveJob:
		lateJobs = append(lateJobs, res.ID)
	}

	return lateJobs
}

// returnJob releases a job that no caller received, keeping its priority
func (c *Client) returnJob(id uint64) error {
	pri := DefaultPriority
	res, err := c.exchange(core.NewStatsJob(id), c.readDeadline())
	if err == nil {
		if s, err := decodeJobStats(res.Body); err == nil {
			pri = s.Priority
		}
	}

	if _, err := c.exchange(core.NewRelease(id, pri, 0), c.readDeadline()); err != nil {
		return err
	}

	c.logger("returnJob").Warnf("released late reserved job id=%d pri=%d", id, pri)
	return nil
}

// connFailed adds the command to an i/o failure, after which conn is closed
func (c *Client) connFailed(cmd *core.Command, err error) error {
	metrics.IncrCounter([]string{"error", "conn"}, 1)
	return pkgerrors.WithMessage(err, cmd.CmdType.Verb())
}

// protocolFailed closes the connection, since the stream position is unknown
func (c *Client) protocolFailed(err error) error {
	c.logger("protocolFailed").Errorf("%v, closing connection", err)
	if cerr := c.conn.Close(); cerr != nil {
		c.logger("protocolFailed").Debugf("conn.Close err=%v", cerr)
	}

	return err
}

// localError is a command failure detected before anything was sent
func localError(cmd core.CmdType, err error) error {
	metrics.IncrCounter([]string{"error", "local"}, 1)
	return core.NewError(cmd, err)
}

func isReservation(t core.CmdType) bool {
	return t == core.Reserve || t == core.ReserveWithTimeout
}
