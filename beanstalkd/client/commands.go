package client

import (
	"time"

	"github.com/1xyz/bsclient/beanstalkd/core"
)

// Use sets the tube that subsequent puts go to
func (c *Client) Use(tube string) error {
	if !core.ValidTubeName(tube) {
		return localError(core.Use, core.ErrInvalidTubeName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.exchange(core.NewUse(tube), c.readDeadline())
	if err != nil {
		return err
	}

	c.stateMu.Lock()
	c.usedTube = res.Tube
	c.stateMu.Unlock()
	return nil
}

// Put submits a job to the used tube and returns its id. Delay and ttr are
// sent as whole seconds.
//
// If the server stored the job buried, the id is returned along with ErrBuried.
func (c *Client) Put(body []byte, pri uint32, delay, ttr time.Duration) (uint64, error) {
	if limit := c.MaxJobSize(); limit > 0 && len(body) > limit {
		return 0, localError(core.Put, core.ErrJobTooBig)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.exchange(core.NewPut(body, pri, delay, ttr), c.readDeadline())
	if res != nil {
		return res.ID, err
	}

	return 0, err
}

// Reserve blocks until a job is available in any watched tube. It fails
// with ErrDeadlineSoon when a job this client reserved is about to time out.
func (c *Client) Reserve() (uint64, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return job(c.exchange(core.NewReserve(), time.Time{}))
}

// ReserveWithTimeout is Reserve bounded by timeout, in whole seconds. A zero
// timeout returns immediately with ErrTimedOut when no job is ready.
func (c *Client) ReserveWithTimeout(timeout time.Duration) (uint64, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := time.Now().
		Add(time.Duration(core.Seconds(timeout)) * time.Second).
		Add(c.config.reserveGrace())
	return job(c.exchange(core.NewReserveWithTimeout(timeout), deadline))
}

// ReserveJob reserves the job with the given id, in any tube
func (c *Client) ReserveJob(id uint64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, body, err := job(c.exchange(core.NewReserveJob(id), c.readDeadline()))
	return body, err
}

func (c *Client) Delete(id uint64) error {
	return c.simple(core.NewDelete(id))
}

// Release puts a job reserved by this client back into the ready queue,
// or the delayed queue when delay is positive
func (c *Client) Release(id uint64, pri uint32, delay time.Duration) error {
	return c.simple(core.NewRelease(id, pri, delay))
}

func (c *Client) Bury(id uint64, pri uint32) error {
	return c.simple(core.NewBury(id, pri))
}

// Touch restarts the ttr of a job reserved by this client
func (c *Client) Touch(id uint64) error {
	return c.simple(core.NewTouch(id))
}

// Watch adds tube to the watch list and returns the number of watched tubes
func (c *Client) Watch(tube string) (int, error) {
	if !core.ValidTubeName(tube) {
		return 0, localError(core.Watch, core.ErrInvalidTubeName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.exchange(core.NewWatch(tube), c.readDeadline())
	if err != nil {
		return 0, err
	}

	c.stateMu.Lock()
	c.watchedTubes.Set(tube)
	c.stateMu.Unlock()
	c.checkWatching(res.Count)
	return res.Count, nil
}

// Ignore removes tube from the watch list and returns the number of
// watched tubes. The last watched tube cannot be ignored.
func (c *Client) Ignore(tube string) (int, error) {
	if !core.ValidTubeName(tube) {
		return 0, localError(core.Ignore, core.ErrInvalidTubeName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateMu.RLock()
	last := c.watchedTubes.Len() == 1 && c.watchedTubes.Contains(tube)
	c.stateMu.RUnlock()
	if last {
		return 0, localError(core.Ignore, core.ErrNotIgnored)
	}

	res, err := c.exchange(core.NewIgnore(tube), c.readDeadline())
	if err != nil {
		return 0, err
	}

	c.stateMu.Lock()
	c.watchedTubes.Remove(tube)
	c.stateMu.Unlock()
	c.checkWatching(res.Count)
	return res.Count, nil
}

// checkWatching compares the watched tube count reported by the server
// with the mirror and resyncs the mirror if they differ. The caller holds c.mu.
func (c *Client) checkWatching(count int) {
	c.stateMu.RLock()
	n := c.watchedTubes.Len()
	c.stateMu.RUnlock()
	if n == count {
		return
	}

	logc := c.logger("checkWatching")
	logc.Warnf("server watches %d tubes, mirror has %d, resyncing", count, n)
	if _, err := c.listTubesWatched(); err != nil {
		logc.Errorf("listTubesWatched err=%v", err)
	}
}

// Peek returns the body of the job with the given id, in any state
func (c *Client) Peek(id uint64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, body, err := job(c.exchange(core.NewPeek(id), c.readDeadline()))
	return body, err
}

// PeekReady returns the next ready job in the used tube
func (c *Client) PeekReady() (uint64, []byte, error) {
	return c.peek(core.NewPeekReady())
}

// PeekDelayed returns the delayed job in the used tube with the shortest delay left
func (c *Client) PeekDelayed() (uint64, []byte, error) {
	return c.peek(core.NewPeekDelayed())
}

// PeekBuried returns the next buried job in the used tube
func (c *Client) PeekBuried() (uint64, []byte, error) {
	return c.peek(core.NewPeekBuried())
}

func (c *Client) peek(cmd *core.Command) (uint64, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return job(c.exchange(cmd, c.readDeadline()))
}

// Kick moves up to bound buried (or else delayed) jobs of the used tube into
// the ready queue and returns the number of jobs moved
func (c *Client) Kick(bound int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.exchange(core.NewKick(bound), c.readDeadline())
	if err != nil {
		return 0, err
	}

	return res.Count, nil
}

// KickJob moves a buried or delayed job into the ready queue
func (c *Client) KickJob(id uint64) error {
	return c.simple(core.NewKickJob(id))
}

func (c *Client) Stats() (*ServerStats, error) {
	b, err := c.data(core.NewStats())
	if err != nil {
		return nil, err
	}

	return decodeServerStats(b)
}

func (c *Client) StatsJob(id uint64) (*JobStats, error) {
	b, err := c.data(core.NewStatsJob(id))
	if err != nil {
		return nil, err
	}

	return decodeJobStats(b)
}

func (c *Client) StatsTube(tube string) (*TubeStats, error) {
	if !core.ValidTubeName(tube) {
		return nil, localError(core.StatsTube, core.ErrInvalidTubeName)
	}

	b, err := c.data(core.NewStatsTube(tube))
	if err != nil {
		return nil, err
	}

	return decodeTubeStats(b)
}

// ListTubes returns the names of all tubes on the server
func (c *Client) ListTubes() ([]string, error) {
	b, err := c.data(core.NewListTubes())
	if err != nil {
		return nil, err
	}

	return decodeTubes(b)
}

// ListTubeUsed asks the server for the used tube and refreshes Using
func (c *Client) ListTubeUsed() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.exchange(core.NewListTubeUsed(), c.readDeadline())
	if err != nil {
		return "", err
	}

	c.stateMu.Lock()
	c.usedTube = res.Tube
	c.stateMu.Unlock()
	return res.Tube, nil
}

// ListTubesWatched asks the server for the watched tubes and refreshes Watching
func (c *Client) ListTubesWatched() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listTubesWatched()
}

func (c *Client) listTubesWatched() ([]string, error) {
	res, err := c.exchange(core.NewListTubesWatched(), c.readDeadline())
	if err != nil {
		return nil, err
	}

	tubes, err := decodeTubes(res.Body)
	if err != nil {
		return nil, err
	}

	c.stateMu.Lock()
	c.watchedTubes = newTubeSet(tubes...)
	c.stateMu.Unlock()
	return tubes, nil
}

// PauseTube stops reservations from tube for delay, in whole seconds
func (c *Client) PauseTube(tube string, delay time.Duration) error {
	if !core.ValidTubeName(tube) {
		return localError(core.PauseTube, core.ErrInvalidTubeName)
	}

	return c.simple(core.NewPauseTube(tube, delay))
}

// RefreshMaxJobSize adopts the max-job-size the server reports in its
// stats as the local limit for Put, and returns it
func (c *Client) RefreshMaxJobSize() (int, error) {
	s, err := c.Stats()
	if err != nil {
		return 0, err
	}

	c.stateMu.Lock()
	c.maxJobSize = s.MaxJobSize
	c.stateMu.Unlock()
	return s.MaxJobSize, nil
}

// simple runs a command whose successful reply carries nothing
func (c *Client) simple(cmd *core.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.exchange(cmd, c.readDeadline())
	return err
}

// data runs a command replied to with OK <bytes> and returns the bytes
func (c *Client) data(cmd *core.Command) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.exchange(cmd, c.readDeadline())
	if err != nil {
		return nil, err
	}

	return res.Body, nil
}

func job(res *core.Result, err error) (uint64, []byte, error) {
	if err != nil {
		return 0, nil, err
	}

	return res.ID, res.Body, nil
}
