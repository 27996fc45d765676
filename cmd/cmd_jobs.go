package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/1xyz/bsclient/beanstalkd/client"
	"github.com/1xyz/bsclient/tools"
	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"
)

func cmdPut(cfg *client.Config, argv []string, version string) error {
	usage := `usage: put [--tube=<tube>] [--pri=<pri>] [--delay=<secs>] [--ttr=<secs>] [<body>]
options:
    -h, --help
    --tube=<tube>    Tube to put the job into [default: ].
    --pri=<pri>      Job priority, smaller is more urgent [default: 65536].
    --delay=<secs>   Seconds before the job is ready [default: 0].
    --ttr=<secs>     Seconds a worker may hold the job [default: 60].

The job body is read from stdin when <body> is not given.

example:
    put "hello world"
    put --tube=emails --pri=10 < mail.json`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tube := r.Str("--tube")
	pri := r.Uint32("--pri")
	delay := r.Seconds("--delay")
	ttr := r.Seconds("--ttr")
	var body []byte
	if r.Has("<body>") {
		body = []byte(r.Str("<body>"))
	} else if body, err = ioutil.ReadAll(os.Stdin); err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(withTube(cfg, tube), func(c *client.Client) error {
		log.Debugf("put tube=%v pri=%v delay=%v ttr=%v bytes=%d", c.Using(), pri, delay, ttr, len(body))
		id, err := c.Put(body, pri, delay, ttr)
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "inserted job id=%d\n", id)
		return nil
	})
}

// actions a reserve can take on the job it reserved
const (
	thenDelete  = "delete"
	thenRelease = "release"
	thenBury    = "bury"
	thenTouch   = "touch"
	thenNone    = "none"
)

func cmdReserve(cfg *client.Config, argv []string, version string) error {
	usage := `usage: reserve [--tubes=<tubes>] [--timeout=<secs>] [--then=<action>]
options:
    -h, --help
    --tubes=<tubes>    Comma separated tubes to reserve from [default: ].
    --timeout=<secs>   Seconds to wait for a job, negative waits forever [default: -1].
    --then=<action>    What to do with the reserved job: delete, release, bury,
                       touch or none [default: delete].

example:
    reserve
    reserve --tubes=foo,bar --timeout=10 --then=bury`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tubes := r.CSV("--tubes")
	timeout := r.Int("--timeout")
	then := r.Str("--then")
	if err := r.Err(); err != nil {
		return err
	}

	switch then {
	case thenDelete, thenRelease, thenBury, thenTouch, thenNone:
	default:
		return fmt.Errorf("--then: %q is not an action", then)
	}

	return withClient(withWatch(cfg, tubes), func(c *client.Client) error {
		var id uint64
		var body []byte
		var err error
		if timeout < 0 {
			id, body, err = c.Reserve()
		} else {
			id, body, err = c.ReserveWithTimeout(time.Duration(timeout) * time.Second)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "reserved job id=%d\n%s\n", id, body)
		return finishJob(c, id, then)
	})
}

func finishJob(c *client.Client, id uint64, then string) error {
	switch then {
	case thenDelete:
		return c.Delete(id)
	case thenRelease:
		return c.Release(id, jobPriority(c, id), 0)
	case thenBury:
		return c.Bury(id, jobPriority(c, id))
	case thenTouch:
		return c.Touch(id)
	}

	return nil
}

// jobPriority returns the current priority of a job, or DefaultPriority
// if it cannot be read
func jobPriority(c *client.Client, id uint64) uint32 {
	s, err := c.StatsJob(id)
	if err != nil {
		log.WithField("method", "jobPriority").Warnf("StatsJob id=%d err=%v", id, err)
		return client.DefaultPriority
	}
	return s.Priority
}

func cmdDelete(cfg *client.Config, argv []string, version string) error {
	usage := `usage: delete <id>
options:
    -h, --help`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	id := r.ID("<id>")
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(cfg, func(c *client.Client) error {
		if err := c.Delete(id); err != nil {
			return err
		}

		fmt.Fprintf(stdout, "deleted job id=%d\n", id)
		return nil
	})
}

func cmdKick(cfg *client.Config, argv []string, version string) error {
	usage := `usage: kick [--tube=<tube>] <bound>
options:
    -h, --help
    --tube=<tube>   Tube to kick jobs in [default: ].`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tube := r.Str("--tube")
	bound := r.Int("<bound>")
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(withTube(cfg, tube), func(c *client.Client) error {
		n, err := c.Kick(bound)
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "kicked %d jobs in tube %s\n", n, c.Using())
		return nil
	})
}

func cmdKickJob(cfg *client.Config, argv []string, version string) error {
	usage := `usage: kick-job <id>
options:
    -h, --help`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	id := r.ID("<id>")
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(cfg, func(c *client.Client) error {
		if err := c.KickJob(id); err != nil {
			return err
		}

		fmt.Fprintf(stdout, "kicked job id=%d\n", id)
		return nil
	})
}

func cmdPeek(cfg *client.Config, argv []string, version string) error {
	usage := `usage: peek (<id> | --ready | --delayed | --buried) [--tube=<tube>]
options:
    -h, --help
    --ready         Peek at the next ready job of the tube.
    --delayed       Peek at the delayed job of the tube with the shortest delay left.
    --buried        Peek at the next buried job of the tube.
    --tube=<tube>   Tube to peek into [default: ].`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tube := r.Str("--tube")
	var id uint64
	if r.Has("<id>") {
		id = r.ID("<id>")
	}
	ready, delayed, buried := r.Bool("--ready"), r.Bool("--delayed"), r.Bool("--buried")
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(withTube(cfg, tube), func(c *client.Client) error {
		var body []byte
		var err error
		switch {
		case ready:
			id, body, err = c.PeekReady()
		case delayed:
			id, body, err = c.PeekDelayed()
		case buried:
			id, body, err = c.PeekBuried()
		default:
			body, err = c.Peek(id)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "found job id=%d\n%s\n", id, body)
		return nil
	})
}
