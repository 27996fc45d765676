package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/1xyz/bsclient/beanstalkd/client"
	log "github.com/sirupsen/logrus"
)

// output of the commands, replaced in tests
var stdout io.Writer = os.Stdout

// RunCommand runs the sub-command c against the server of cfg
func RunCommand(cfg *client.Config, c string, args []string, version string) error {
	argv := append([]string{c}, args...)
	switch c {
	case "put":
		return cmdPut(cfg, argv, version)
	case "reserve":
		return cmdReserve(cfg, argv, version)
	case "delete":
		return cmdDelete(cfg, argv, version)
	case "kick":
		return cmdKick(cfg, argv, version)
	case "kick-job":
		return cmdKickJob(cfg, argv, version)
	case "peek":
		return cmdPeek(cfg, argv, version)
	case "stats":
		return cmdStats(cfg, argv, version)
	case "stats-job":
		return cmdStatsJob(cfg, argv, version)
	case "stats-tube":
		return cmdStatsTube(cfg, argv, version)
	case "list-tubes":
		return cmdListTubes(cfg, argv, version)
	case "pause-tube":
		return cmdPauseTube(cfg, argv, version)
	case "work":
		return cmdWork(cfg, argv, version)
	default:
		return fmt.Errorf("%s is not a supported command. See 'bsclient --help'", c)
	}
}

// withClient connects with cfg, runs fn and closes the connection
func withClient(cfg *client.Config, fn func(c *client.Client) error) error {
	c, err := client.Dial(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if err := c.Close(); err != nil {
			log.WithField("method", "withClient").Debugf("c.Close err=%v", err)
		}
	}()

	return fn(c)
}

// withTube returns a copy of cfg that uses tube, if it is given
func withTube(cfg *client.Config, tube string) *client.Config {
	c := *cfg
	if tube != "" {
		c.Use = tube
	}
	return &c
}

// withWatch returns a copy of cfg that watches tubes, if any are given
func withWatch(cfg *client.Config, tubes []string) *client.Config {
	c := *cfg
	if len(tubes) > 0 {
		c.Watch = tubes
	}
	return &c
}
