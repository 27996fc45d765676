package cmd

import (
	"fmt"

	"github.com/1xyz/bsclient/beanstalkd/client"
	"github.com/1xyz/bsclient/tools"
	"github.com/docopt/docopt-go"
	"gopkg.in/yaml.v2"
)

func cmdStats(cfg *client.Config, argv []string, version string) error {
	usage := `usage: stats
options:
    -h, --help`

	if _, err := docopt.ParseArgs(usage, argv[1:], version); err != nil {
		return err
	}

	return withClient(cfg, func(c *client.Client) error {
		s, err := c.Stats()
		if err != nil {
			return err
		}
		return printYaml(s)
	})
}

func cmdStatsJob(cfg *client.Config, argv []string, version string) error {
	usage := `usage: stats-job <id>
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
		s, err := c.StatsJob(id)
		if err != nil {
			return err
		}
		return printYaml(s)
	})
}

func cmdStatsTube(cfg *client.Config, argv []string, version string) error {
	usage := `usage: stats-tube <tube>
options:
    -h, --help`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tube := r.Str("<tube>")
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(cfg, func(c *client.Client) error {
		s, err := c.StatsTube(tube)
		if err != nil {
			return err
		}
		return printYaml(s)
	})
}

func cmdListTubes(cfg *client.Config, argv []string, version string) error {
	usage := `usage: list-tubes
options:
    -h, --help`

	if _, err := docopt.ParseArgs(usage, argv[1:], version); err != nil {
		return err
	}

	return withClient(cfg, func(c *client.Client) error {
		tubes, err := c.ListTubes()
		if err != nil {
			return err
		}
		return printYaml(tubes)
	})
}

func cmdPauseTube(cfg *client.Config, argv []string, version string) error {
	usage := `usage: pause-tube <tube> <secs>
options:
    -h, --help`

	opts, err := docopt.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tube := r.Str("<tube>")
	delay := r.Seconds("<secs>")
	if err := r.Err(); err != nil {
		return err
	}

	return withClient(cfg, func(c *client.Client) error {
		if err := c.PauseTube(tube, delay); err != nil {
			return err
		}

		fmt.Fprintf(stdout, "paused tube %s for %v\n", tube, delay)
		return nil
	})
}

func printYaml(v interface{}) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	_, err = stdout.Write(b)
	return err
}
