package client

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	// Priority of a job put by the CLI when none is given. Smaller is more urgent
	DefaultPriority uint32 = 1 << 16

	// Delay of a job put by the CLI when none is given
	DefaultDelay = time.Duration(0)

	// Time to run of a job put by the CLI when none is given
	DefaultTTR = 60 * time.Second

	// The max. job size of a beanstalkd server started without -z
	DefaultMaxJobSize = 65535

	DefaultHost = "127.0.0.1"
	DefaultPort = 11300
	DefaultAddr = "127.0.0.1:11300"

	// Extra time a reserve-with-timeout waits for the server's reply
	// beyond the timeout itself
	DefaultReserveGrace = time.Second

	// file read by LoadEnv, if present
	envFile = ".env.local"
)

type Config struct {
	// Address (host:port) of the beanstalkd server
	Addr string `yaml:"addr" json:"addr"`

	// Tube that put commands go to, "default" if empty
	Use string `yaml:"use" json:"use"`

	// Tubes that reserve commands take jobs from. If empty, only "default"
	// is watched. "default" is ignored unless it is listed.
	Watch []string `yaml:"watch" json:"watch"`

	// Bodies larger than this are rejected without a round trip.
	// Zero leaves the check to the server
	MaxJobSize int `yaml:"max_job_size" json:"max_job_size"`

	// Zero means no timeout
	DialTimeout Duration `yaml:"dial_timeout" json:"dial_timeout"`

	// Max. time to wait for the reply to any command other than a
	// reservation. Zero means wait indefinitely
	ReadTimeout Duration `yaml:"read_timeout" json:"read_timeout"`

	// Time beyond its timeout that a reserve-with-timeout waits for the
	// reply. Zero means DefaultReserveGrace
	ReserveGrace Duration `yaml:"reserve_grace" json:"reserve_grace"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Addr:       DefaultAddr,
		Use:        "",
		Watch:      nil,
		MaxJobSize: DefaultMaxJobSize,
	}
}

// NewConfig returns the default configuration for the server at host:port
func NewConfig(host string, port int) *Config {
	c := NewDefaultConfig()
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return c
}

func (c *Config) reserveGrace() time.Duration {
	if c.ReserveGrace <= 0 {
		return DefaultReserveGrace
	}

	return time.Duration(c.ReserveGrace)
}

// Duration is a time.Duration that decodes from "1m30s" style strings
// or from a number of nanoseconds
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}

	return d.set(v)
}

func (d *Duration) set(v interface{}) error {
	switch value := v.(type) {
	case int:
		*d = Duration(time.Duration(value))
		return nil
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
}

func (d Duration) String() string {
	return fmt.Sprintf("%v", time.Duration(d))
}

// ReadFrom decodes a yaml (or json) configuration on top of the defaults
func ReadFrom(r io.Reader) (*Config, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c := NewDefaultConfig()
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	return c, nil
}

func LoadFrom(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("error closing file %v", err)
		}
	}()

	c, err := ReadFrom(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", filename)
	}

	return c, nil
}

// envOverlay holds the BSCLIENT_* variables. Zero values are unset
type envOverlay struct {
	Addr         string        `env:"BSCLIENT_ADDR"`
	Use          string        `env:"BSCLIENT_USE"`
	Watch        []string      `env:"BSCLIENT_WATCH"`
	MaxJobSize   string        `env:"BSCLIENT_MAX_JOB_SIZE"`
	DialTimeout  time.Duration `env:"BSCLIENT_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `env:"BSCLIENT_READ_TIMEOUT"`
	ReserveGrace time.Duration `env:"BSCLIENT_RESERVE_GRACE"`
}

// LoadEnv overlays c with the BSCLIENT_* environment variables, after
// loading them from .env.local when that file exists. Variables already
// set in the environment take precedence over the file.
func LoadEnv(ctx context.Context, c *Config) error {
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "load %s", envFile)
		}
	}

	var env envOverlay
	if err := envconfig.Process(ctx, &env); err != nil {
		return errors.Wrap(err, "process environment")
	}

	return env.apply(c)
}

func (e *envOverlay) apply(c *Config) error {
	if e.Addr != "" {
		c.Addr = e.Addr
	}
	if e.Use != "" {
		c.Use = e.Use
	}
	if len(e.Watch) > 0 {
		c.Watch = e.Watch
	}
	if e.MaxJobSize != "" {
		n, err := strconv.Atoi(e.MaxJobSize)
		if err != nil || n < 0 {
			return fmt.Errorf("BSCLIENT_MAX_JOB_SIZE=%q is not a size", e.MaxJobSize)
		}
		c.MaxJobSize = n
	}
	if e.DialTimeout > 0 {
		c.DialTimeout = Duration(e.DialTimeout)
	}
	if e.ReadTimeout > 0 {
		c.ReadTimeout = Duration(e.ReadTimeout)
	}
	if e.ReserveGrace > 0 {
		c.ReserveGrace = Duration(e.ReserveGrace)
	}

	return nil
}
