package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/1xyz/bsclient/beanstalkd/client"
	"github.com/1xyz/bsclient/tools"
	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/davecgh/go-spew/spew"
	"github.com/docopt/docopt-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const serviceName = "bsclient"

func cmdWork(cfg *client.Config, argv []string, version string) error {
	usage := `usage: work [--tubes=<tubes>] [--timeout=<secs>] [--metrics-addr=<addr>] <command> [<args>...]
options:
    -h, --help
    --tubes=<tubes>         Comma separated tubes to reserve from [default: ].
    --timeout=<secs>        Seconds each reservation waits before checking
                            for a shutdown signal [default: 5].
    --metrics-addr=<addr>   Start a prometheus server to expose metrics at this address.
                            By default no server is started. Example value is ":2122" [default: ]

Each reserved job body is written to the stdin of <command>. The job is
deleted if the command exits with status 0 and buried otherwise.

example:
    work --tubes=emails -- ./send-mail.sh --dry-run`

	parser := &docopt.Parser{OptionsFirst: true}
	opts, err := parser.ParseArgs(usage, argv[1:], version)
	if err != nil {
		return err
	}

	r := tools.NewOptsReader(opts)
	tubes := r.CSV("--tubes")
	timeout := r.Seconds("--timeout")
	metricsAddr := r.Str("--metrics-addr")
	command := r.Str("<command>")
	args, _ := opts["<args>"].([]string)
	if err := r.Err(); err != nil {
		return err
	}

	if err := InitializeMetrics(serviceName, metricsAddr); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go waitForShutdown(cancel)

	w := &worker{
		timeout: timeout,
		run:     shellRunner(command, args),
	}
	return withClient(withWatch(cfg, tubes), func(c *client.Client) error {
		return w.loop(ctx, c)
	})
}

// waitForShutdown waits for a terminate or interrupt signal and cancels
// the worker once a signal is received.
func waitForShutdown(cancel context.CancelFunc) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done
	log.Infof("waitForShutdown: Shutdown signal received")
	cancel()
}

// jobClient is the part of client.Client a worker needs
type jobClient interface {
	ReserveWithTimeout(timeout time.Duration) (uint64, []byte, error)
	Delete(id uint64) error
	Bury(id uint64, pri uint32) error
	StatsJob(id uint64) (*client.JobStats, error)
}

// runFunc processes one job body
type runFunc func(body []byte) error

type worker struct {
	// bound on each reservation, so that shutdown is noticed
	timeout time.Duration

	run runFunc
}

// loop reserves and processes jobs until ctx is done
func (w *worker) loop(ctx context.Context, c jobClient) error {
	logc := log.WithField("method", "worker.loop")
	for {
		select {
		case <-ctx.Done():
			logc.Infof("stopped")
			return nil
		default:
		}

		id, body, err := c.ReserveWithTimeout(w.timeout)
		if errors.Is(err, client.ErrTimedOut) {
			continue
		} else if errors.Is(err, client.ErrDeadlineSoon) {
			logc.Warnf("a reserved job is about to time out")
			continue
		} else if err != nil {
			return err
		}

		if err := w.process(c, id, body); err != nil {
			return err
		}
	}
}

// process runs one job, deleting it on success and burying it on failure.
// A shutdown signal lets the job in progress finish
func (w *worker) process(c jobClient, id uint64, body []byte) error {
	logc := log.WithFields(log.Fields{"method": "worker.process", "id": id})
	start := time.Now()
	runErr := w.run(body)
	metrics.MeasureSince([]string{"work", "run"}, start)
	if runErr == nil {
		logc.Debugf("done in %v", time.Since(start))
		metrics.IncrCounter([]string{"work", "done"}, 1)
		return c.Delete(id)
	}

	logc.Errorf("run err=%v, burying job", runErr)
	metrics.IncrCounter([]string{"work", "failed"}, 1)
	pri := client.DefaultPriority
	if s, err := c.StatsJob(id); err == nil {
		pri = s.Priority
	}
	return c.Bury(id, pri)
}

// shellRunner returns a runFunc that runs command with the body on its stdin
func shellRunner(command string, args []string) runFunc {
	return func(body []byte) error {
		cmd := exec.Command(command, args...)
		cmd.Stdin = bytes.NewReader(body)
		cmd.Stdout = stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
}

// InitializeMetrics sets up the global go-metrics sink, a prometheus sink
// served at metricsAddr if it is given, else a blackhole
func InitializeMetrics(serviceName, metricsAddr string) error {
	var sink metrics.MetricSink
	var err error
	if metricsAddr != "" {
		sink, err = prometheus.NewPrometheusSink()
		if err != nil {
			return err
		}
	} else {
		sink = &metrics.BlackholeSink{}
	}

	m, err := metrics.NewGlobal(metrics.DefaultConfig(serviceName), sink)
	if err != nil {
		return err
	}
	m.EnableHostname = false
	log.Debugf("metrics: %s", spew.Sdump(m.Config))

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Errorf("InitializeMetrics: prometheus server err = %v", err)
			}
		}()
	}
	return nil
}
