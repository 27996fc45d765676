package main

import (
	"context"
	"os"

	"github.com/1xyz/bsclient/beanstalkd/client"
	"github.com/1xyz/bsclient/cmd"
	"github.com/1xyz/bsclient/tools"
	"github.com/davecgh/go-spew/spew"
	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"
)

const version = "0.1.alpha"

func init() {
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
}

func main() {
	usage := `usage: bsclient [--version] [(--verbose|--quiet)] [--help] [--addr=<addr>] [--config=<file>]
           <command> [<args>...]
options:
   -h, --help
   --verbose          Change the logging level verbosity
   --quiet            Only log warnings and errors
   --addr=<addr>      Beanstalkd address, overrides the config file and BSCLIENT_ADDR [default: ].
   --config=<file>    YAML or JSON configuration file [default: ].
The commands are:
   put          Put a job into a tube
   reserve      Reserve a job from one or more tubes
   delete       Delete a job
   kick         Kick buried or delayed jobs of a tube
   kick-job     Kick a buried or delayed job
   peek         Show a job without reserving it
   stats        Show server statistics
   stats-job    Show job statistics
   stats-tube   Show tube statistics
   list-tubes   List the existing tubes
   pause-tube   Pause reservations from a tube
   work         Run a command for every job reserved from one or more tubes
See 'bsclient <command> --help' for more information on a specific command.
`
	parser := &docopt.Parser{OptionsFirst: true}
	args, err := parser.ParseArgs(usage, nil, version)
	if err != nil {
		log.Errorf("error = %v", err)
		os.Exit(1)
	}

	c := args["<command>"].(string)
	cmdArgs := args["<args>"].([]string)

	r := tools.NewOptsReader(args)
	verbose := r.Bool("--verbose")
	quiet := r.Bool("--quiet")
	addr := r.Str("--addr")
	file := r.Str("--config")
	if err := r.Err(); err != nil {
		log.Errorf("error = %v", err)
		os.Exit(1)
	}

	if verbose {
		log.SetLevel(log.DebugLevel)
	} else if quiet {
		log.SetLevel(log.WarnLevel)
	}

	log.Debugf("global arguments: %v", args)
	log.Debugf("command arguments: %v %v", c, cmdArgs)

	cfg, err := loadConfig(file, addr)
	if err != nil {
		log.Errorf("loadConfig: err = %v", err)
		os.Exit(1)
	}

	if err := cmd.RunCommand(cfg, c, cmdArgs, version); err != nil {
		log.Errorf("%s: err = %v", c, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: the file (if any) over the
// defaults, then the environment, then the --addr flag
func loadConfig(file, addr string) (*client.Config, error) {
	cfg := client.NewDefaultConfig()
	if file != "" {
		var err error
		if cfg, err = client.LoadFrom(file); err != nil {
			return nil, err
		}
	}

	if err := client.LoadEnv(context.Background(), cfg); err != nil {
		return nil, err
	}

	if addr != "" {
		cfg.Addr = addr
	}

	log.Debugf("config: %s", spew.Sdump(cfg))
	return cfg, nil
}
