package client

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// JobStats is the reply to stats-job
type JobStats struct {
	ID       uint64 `yaml:"id"`
	Tube     string `yaml:"tube"`
	State    string `yaml:"state"`
	Priority uint32 `yaml:"pri"`
	Age      int64  `yaml:"age"`
	Delay    int64  `yaml:"delay"`
	TTR      int64  `yaml:"ttr"`
	TimeLeft int64  `yaml:"time-left"`
	File     int64  `yaml:"file"`
	Reserves int64  `yaml:"reserves"`
	Timeouts int64  `yaml:"timeouts"`
	Releases int64  `yaml:"releases"`
	Buries   int64  `yaml:"buries"`
	Kicks    int64  `yaml:"kicks"`
}

// TubeStats is the reply to stats-tube
type TubeStats struct {
	Name                string `yaml:"name"`
	CurrentJobsUrgent   int64  `yaml:"current-jobs-urgent"`
	CurrentJobsReady    int64  `yaml:"current-jobs-ready"`
	CurrentJobsReserved int64  `yaml:"current-jobs-reserved"`
	CurrentJobsDelayed  int64  `yaml:"current-jobs-delayed"`
	CurrentJobsBuried   int64  `yaml:"current-jobs-buried"`
	TotalJobs           int64  `yaml:"total-jobs"`
	CurrentUsing        int64  `yaml:"current-using"`
	CurrentWaiting      int64  `yaml:"current-waiting"`
	CurrentWatching     int64  `yaml:"current-watching"`
	Pause               int64  `yaml:"pause"`
	CmdDelete           int64  `yaml:"cmd-delete"`
	CmdPauseTube        int64  `yaml:"cmd-pause-tube"`
	PauseTimeLeft       int64  `yaml:"pause-time-left"`
}

// ServerStats is the reply to stats. Only a subset of the fields a
// server reports are decoded.
type ServerStats struct {
	CurrentJobsUrgent   int64  `yaml:"current-jobs-urgent"`
	CurrentJobsReady    int64  `yaml:"current-jobs-ready"`
	CurrentJobsReserved int64  `yaml:"current-jobs-reserved"`
	CurrentJobsDelayed  int64  `yaml:"current-jobs-delayed"`
	CurrentJobsBuried   int64  `yaml:"current-jobs-buried"`
	CmdPut              int64  `yaml:"cmd-put"`
	CmdReserve          int64  `yaml:"cmd-reserve"`
	CmdDelete           int64  `yaml:"cmd-delete"`
	JobTimeouts         int64  `yaml:"job-timeouts"`
	TotalJobs           int64  `yaml:"total-jobs"`
	MaxJobSize          int    `yaml:"max-job-size"`
	CurrentTubes        int64  `yaml:"current-tubes"`
	CurrentConnections  int64  `yaml:"current-connections"`
	CurrentProducers    int64  `yaml:"current-producers"`
	CurrentWorkers      int64  `yaml:"current-workers"`
	CurrentWaiting      int64  `yaml:"current-waiting"`
	TotalConnections    int64  `yaml:"total-connections"`
	PID                 int64  `yaml:"pid"`
	Version             string `yaml:"version"`
	Uptime              int64  `yaml:"uptime"`
	Draining            bool   `yaml:"draining"`
	ID                  string `yaml:"id"`
	Hostname            string `yaml:"hostname"`
}

func decodeJobStats(b []byte) (*JobStats, error) {
	var s JobStats
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "decode job stats")
	}

	return &s, nil
}

func decodeTubeStats(b []byte) (*TubeStats, error) {
	var s TubeStats
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "decode tube stats")
	}

	return &s, nil
}

func decodeServerStats(b []byte) (*ServerStats, error) {
	var s ServerStats
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "decode server stats")
	}

	return &s, nil
}

// decodeTubes decodes the yaml list of list-tubes and list-tubes-watched
func decodeTubes(b []byte) ([]string, error) {
	var tubes []string
	if err := yaml.Unmarshal(b, &tubes); err != nil {
		return nil, errors.Wrap(err, "decode tube list")
	}

	return tubes, nil
}
