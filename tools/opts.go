package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/docopt/docopt-go"
	"go.uber.org/multierr"
)

// OptsReader reads typed values out of parsed docopt options. A value that
// cannot be read is returned as its zero value and the failure is kept;
// Err returns all failures once the options of a command have been read.
type OptsReader struct {
	opts docopt.Opts
	err  error
}

func NewOptsReader(opts docopt.Opts) *OptsReader {
	return &OptsReader{opts: opts}
}

func (r *OptsReader) Err() error {
	return r.err
}

func (r *OptsReader) fail(key string, err error) {
	r.err = multierr.Append(r.err, fmt.Errorf("%s: %v", key, err))
}

func (r *OptsReader) Bool(key string) bool {
	v, err := r.opts.Bool(key)
	if err != nil {
		r.fail(key, err)
	}
	return v
}

func (r *OptsReader) Str(key string) string {
	v, err := r.opts.String(key)
	if err != nil {
		r.fail(key, err)
	}
	return v
}

// Has reports whether an optional value was given
func (r *OptsReader) Has(key string) bool {
	v, ok := r.opts[key]
	return ok && v != nil && v != false
}

func (r *OptsReader) Int(key string) int {
	v, err := r.opts.Int(key)
	if err != nil {
		r.fail(key, err)
	}
	return v
}

// Uint32 reads a priority
func (r *OptsReader) Uint32(key string) uint32 {
	v, err := strconv.ParseUint(r.Str(key), 10, 32)
	if err != nil {
		r.fail(key, err)
	}
	return uint32(v)
}

// ID reads a job id
func (r *OptsReader) ID(key string) uint64 {
	v, err := strconv.ParseUint(r.Str(key), 10, 64)
	if err != nil {
		r.fail(key, err)
	}
	return v
}

func (r *OptsReader) Seconds(key string) time.Duration {
	return time.Duration(r.Int(key)) * time.Second
}

// CSV reads a comma separated list, dropping empty entries
func (r *OptsReader) CSV(key string) []string {
	var result []string
	for _, v := range strings.Split(r.Str(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
