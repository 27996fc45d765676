package tools

import (
	"testing"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/stretchr/testify/assert"
)

func TestOptsReader(t *testing.T) {
	opts := docopt.Opts{
		"--pri":     "1024",
		"--ttr":     "60",
		"--tubes":   "a, b,,c",
		"--delete":  true,
		"--buried":  false,
		"--tube":    nil,
		"<id>":      "18446744073709551615",
		"<bad-id>":  "-1",
		"<too-big>": "4294967296",
	}

	r := NewOptsReader(opts)
	assert.Equal(t, uint32(1024), r.Uint32("--pri"))
	assert.Equal(t, 60*time.Second, r.Seconds("--ttr"))
	assert.Equal(t, []string{"a", "b", "c"}, r.CSV("--tubes"))
	assert.True(t, r.Bool("--delete"))
	assert.Equal(t, uint64(18446744073709551615), r.ID("<id>"))
	assert.True(t, r.Has("--delete"))
	assert.False(t, r.Has("--buried"))
	assert.False(t, r.Has("--tube"))
	assert.False(t, r.Has("--missing"))
	assert.Nil(t, r.Err())

	r.ID("<bad-id>")
	r.Uint32("<too-big>")
	assert.NotNil(t, r.Err())
	assert.Contains(t, r.Err().Error(), "<bad-id>")
	assert.Contains(t, r.Err().Error(), "<too-big>")
}
