package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJobStats(t *testing.T) {
	b := []byte("---\nid: 12\ntube: \"emails\"\nstate: delayed\npri: 100\nage: 3\n" +
		"delay: 10\nttr: 60\ntime-left: 7\nfile: 0\nreserves: 1\ntimeouts: 0\n" +
		"releases: 1\nburies: 0\nkicks: 0\n")
	s, err := decodeJobStats(b)
	assert.Nil(t, err)
	assert.Equal(t, &JobStats{
		ID: 12, Tube: "emails", State: "delayed", Priority: 100, Age: 3,
		Delay: 10, TTR: 60, TimeLeft: 7, Reserves: 1, Releases: 1,
	}, s)
}

func TestDecodeTubes(t *testing.T) {
	tubes, err := decodeTubes([]byte("---\n- default\n- 42\n- a.b\n"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"default", "42", "a.b"}, tubes)

	_, err = decodeTubes([]byte("---\nname: x\n"))
	assert.NotNil(t, err)
}

func TestDecodeServerStats(t *testing.T) {
	s, err := decodeServerStats([]byte("---\nversion: \"1.12\"\nmax-job-size: 65535\n" +
		"draining: true\nhostname: \"q1\"\nid: 3bd8a1f2\nunknown-field: 1\n"))
	assert.Nil(t, err)
	assert.Equal(t, 65535, s.MaxJobSize)
	assert.True(t, s.Draining)
	assert.Equal(t, "q1", s.Hostname)
	assert.Equal(t, "3bd8a1f2", s.ID)
}
