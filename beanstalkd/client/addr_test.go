package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddr(t *testing.T) {
	var entries = []struct {
		input    string
		expected string
		err      error
	}{
		{"127.0.0.1:11300", "127.0.0.1:11300", nil},
		{"localhost", "localhost:11300", nil},
		{":11301", ":11301", nil},
		{"q1:", "q1:11300", nil},
		{"::1", "[::1]:11300", nil},
		{"[::1]", "[::1]:11300", nil},
		{"[::1]:11301", "[::1]:11301", nil},
		{"beanstalk://q1:11301", "q1:11301", nil},
		{"BEANSTALK://q1", "q1:11300", nil},
		{"beanstalk://q1/", "q1:11300", nil},
		{"", "", ErrInvalidAddr},
		{"q1:abc", "", ErrInvalidAddr},
		{"q1:70000", "", ErrInvalidAddr},
		{"beanstalk://q1/tube", "", ErrInvalidAddr},
		{"beanstalk://", "", ErrInvalidAddr},
		{"http://q1:11300", "", ErrInvalidScheme},
	}

	for _, e := range entries {
		actual, err := ParseAddr(e.input)
		assert.Equalf(t, e.err, err, "input %q", e.input)
		assert.Equalf(t, e.expected, actual, "input %q", e.input)
	}
}

func TestDial_InvalidAddr(t *testing.T) {
	c := NewDefaultConfig()
	c.Addr = "http://q1"
	_, err := Dial(c)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "http://q1")
}
