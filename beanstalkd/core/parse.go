package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// Response is a parsed server reply
type Response struct {
	// first token of the status line, e.g. RESERVED
	Status string

	// remaining tokens of the status line
	Fields []string

	// job or yaml data, only set for statuses that carry a body
	Body []byte
}

func (r Response) String() string {
	return fmt.Sprintf("Status: %v Fields:%v BodySize:%d", r.Status, r.Fields, len(r.Body))
}

// BodyFunc reads exactly n bytes of body (and its trailing delimiter)
// from the underlying connection
type BodyFunc func(n int) ([]byte, error)

// index of the <bytes> field for each status carrying a body
var bodySizeField = map[string]int{
	StatusReserved: 1, // RESERVED <id> <bytes>
	StatusFound:    1, // FOUND <id> <bytes>
	StatusOK:       0, // OK <bytes>
}

// ParseResponse splits a status line (without its \r\n) into a Response.
// If the status is one that carries a body, readBody is called exactly once
// for the advertised byte count; for every other status nothing further
// is read.
func ParseResponse(line []byte, readBody BodyFunc) (*Response, error) {
	if len(line) == 0 {
		return nil, fmt.Errorf("empty status line: %w", ErrMalformedResponse)
	}

	tokens := bytes.Split(line, []byte{' '})
	resp := &Response{
		Status: string(tokens[0]),
		Fields: make([]string, 0, len(tokens)-1),
	}
	for _, t := range tokens[1:] {
		resp.Fields = append(resp.Fields, string(t))
	}

	i, ok := bodySizeField[resp.Status]
	if !ok {
		return resp, nil
	}

	if i >= len(resp.Fields) {
		return nil, fmt.Errorf("%s: missing body size: %w", resp.Status, ErrMalformedResponse)
	}

	n, err := strconv.ParseUint(resp.Fields[i], 10, 31)
	if err != nil {
		return nil, fmt.Errorf("%s: body size %q: %w", resp.Status, resp.Fields[i], ErrMalformedResponse)
	}

	body, err := readBody(int(n))
	if err != nil {
		return nil, err
	}

	resp.Body = body
	return resp, nil
}
