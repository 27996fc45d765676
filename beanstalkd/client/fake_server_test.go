package client

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// answer is what the fake server writes back for one command line
type answer struct {
	text string

	// wait this long before writing
	after time.Duration
}

func reply(s string) answer {
	return answer{text: s}
}

func okData(yaml string) answer {
	return reply("OK " + strconv.Itoa(len(yaml)) + "\r\n" + yaml + "\r\n")
}

// script returns the answer to a command line (without \r\n). An empty
// answer writes nothing
type script func(line string) answer

// fakeServer plays the server end of a net.Pipe from a script. Replies are
// written from their own go-routine, so the server keeps reading commands
// while the client is not reading replies
type fakeServer struct {
	conn   net.Conn
	reader *bufio.Reader
	script script

	mu       sync.Mutex
	received []string
	bodies   [][]byte

	replies chan answer
	done    chan struct{}
}

func startFakeServer(conn net.Conn, s script) *fakeServer {
	fs := &fakeServer{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		script:  s,
		replies: make(chan answer, 16),
		done:    make(chan struct{}),
	}

	go fs.writeLoop()
	go fs.readLoop()
	return fs
}

func (fs *fakeServer) readLoop() {
	defer close(fs.done)
	defer close(fs.replies)
	for {
		line, err := fs.reader.ReadString('\n')
		if err != nil {
			return
		}

		line = strings.TrimSuffix(line, "\r\n")
		var body []byte
		if strings.HasPrefix(line, "put ") {
			fields := strings.Fields(line)
			n, _ := strconv.Atoi(fields[len(fields)-1])
			buf := make([]byte, n+2)
			if _, err := io.ReadFull(fs.reader, buf); err != nil {
				return
			}
			body = buf[:n]
		}

		fs.mu.Lock()
		fs.received = append(fs.received, line)
		if body != nil {
			fs.bodies = append(fs.bodies, body)
		}
		fs.mu.Unlock()

		if a := fs.script(line); a.text != "" {
			fs.replies <- a
		}
	}
}

func (fs *fakeServer) writeLoop() {
	for a := range fs.replies {
		time.Sleep(a.after)
		if _, err := fs.conn.Write([]byte(a.text)); err != nil {
			return
		}
	}
}

// Received returns the command lines read so far
func (fs *fakeServer) Received() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.received...)
}

func (fs *fakeServer) Bodies() [][]byte {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([][]byte(nil), fs.bodies...)
}

// Close hangs up the server end
func (fs *fakeServer) Close() {
	fs.conn.Close()
}

// answers is a script from a fixed table of command lines. quit, and every
// line missing from the table, is left unanswered
func answers(m map[string]answer) script {
	return func(line string) answer {
		return m[line]
	}
}

func newTestClient(t *testing.T, c *Config, s script) (*Client, *fakeServer) {
	cliConn, srvConn := net.Pipe()
	fs := startFakeServer(srvConn, s)
	cli, err := New(cliConn, c)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	return cli, fs
}
