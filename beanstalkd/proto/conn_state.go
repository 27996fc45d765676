package proto

//go:generate stringer -type=ConnState --output conn_state_string.go
type ConnState int32

const (
	// Conn has no command outstanding
	Idle ConnState = iota

	// Conn is writing a command (and job data) to the server
	Sending

	// Conn is waiting for the status line of a response
	AwaitingStatus

	// Conn is reading the body (job or yaml data) of a response
	AwaitingBody

	// Conn is shutdown, either explicitly or after an i/o failure
	Closed
)
