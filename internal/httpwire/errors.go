package httpwire

import "fmt"

// ErrorKind classifies failures while reading a request off the wire.
type ErrorKind int

const (
	// EmptyRequest means the peer closed before sending a single byte.
	EmptyRequest ErrorKind = iota
	// MalformedRequest means the request line has fewer than three tokens.
	MalformedRequest
)

func (e ErrorKind) Error() string {
	switch e {
	case EmptyRequest:
		return "empty request"
	case MalformedRequest:
		return "malformed request line"
	default:
		return fmt.Sprintf("unknown request error: %d", int(e))
	}
}

// Sentinels for errors.Is.
var (
	ErrEmptyRequest     error = EmptyRequest
	ErrMalformedRequest error = MalformedRequest
)
