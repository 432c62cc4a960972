// Package httpwire reads HTTP/1.1 requests off a raw byte stream and
// serializes responses back onto it. It knows nothing about routes.
package httpwire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"
)

// readChunk is the size of a single read from the connection.
const readChunk = 10240

var headerEnd = []byte("\r\n\r\n")

// Request is a parsed request. Header keys are canonicalized, so lookups
// are case-insensitive and a repeated header keeps its last value.
type Request struct {
	Method string
	Path   string
	Proto  string
	Header map[string]string
	Body   []byte
}

// Get returns the value of the named header, or "".
func (r *Request) Get(name string) string {
	return r.Header[textproto.CanonicalMIMEHeaderKey(name)]
}

// ContentLength returns the declared body length, 0 when absent or malformed.
func (r *Request) ContentLength() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.Get("Content-Length")))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Boundary returns the multipart boundary token from Content-Type.
func (r *Request) Boundary() string {
	ct := r.Get("Content-Type")
	i := strings.Index(ct, "boundary=")
	if i < 0 {
		return ""
	}
	b := ct[i+len("boundary="):]
	if j := strings.IndexByte(b, ';'); j >= 0 {
		b = b[:j]
	}
	return strings.Trim(strings.TrimSpace(b), `"`)
}

// AcceptsGzip reports whether Accept-Encoding lists gzip (or a wildcard)
// with a non-zero quality.
func (r *Request) AcceptsGzip() bool {
	for _, item := range strings.Split(r.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(item), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "x-gzip" && coding != "*" {
			continue
		}
		if quality(params) > 0 {
			return true
		}
	}
	return false
}

// quality returns the q parameter among ;-separated params, 1 when absent
// and 0 when unparseable.
func quality(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(p), "=")
		if !strings.EqualFold(strings.TrimSpace(name), "q") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return v
	}
	return 1
}

// ReadRequest reads one request from r. It blocks until the header block is
// complete and, when Content-Length asks for more, until the body is too.
// A peer that closes early leaves a short body rather than an error.
func ReadRequest(r io.Reader) (*Request, error) {
	buf := make([]byte, 0, readChunk)
	chunk := make([]byte, readChunk)
	for !bytes.Contains(buf, headerEnd) {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if len(buf) == 0 {
		return nil, ErrEmptyRequest
	}

	head, body, _ := bytes.Cut(buf, headerEnd)
	req, err := parseHead(head)
	if err != nil {
		return nil, err
	}

	want := req.ContentLength()
	for len(body) < want {
		n, err := r.Read(chunk)
		body = append(body, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
	if len(body) > want {
		body = body[:want]
	}
	req.Body = body
	return req, nil
}

func parseHead(head []byte) (*Request, error) {
	lines := strings.Split(string(head), "\r\n")
	parts := strings.Split(lines[0], " ")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformedRequest
	}
	req := &Request{
		Method: parts[0],
		Path:   parts[1],
		Proto:  parts[2],
		Header: make(map[string]string, len(lines)-1),
	}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		req.Header[textproto.CanonicalMIMEHeaderKey(name)] = strings.TrimSpace(value)
	}
	return req, nil
}
