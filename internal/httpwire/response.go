package httpwire

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
)

type field struct {
	name, value string
}

// Response is an HTTP/1.1 response built in memory. Headers keep insertion
// order. Content-Length is never stored; Bytes derives it from Body.
type Response struct {
	Status int
	header []field
	Body   []byte
}

// NewResponse returns a response with the given status and body.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Body: body}
}

// HTML returns a text/html response.
func HTML(status int, page string) *Response {
	return NewResponse(status, []byte(page)).Set("Content-Type", "text/html")
}

// Set adds or replaces a header and returns r for chaining.
func (r *Response) Set(name, value string) *Response {
	name = textproto.CanonicalMIMEHeaderKey(name)
	if name == "Content-Length" {
		return r
	}
	for i := range r.header {
		if r.header[i].name == name {
			r.header[i].value = value
			return r
		}
	}
	r.header = append(r.header, field{name, value})
	return r
}

// Reason is the status line's reason phrase.
func (r *Response) Reason() string {
	if s := http.StatusText(r.Status); s != "" {
		return s
	}
	return "Unknown"
}

// Bytes serializes the status line, headers, a Content-Length equal to
// len(Body), the blank line and the body.
func (r *Response) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(128 + len(r.Body))
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.Status, r.Reason())
	for _, f := range r.header {
		fmt.Fprintf(&b, "%s: %s\r\n", f.name, f.value)
	}
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(r.Body))
	b.Write(r.Body)
	return b.Bytes()
}

// WriteTo writes the serialized response to w.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
