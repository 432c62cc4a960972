package httpwire

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequest_GET(t *testing.T) {
	raw := "GET /download HTTP/1.1\r\nHost: 10.0.0.2:5000\r\naccept-encoding: gzip, deflate\r\n\r\n"

	req, err := ReadRequest(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/download", req.Path)
	assert.Equal(t, "HTTP/1.1", req.Proto)
	assert.Equal(t, "10.0.0.2:5000", req.Get("host"))
	assert.True(t, req.AcceptsGzip())
	assert.Empty(t, req.Body)
}

func TestReadRequest_BodyAcrossReads(t *testing.T) {
	body := strings.Repeat("x", 3*readChunk+17)
	raw := "POST / HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

	// OneByteReader forces the header and body to arrive in many pieces.
	req, err := ReadRequest(iotest.OneByteReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, body, string(req.Body))
}

func TestReadRequest_TrimsBodyToContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 3\r\n\r\nabcdef"

	req, err := ReadRequest(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(req.Body))
}

func TestReadRequest_ShortBodyOnEarlyClose(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\nabc"

	req, err := ReadRequest(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(req.Body))
}

func TestReadRequest_Empty(t *testing.T) {
	_, err := ReadRequest(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyRequest)
}

func TestReadRequest_Malformed(t *testing.T) {
	tests := []string{
		"GET /\r\n\r\n",
		"GARBAGE\r\n\r\n",
		"\r\n\r\n",
	}
	for _, raw := range tests {
		_, err := ReadRequest(strings.NewReader(raw))
		assert.ErrorIs(t, err, ErrMalformedRequest, "request %q", raw)
	}
}

func TestReadRequest_HeaderWithoutTerminator(t *testing.T) {
	req, err := ReadRequest(strings.NewReader("GET / HTTP/1.1\r\nHost: a"))
	require.NoError(t, err)
	assert.Equal(t, "/", req.Path)
	assert.Equal(t, "a", req.Get("Host"))
}

func TestReadRequest_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadRequest(io.MultiReader(strings.NewReader("GET / HT"), iotest.ErrReader(boom)))
	assert.ErrorIs(t, err, boom)
}

func TestRequest_Headers(t *testing.T) {
	req, err := ReadRequest(strings.NewReader(
		"POST / HTTP/1.1\r\n" +
			"content-type: multipart/form-data; boundary=----WebKitFormBoundaryAbC\r\n" +
			"Content-Length: 12\r\n" +
			"CONTENT-LENGTH: 4\r\n" +
			"not a header line\r\n\r\nbody"))
	require.NoError(t, err)

	assert.Equal(t, "----WebKitFormBoundaryAbC", req.Boundary())
	assert.Equal(t, 4, req.ContentLength(), "last duplicate wins")
	assert.Equal(t, "body", string(req.Body))
}

func TestRequest_ContentLengthDefaults(t *testing.T) {
	for _, v := range []string{"", "abc", "-5", "1.5"} {
		req := &Request{Header: map[string]string{"Content-Length": v}}
		assert.Zero(t, req.ContentLength(), "value %q", v)
	}
}

func TestRequest_Boundary(t *testing.T) {
	tests := []struct {
		ct   string
		want string
	}{
		{"multipart/form-data; boundary=abc", "abc"},
		{`multipart/form-data; boundary="quoted"`, "quoted"},
		{"multipart/form-data; boundary=abc; charset=utf-8", "abc"},
		{"text/plain", ""},
	}
	for _, tt := range tests {
		req := &Request{Header: map[string]string{"Content-Type": tt.ct}}
		assert.Equal(t, tt.want, req.Boundary(), tt.ct)
	}
}

func TestRequest_AcceptsGzip(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"gzip", true},
		{"deflate, gzip;q=0.8", true},
		{"GZIP", true},
		{"x-gzip", true},
		{"*", true},
		{"gzip;q=0", false},
		{"gzip;foo=1;q=0", false},
		{"gzip; level=1; Q=0.5", true},
		{"gzip;q=abc", false},
		{"deflate, br", false},
		{"", false},
	}
	for _, tt := range tests {
		req := &Request{Header: map[string]string{"Accept-Encoding": tt.value}}
		assert.Equal(t, tt.want, req.AcceptsGzip(), tt.value)
	}
}
