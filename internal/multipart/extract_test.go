package multipart

import (
	"bytes"
	"crypto/rand"
	stdmultipart "mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encode builds a body the way a browser form submission does.
func encode(t *testing.T, boundary, filename string, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	require.NoError(t, w.SetBoundary(boundary))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract_RoundTrip(t *testing.T) {
	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)

	tests := []struct {
		name    string
		content []byte
	}{
		{"plain", []byte("hello world")},
		{"embedded crlf", []byte("line1\r\nline2\r\n\r\nline3")},
		{"leading and trailing crlf", []byte("\r\nmiddle\r\n")},
		{"lone cr and lf", []byte("a\rb\nc\r")},
		{"random binary", random},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const boundary = "----WebKitFormBoundary7MA4YWxkTrZu0gW"
			body := encode(t, boundary, "photo.jpg", tt.content)

			part, ok := Extract(body, boundary)
			require.True(t, ok)
			assert.Equal(t, "photo.jpg", part.Filename)
			assert.Equal(t, tt.content, part.Content)
		})
	}
}

func TestExtract_SkipsFieldsWithoutFilename(t *testing.T) {
	body := []byte("--xyz\r\n" +
		"Content-Disposition: form-data; name=\"note\"\r\n\r\n" +
		"just text\r\n" +
		"--xyz\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"payload\r\n" +
		"--xyz--\r\n")

	part, ok := Extract(body, "xyz")
	require.True(t, ok)
	assert.Equal(t, "a.txt", part.Filename)
	assert.Equal(t, "payload", string(part.Content))
}

func TestExtract_LFOnlyFraming(t *testing.T) {
	body := []byte("--b\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"unix.txt\"\n\n" +
		"data\n" +
		"--b--\n")

	part, ok := Extract(body, "b")
	require.True(t, ok)
	assert.Equal(t, "unix.txt", part.Filename)
	assert.Equal(t, "data", string(part.Content))
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		boundary string
	}{
		{"empty body", nil, "b"},
		{"empty boundary", encode(t, "b", "a.txt", []byte("x")), ""},
		{"wrong boundary", encode(t, "b", "a.txt", []byte("x")), "other"},
		{"empty content", encode(t, "b", "a.txt", nil), "b"},
		{"empty filename", encode(t, "b", "", []byte("x")), "b"},
		{"no filename marker", []byte("--b\r\nContent-Disposition: form-data; name=\"file\"\r\n\r\nx\r\n--b--\r\n"), "b"},
		{"no header separator", []byte("--b\r\nContent-Disposition: form-data; filename=\"a\"\r\nx"), "b"},
		{"unterminated filename", []byte("--b\r\nfilename=\"abc"), "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part, ok := Extract(tt.body, tt.boundary)
			assert.False(t, ok)
			assert.Zero(t, part)
		})
	}
}
