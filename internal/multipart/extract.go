// Package multipart pulls a single uploaded file out of a
// multipart/form-data body by scanning for boundary markers.
package multipart

import "bytes"

var (
	filenameMarker = []byte(`filename="`)
	crlfcrlf       = []byte("\r\n\r\n")
	lflf           = []byte("\n\n")
	crlf           = []byte("\r\n")
)

// Part is a file found in a multipart body. Content aliases the body.
type Part struct {
	Filename string
	Content  []byte
}

// Extract returns the first part of body that carries a filename. ok is
// false unless both the name and the content are non-empty.
func Extract(body []byte, boundary string) (part Part, ok bool) {
	if boundary == "" {
		return Part{}, false
	}
	delim := []byte("--" + boundary)

	// Anything before the first delimiter is preamble.
	first := bytes.Index(body, delim)
	if first < 0 {
		return Part{}, false
	}
	start := first + len(delim)
	for start <= len(body) {
		end := len(body)
		if i := bytes.Index(body[start:], delim); i >= 0 {
			end = start + i
		}
		if seg := body[start:end]; bytes.Contains(seg, filenameMarker) {
			return extractSegment(seg)
		}
		if end == len(body) {
			break
		}
		start = end + len(delim)
	}
	return Part{}, false
}

// extractSegment reads the filename and content of one boundary-delimited
// segment.
func extractSegment(seg []byte) (Part, bool) {
	nameStart := bytes.Index(seg, filenameMarker) + len(filenameMarker)
	nameLen := bytes.IndexByte(seg[nameStart:], '"')
	if nameLen <= 0 {
		return Part{}, false
	}
	name := string(seg[nameStart : nameStart+nameLen])

	var contentStart int
	if i := bytes.Index(seg, crlfcrlf); i >= 0 {
		contentStart = i + len(crlfcrlf)
	} else if i := bytes.Index(seg, lflf); i >= 0 {
		contentStart = i + len(lflf)
	} else {
		return Part{}, false
	}

	// LF-only framing has no CRLF past the headers.
	contentEnd := bytes.LastIndex(seg, crlf)
	if contentEnd < contentStart {
		contentEnd = bytes.LastIndexByte(seg, '\n')
	}
	if contentEnd <= contentStart {
		return Part{}, false
	}
	return Part{Filename: name, Content: seg[contentStart:contentEnd]}, true
}
