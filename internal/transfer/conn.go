// Package transfer implements the per-connection request handling and the
// sequential accept loop of the file transfer server.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"qrshare/internal/httpwire"
)

// HandleConn serves exactly one request on conn and closes it. Empty and
// malformed requests are dropped without a response and without an error.
func HandleConn(conn net.Conn, cfg Config, log zerolog.Logger) error {
	defer conn.Close()

	start := time.Now()
	var rw io.ReadWriter = conn
	if cfg.Timeout > 0 {
		rw = idleConn{Conn: conn, timeout: cfg.Timeout}
	}

	req, err := httpwire.ReadRequest(rw)
	switch {
	case errors.Is(err, httpwire.ErrEmptyRequest), errors.Is(err, httpwire.ErrMalformedRequest):
		log.Debug().Err(err).Msg("dropped connection")
		return nil
	case err != nil:
		return err
	}

	resp, err := Respond(req, cfg, log)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	resp.Set("Connection", "close")

	n, err := resp.WriteTo(rw)
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	log.Info().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.Status).
		Int64("bytes", n).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return nil
}

// writeChunk bounds a single write so the deadline is refreshed while a
// large body is still draining.
const writeChunk = 16 << 10

// idleConn moves the deadline forward before every read and write, so only
// a peer that stops sending or reading for longer than timeout is cut off.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c idleConn) Read(p []byte) (int, error) {
	if err := c.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c idleConn) Write(p []byte) (int, error) {
	var n int
	for len(p) > 0 {
		chunk := p
		if len(chunk) > writeChunk {
			chunk = chunk[:writeChunk]
		}
		if err := c.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return n, err
		}
		m, err := c.Conn.Write(chunk)
		n += m
		if err != nil {
			return n, err
		}
		p = p[m:]
	}
	return n, nil
}

// Respond builds the response for req under cfg.
func Respond(req *httpwire.Request, cfg Config, log zerolog.Logger) (*httpwire.Response, error) {
	if cfg.Mode == Upload {
		return serveUpload(req, cfg, log)
	}

	switch req.Path {
	case "/", "/index.html":
		if req.Method == http.MethodGet {
			return httpwire.HTML(http.StatusOK, landingPage(filepath.Base(cfg.File), fileSize(cfg.File))), nil
		}
	case downloadPath:
		return serveDownload(req, cfg, log)
	}
	return httpwire.HTML(http.StatusNotFound, notFoundPage), nil
}
