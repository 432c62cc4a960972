package transfer

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// acceptRetryDelay is the pause after a failed Accept on a live listener.
const acceptRetryDelay = 100 * time.Millisecond

// Server accepts connections one at a time and handles each to completion
// before accepting the next.
type Server struct {
	cfg Config
	log zerolog.Logger
}

// NewServer validates cfg and returns a server for it.
func NewServer(cfg Config, log zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, log: log}, nil
}

// Serve runs the accept loop on ln until ctx is cancelled, then closes ln
// and returns nil. Errors from a single connection are logged and the loop
// continues.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.log.Info().Str("addr", ln.Addr().String()).Stringer("mode", s.cfg.Mode).Msg("listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error().Err(err).Msg("accept failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		log := s.connLogger(conn)
		log.Debug().Msg("client connected")
		if err := HandleConn(conn, s.cfg, log); err != nil {
			log.Error().Err(err).Msg("connection failed")
		}
	}
}

// connLogger tags every line for one connection with an id and the peer.
func (s *Server) connLogger(conn net.Conn) zerolog.Logger {
	return s.log.With().
		Str("conn", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
}
