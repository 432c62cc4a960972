package transfer

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects what the server does for its whole lifetime.
type Mode int

const (
	// Download serves one configured file.
	Download Mode = iota
	// Upload accepts one file per request through a browser form.
	Upload
)

func (m Mode) String() string {
	switch m {
	case Download:
		return "download"
	case Upload:
		return "upload"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DefaultDir is where uploads land and downloads are looked up.
const DefaultDir = "shared"

// DefaultTimeout is how long a connection may sit idle, with no bytes
// read or written, before it is dropped.
const DefaultTimeout = 60 * time.Second

// Config is fixed for the lifetime of a server and passed to every
// connection handler.
type Config struct {
	Mode Mode
	// File is the download target. Download mode only.
	File string
	// Gzip compresses downloads for peers that accept it. Download mode only.
	Gzip bool
	// Dir receives uploads. Upload mode only.
	Dir string
	// Timeout is the idle limit for a single read or write; 0 waits forever.
	Timeout time.Duration
}

// Validate checks that the fields required by the mode are set.
func (c Config) Validate() error {
	switch c.Mode {
	case Download:
		if c.File == "" {
			return errors.New("download mode needs a file")
		}
	case Upload:
		if c.Dir == "" {
			return errors.New("upload mode needs a destination directory")
		}
		if c.Gzip {
			return errors.New("gzip only applies to download mode")
		}
	default:
		return fmt.Errorf("unknown mode %v", c.Mode)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}
	return nil
}
