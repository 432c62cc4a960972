package transfer

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"qrshare/internal/httpwire"
)

const downloadPath = "/download"

// serveDownload answers a request already routed to /download. The target is
// only stat'ed until it is known to be a regular file.
func serveDownload(req *httpwire.Request, cfg Config, log zerolog.Logger) (*httpwire.Response, error) {
	if req.Method != http.MethodGet {
		return methodNotAllowed(http.MethodGet), nil
	}

	info, err := os.Stat(cfg.File)
	if err != nil || !info.Mode().IsRegular() {
		log.Warn().Str("file", cfg.File).Msg("download target missing")
		return httpwire.HTML(http.StatusNotFound, fileMissingPage), nil
	}

	start := time.Now()
	content, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.File, err)
	}

	name := filepath.Base(cfg.File)
	resp := httpwire.NewResponse(http.StatusOK, content).
		Set("Content-Type", contentType(name)).
		Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))

	if cfg.Gzip && req.AcceptsGzip() {
		compressed, err := gzipBytes(content)
		if err != nil {
			return nil, fmt.Errorf("compress %s: %w", name, err)
		}
		resp.Body = compressed
		resp.Set("Content-Encoding", "gzip")

		ratio := 0.0
		if len(compressed) > 0 {
			ratio = float64(len(content)) / float64(len(compressed))
		}
		log.Info().
			Int("original_bytes", len(content)).
			Int("compressed_bytes", len(compressed)).
			Float64("ratio", ratio).
			Dur("elapsed", time.Since(start)).
			Msg("compressed download")
	}
	return resp, nil
}

// fileSize returns the size of a regular file, or -1.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return -1
	}
	return info.Size()
}

// contentType guesses from the extension, falling back to
// application/octet-stream.
func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func gzipBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
