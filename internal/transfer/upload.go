package transfer

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"qrshare/internal/httpwire"
	"qrshare/internal/multipart"
)

const uploadAllow = "GET, POST"

// serveUpload answers every request in upload mode.
func serveUpload(req *httpwire.Request, cfg Config, log zerolog.Logger) (*httpwire.Response, error) {
	if req.Path != "/" && req.Path != "/index.html" {
		return methodNotAllowed(uploadAllow), nil
	}
	switch req.Method {
	case http.MethodGet:
		return httpwire.HTML(http.StatusOK, uploadFormPage), nil
	case http.MethodPost:
		return storeUpload(req, cfg, log)
	default:
		return methodNotAllowed(uploadAllow), nil
	}
}

func storeUpload(req *httpwire.Request, cfg Config, log zerolog.Logger) (*httpwire.Response, error) {
	part, ok := multipart.Extract(req.Body, req.Boundary())
	if !ok {
		log.Warn().Int("body_bytes", len(req.Body)).Msg("rejected upload: no file in form")
		return httpwire.HTML(http.StatusBadRequest, invalidUploadPage), nil
	}
	name, ok := baseName(part.Filename)
	if !ok {
		log.Warn().Str("filename", part.Filename).Msg("rejected upload: unusable file name")
		return httpwire.HTML(http.StatusBadRequest, invalidUploadPage), nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", cfg.Dir, err)
	}
	dst := filepath.Join(cfg.Dir, name)
	if err := os.WriteFile(dst, part.Content, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", dst, err)
	}

	log.Info().Str("file", dst).Int("bytes", len(part.Content)).Msg("stored upload")
	return httpwire.HTML(http.StatusOK, uploadedPage(name, len(part.Content))), nil
}

// baseName keeps the last element of a client-supplied path so writes stay
// inside the destination directory. Browsers on Windows may send the full
// path with backslashes.
func baseName(name string) (string, bool) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return "", false
	}
	return name, true
}

func methodNotAllowed(allow string) *httpwire.Response {
	return httpwire.NewResponse(http.StatusMethodNotAllowed, nil).Set("Allow", allow)
}
