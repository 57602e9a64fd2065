// Package static resolves request paths to files under a document root.
package static

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"cors-devproxy/internal/config"
)

// DefaultContentType is used for extensions missing from the MIME table.
const DefaultContentType = "application/octet-stream"

// defaultMIMETypes maps lower-case file extensions to content types.
var defaultMIMETypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ErrNotFound is returned when a path does not name a servable file.
var ErrNotFound = errors.New("file not found")

// File is an open document ready to be streamed to a client.
type File struct {
	io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

// Server opens files below Root. It holds no mutable state.
type Server struct {
	root      string
	index     string
	mimeTypes map[string]string
}

// NewServer creates a Server from the static config section.
func NewServer(cfg *config.Config) *Server {
	types := make(map[string]string, len(defaultMIMETypes)+len(cfg.Static.MIMETypes))
	for ext, ct := range defaultMIMETypes {
		types[ext] = ct
	}
	for ext, ct := range cfg.Static.MIMETypes {
		types[strings.ToLower(ext)] = ct
	}
	return &Server{
		root:      cfg.Static.Root,
		index:     cfg.Static.Index,
		mimeTypes: types,
	}
}

// ContentType infers a content type from the extension of name.
func (s *Server) ContentType(name string) string {
	if ct, ok := s.mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// Resolve maps a URL path to a file system path under the root.
// "/" maps to the index document. Paths with a ".." segment yield ErrNotFound.
func (s *Server) Resolve(urlPath string) (string, error) {
	if urlPath == "" || urlPath == "/" {
		return filepath.Join(s.root, s.index), nil
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", ErrNotFound
		}
	}
	if strings.Contains(urlPath, "\\") || strings.ContainsRune(urlPath, 0) {
		return "", ErrNotFound
	}
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+urlPath))), nil
}

// Open resolves urlPath and opens the file for reading. The caller closes it.
// A missing file yields ErrNotFound; any other failure is returned as is.
func (s *Server) Open(urlPath string) (*File, error) {
	name, err := s.Resolve(urlPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &fs.PathError{Op: "read", Path: name, Err: syscall.EISDIR}
	}

	return &File{
		ReadCloser:  f,
		Name:        name,
		ContentType: s.ContentType(name),
		Size:        info.Size(),
	}, nil
}

// errnoNames covers the failures a development file server realistically hits.
var errnoNames = map[syscall.Errno]string{
	syscall.EACCES:  "EACCES",
	syscall.EPERM:   "EPERM",
	syscall.EISDIR:  "EISDIR",
	syscall.ENOTDIR: "ENOTDIR",
	syscall.EMFILE:  "EMFILE",
	syscall.EIO:     "EIO",
}

// ErrorCode returns a short symbolic code for an I/O error, e.g. "EACCES".
func ErrorCode(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if name, ok := errnoNames[errno]; ok {
			return name
		}
	}
	if errors.Is(err, fs.ErrPermission) {
		return "EACCES"
	}
	return "EIO"
}
