package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cors-devproxy/internal/static"
)

const notFoundPage = "<h1>404 - File Not Found</h1>"

// StaticHandler serves files from the document root. Every method is
// treated as GET.
type StaticHandler struct {
	files  *static.Server
	logger *slog.Logger
}

// NewStaticHandler creates a StaticHandler.
func NewStaticHandler(files *static.Server, logger *slog.Logger) *StaticHandler {
	return &StaticHandler{
		files:  files,
		logger: logger.With("component", "static_handler"),
	}
}

// Handle streams the file named by the request path, or answers 404/500.
func (h *StaticHandler) Handle(c echo.Context) error {
	path := c.Request().URL.Path

	f, err := h.files.Open(path)
	if err != nil {
		if errors.Is(err, static.ErrNotFound) {
			h.logger.Debug("file not found", "path", path)
			return c.HTML(http.StatusNotFound, notFoundPage)
		}
		code := static.ErrorCode(err)
		h.logger.Error("serving file", "err", err, "path", path, "code", code)
		return c.String(http.StatusInternalServerError, "Server Error: "+code)
	}
	defer func() { _ = f.Close() }()

	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(f.Size, 10))
	return c.Stream(http.StatusOK, f.ContentType, f)
}
