package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/npyload/internal/logger"
	"github.com/samcharles93/npyload/internal/summary"
	"github.com/samcharles93/npyload/internal/version"
	"github.com/samcharles93/npyload/pkg/npy"
)

type Config struct {
	// MaxBodyBytes bounds an uploaded .npy stream.
	MaxBodyBytes int64
	// PreviewRows is passed to summary.Compute.
	PreviewRows int
	// StoreLimit is how many decoded summaries are retained.
	StoreLimit int
}

type Server struct {
	cfg   Config
	store *Store
	log   logger.Logger
	now   func() time.Time
}

func NewServer(cfg Config, log logger.Logger) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 20
	}
	if cfg.StoreLimit <= 0 {
		cfg.StoreLimit = 256
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		cfg:   cfg,
		store: NewStore(cfg.StoreLimit),
		log:   log,
		now:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/arrays", s.handleCreateArray)
	e.GET("/v1/arrays/:id", s.handleGetArray)
	e.DELETE("/v1/arrays/:id", s.handleDeleteArray)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.String(),
	})
}

// handleCreateArray decodes the request body as one .npy stream. The optional
// name query parameter is echoed back on the record.
func (s *Server) handleCreateArray(c *echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "read body: "+err.Error())
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", "body exceeds upload limit")
	}

	name := c.QueryParam("name")
	arr, err := npy.Decode(bytes.NewReader(body))
	if err != nil {
		status, errType := decodeStatus(err)
		s.log.Warn("decode failed", "name", name, "bytes", len(body), "error", err)
		return writeError(c, status, errType, err.Error())
	}

	rec := s.store.Create(name, summary.Compute(arr, s.cfg.PreviewRows), s.now())
	s.log.Info("decoded array", "id", rec.ID, "name", name, "dtype", rec.Summary.DType, "shape", rec.Summary.Shape)
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetArray(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeError(c, http.StatusNotFound, "not_found_error", "array not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteArray(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeError(c, http.StatusNotFound, "not_found_error", "array not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      id,
		"object":  "array.deleted",
		"deleted": true,
	})
}
