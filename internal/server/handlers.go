package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/metrics"
	"github.com/leonardotrapani/lyricsync/internal/pipeline"
)

var allowedExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
}

type processRequest struct {
	FileName string `json:"fileName"`
}

func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid body: %w", err))
		return
	}
	name, err := plainName(req.FileName)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	cfg := s.source.GetConfig()
	source := filepath.Join(cfg.Storage.UploadDir, name)
	if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
		s.fail(c, http.StatusNotFound, "source_not_found", fmt.Errorf("file %s not found", name))
		return
	} else if err != nil {
		s.fail(c, http.StatusInternalServerError, "internal", fmt.Errorf("stat %s: %w", name, err))
		return
	}

	if !s.acquire(c.Request.Context(), cfg) {
		metrics.RecordRequest("busy")
		s.fail(c, http.StatusServiceUnavailable, "busy", errors.New("server busy, try again later"))
		return
	}
	defer s.sem.Release(1)

	runner, err := s.build(cfg)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "internal", fmt.Errorf("build pipeline: %w", err))
		return
	}

	ctx := c.Request.Context()
	if cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.RequestTimeout)
		defer cancel()
	}

	report, err := runner.Run(ctx, pipeline.Request{
		ID:     requestID(c),
		Source: source,
		Output: filepath.Join(cfg.Storage.OutputDir, lrcName(name)),
	})
	if err != nil {
		body := errorBody(c, pipeline.KindName(err), err)
		if stage := pipeline.StageOf(err); stage != "" {
			body["stage"] = stage
		}
		if report != nil && report.OutputPath != "" {
			body["partial_lrc_file"] = "/lrc/" + filepath.Base(report.OutputPath)
		}
		c.JSON(statusFor(err), body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Audio processed successfully",
		"lrc_file": "/lrc/" + filepath.Base(report.OutputPath),
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("missing file: %w", err))
		return
	}

	name, err := plainName(strings.ToLower(filepath.Base(file.Filename)))
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if !allowedExtensions[filepath.Ext(name)] {
		s.fail(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("unsupported file type %q", filepath.Ext(name)))
		return
	}

	cfg := s.source.GetConfig()
	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		s.fail(c, http.StatusInternalServerError, "persistence", err)
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(cfg.Storage.UploadDir, name)); err != nil {
		s.fail(c, http.StatusInternalServerError, "persistence", fmt.Errorf("save upload: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"fileName": name})
}

func (s *Server) handleLRC(c *gin.Context) {
	name, err := plainName(c.Param("name"))
	if err != nil || filepath.Ext(name) != ".lrc" {
		s.fail(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid document name"))
		return
	}

	path := filepath.Join(s.source.GetConfig().Storage.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		s.fail(c, http.StatusNotFound, "not_found", fmt.Errorf("document %s not found", name))
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.File(path)
}

// acquire waits up to the queue timeout for a pipeline slot
func (s *Server) acquire(ctx context.Context, cfg *config.Config) bool {
	if cfg.Server.QueueTimeout <= 0 {
		return s.sem.TryAcquire(1)
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.QueueTimeout)
	defer cancel()
	return s.sem.Acquire(ctx, 1) == nil
}

func (s *Server) fail(c *gin.Context, status int, kind string, err error) {
	c.JSON(status, errorBody(c, kind, err))
}

func errorBody(c *gin.Context, kind string, err error) gin.H {
	return gin.H{
		"error":      err.Error(),
		"kind":       kind,
		"request_id": requestID(c),
	}
}

// statusFor maps a pipeline error to an HTTP status
func statusFor(err error) int {
	err = pipeline.KindOf(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrConversion),
		errors.Is(err, pipeline.ErrIsolation),
		errors.Is(err, pipeline.ErrRecognitionService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// lrcName keeps the upload's extension so song.mp3 and song.wav get
// different documents
func lrcName(upload string) string {
	return upload + ".lrc"
}

// plainName rejects anything that is not a bare file name
func plainName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errors.New("fileName is required")
	case name == "." || name == "..",
		strings.ContainsAny(name, `/\`),
		strings.Contains(name, ".."):
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return name, nil
}
