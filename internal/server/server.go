package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

// ConfigSource hands out a config snapshot per request, e.g. *config.Manager
type ConfigSource interface {
	GetConfig() *config.Config
}

// Runner executes one request, e.g. *pipeline.Pipeline
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Report, error)
}

// Builder turns a config snapshot into a runner
type Builder func(cfg *config.Config) (Runner, error)

func buildPipeline(cfg *config.Config) (Runner, error) {
	p, err := pipeline.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type Server struct {
	source  ConfigSource
	build   Builder
	sem     *semaphore.Weighted
	pidFile *PidFile
	engine  *gin.Engine
}

type Option func(*Server)

// WithBuilder replaces the production pipeline factory
func WithBuilder(b Builder) Option {
	return func(s *Server) { s.build = b }
}

// WithPidFile makes Run refuse to start while another server owns path
func WithPidFile(path string) Option {
	return func(s *Server) { s.pidFile = &PidFile{Path: path} }
}

// New builds the HTTP surface. The concurrency bound is read once from the
// initial config; later reloads do not resize it.
func New(source ConfigSource, opts ...Option) *Server {
	s := &Server{
		source: source,
		build:  buildPipeline,
	}
	for _, opt := range opts {
		opt(s)
	}

	limit := source.GetConfig().Server.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	s.sem = semaphore.NewWeighted(int64(limit))
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.POST("/uploadfile", s.handleProcess)
	r.POST("/upload", s.handleUpload)
	r.GET("/lrc/:name", s.handleLRC)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Handler returns the gin engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled or SIGINT/SIGTERM arrives, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.pidFile != nil {
		if err := s.pidFile.CheckExisting(); err != nil {
			return err
		}
		if err := s.pidFile.Create(); err != nil {
			return fmt.Errorf("failed to create PID file: %w", err)
		}
		defer s.pidFile.Remove()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := s.source.GetConfig().Server.Address
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutdown requested, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
