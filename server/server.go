package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/logging"
	"github.com/hupe1980/s3agent/runner"
)

// InvocationIDHeader carries the runner invocation ID on every response.
const InvocationIDHeader = "X-Invocation-Id"

// Invoker runs one pipeline invocation. *runner.Runner satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, initial core.State) (runner.Result, error)
}

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
	Logger          logging.Logger
}

// Server exposes the pipeline over HTTP:
//
//	POST /invoke       run one invocation, body and response are the state mapping
//	POST /invocations  same as /invoke, for managed inference containers
//	GET  /ping         liveness probe
type Server struct {
	httpServer      *http.Server
	engine          *gin.Engine
	invoker         Invoker
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// New creates a Server with its routes registered.
func New(invoker Invoker, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	engine := gin.New()

	s := &Server{
		engine:          engine,
		invoker:         invoker,
		logger:          opts.Logger,
		shutdownTimeout: opts.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
	}

	engine.Use(gin.Recovery(), s.requestLogger())
	engine.GET("/ping", s.handlePing)
	engine.POST("/invoke", s.handleInvoke)
	engine.POST("/invocations", s.handleInvoke)

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// ListenAndServe binds the address and serves until ctx is done, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.logger.Info("HTTP server started", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleInvoke(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondWithError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	initial, err := core.StateFromMap(body)
	if err != nil {
		RespondWithError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if _, err := core.Require("request", initial, core.KeyBucket, core.KeyInputKey, core.KeyOutputKey); err != nil {
		RespondWithError(c, err)
		return
	}

	res, err := s.invoker.Invoke(c.Request.Context(), initial)
	if res.InvocationID != "" {
		c.Header(InvocationIDHeader, res.InvocationID)
	}
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res.State.ToMap())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)

		c.Next()

		s.logger.Info("HTTP request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
