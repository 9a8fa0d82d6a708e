// Package api serves the task service as a local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo/internal/service"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server is the task API server
type Server struct {
	svc    service.Service
	router *gin.Engine
	logger *log.Logger
}

// NewServer creates a new API server. A nil logger discards.
func NewServer(svc service.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		svc:    svc,
		router: router,
		logger: logger,
	}

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleList)
		api.GET("/tasks/:id", s.handleGet)
		api.POST("/tasks", s.handleCreate)
		api.PUT("/tasks/:id", s.handleUpdate)
		api.POST("/tasks/:id/toggle", s.handleToggle)
		api.DELETE("/tasks/:id", s.handleDelete)
		api.PUT("/sort", s.handleSort)
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Printf("server stopped")
	return nil
}
