// Package api exposes detection and history over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"buckettool/internal/history"
	"buckettool/internal/logger"
	"buckettool/pkg/core"
	"buckettool/pkg/engine"
)

// DetectRequest is the body of POST /api/v1/detect. Omitted checks default to true.
type DetectRequest struct {
	URL         string   `json:"url"`
	CheckACL    *bool    `json:"check_acl"`
	CheckPolicy *bool    `json:"check_policy"`
	Vendors     []string `json:"vendors"`
}

type DetectResponse struct {
	URL      string         `json:"url"`
	Findings []core.Finding `json:"findings"`
	Ignored  []string       `json:"ignored_vendors,omitempty"`
}

// Server wires the detector and the optional history store to gin routes
type Server struct {
	detector engine.Detect
	store    *history.Store
	engine   *gin.Engine
}

// NewServer builds the router. store may be nil to disable history.
func NewServer(detector engine.Detect, store *history.Store, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{detector: detector, store: store, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", s.handleHealth)
	v1 := s.engine.Group("/api/v1")
	v1.POST("/detect", s.handleDetect)
	v1.GET("/history", s.handleListHistory)
	v1.DELETE("/history", s.handleClearHistory)
	return s
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Log().WithField("addr", addr).Info("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDetect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if !isHTTPURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http or https URL"})
		return
	}

	opts := core.DefaultOptions()
	if req.CheckACL != nil {
		opts.CheckACL = *req.CheckACL
	}
	if req.CheckPolicy != nil {
		opts.CheckPolicy = *req.CheckPolicy
	}
	vendors, ignored := core.ParseVendors(req.Vendors)
	opts.Vendors = vendors

	findings := s.detector.Detect(c.Request.Context(), req.URL, opts)

	if s.store != nil {
		if _, err := s.store.Record(req.URL, findings, history.Active); err != nil {
			logger.Log().WithError(err).Warn("failed to record history")
		}
	}
	c.JSON(http.StatusOK, DetectResponse{URL: req.URL, Findings: findings, Ignored: ignored})
}

func (s *Server) handleListHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"entries": []history.Entry{}})
		return
	}
	entries, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log().WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}).Debug("api request")
	}
}
