// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hcaumo/VisaProject/internal/application/service"
	"github.com/hcaumo/VisaProject/internal/application/workflow"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BaseURL      string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BaseURL:      "http://localhost:8080",
	}
}

// Services groups the application services the server exposes.
type Services struct {
	Applications service.ApplicationService
	Documents    service.DocumentService
	Agreements   service.AgreementService
	Reports      service.ReportService
	Engine       workflow.Engine
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	// Set gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		// Log request details
		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.config.BaseURL, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes
	api := s.router.Group("/api")
	{
		// Applications
		api.GET("/applications", handlers.ListApplications)
		api.POST("/applications", handlers.CreateApplication)
		api.GET("/applications/:id", handlers.GetApplication)
		api.PUT("/applications/:id", handlers.UpdateApplication)
		api.GET("/applications/:id/history", handlers.GetApplicationHistory)
		api.GET("/applications/:id/state", handlers.GetApplicationState)
		api.GET("/applications/:id/documents", handlers.ListApplicationDocuments)

		// Lifecycle
		api.POST("/applications/:id/submit", handlers.SubmitApplication)
		api.POST("/applications/:id/payment/complete", handlers.CompletePayment)
		api.POST("/applications/:id/agreement/retry", handlers.RetryAgreement)
		api.GET("/applications/:id/agreement", handlers.GetAgreementStatus)
		api.POST("/applications/:id/decision", handlers.DecideApplication)

		// Documents
		api.GET("/documents", handlers.ListDocuments)
		api.POST("/documents", handlers.UploadDocument)
		api.GET("/documents/:id", handlers.GetDocument)
		api.PUT("/documents/:id", handlers.UpdateDocument)
		api.PUT("/documents/:id/status", handlers.UpdateDocumentStatus)
		api.DELETE("/documents/:id", handlers.DeleteDocument)
		api.GET("/documents/:id/history", handlers.GetDocumentHistory)
		api.PUT("/documents/:id/content", handlers.UploadDocumentContent)
		api.GET("/documents/:id/content", handlers.DownloadDocumentContent)

		// Reports
		api.GET("/reports/applications", handlers.ExportApplications)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
