// Package http serves the employee pages and the bills API.
// Handlers translate requests into calls on the page components built by
// the service factory.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/infrastructure/metrics"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// CookieName holds the session token
	CookieName string
	// DraftCookie holds the id of the pending upload of the new bill form
	DraftCookie string
	DraftTTL    time.Duration

	// PublicPath is where stored proofs are served when Files is set
	PublicPath    string
	MaxUploadSize int64

	CORSOrigins          []string
	CORSAllowCredentials bool
	CORSMaxAge           time.Duration

	MetricsPath string
	Version     string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "0.0.0.0",
		Port:          8080,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		CookieName:    "jwt",
		DraftCookie:   "bill_draft",
		DraftTTL:      time.Hour,
		PublicPath:    "/files",
		MaxUploadSize: 10 << 20,
		MetricsPath:   "/metrics",
		Version:       "1.0.0",
	}
}

// Deps are the collaborators of the server
type Deps struct {
	Factory *service.Factory
	// Store backs the API; nil disables it
	Store  port.BillStore
	Drafts port.DraftStore
	// Files serves stored proofs; nil when proofs live elsewhere
	Files   port.FileStorage
	Tokens  TokenParser
	Metrics *metrics.Metrics
	// Gatherer exposes metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	// Health reports component health on /health
	Health func() interface{}
	Logger Logger
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	deps       Deps
	httpServer *http.Server
	router     *gin.Engine
	logger     Logger
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.SetHTMLTemplate(loadTemplates())
	if config.MaxUploadSize > 0 {
		router.MaxMultipartMemory = config.MaxUploadSize
	}

	server := &Server{
		config: config,
		deps:   deps,
		router: router,
		logger: deps.Logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.sessionMiddleware())
}

// loggingMiddleware logs every request and records its metrics
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.deps.Metrics.ObserveRequest(c.FullPath(), method, status, latency)

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: s.config.CORSAllowCredentials,
		MaxAge:           s.config.CORSMaxAge,
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:8080"}
	}
	return cors.New(cfg)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, port.RouteBills)
	})
	s.router.GET("/health", s.healthCheck)

	if s.deps.Gatherer != nil {
		path := s.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if s.deps.Files != nil {
		s.router.GET(s.publicPath()+"/*path", s.serveProof)
	}

	employee := s.router.Group("/employee", s.requirePageUser())
	{
		employee.GET("/bills", s.billsPage)
		employee.POST("/bills/new", s.clickNewBill)
		employee.GET("/bills/export.xlsx", s.exportBills)
		employee.GET("/bills/:id/proof", s.proofModal)

		employee.GET("/bill/new", s.newBillPage)
		employee.POST("/bill/new/file", s.changeFile)
		employee.POST("/bill/new", s.submitBill)
	}

	api := s.router.Group("/api/v1", s.corsMiddleware(), requireUser())
	{
		api.GET("/bills", s.apiListBills)
		api.POST("/bills", s.apiCreateBill)
		api.PATCH("/bills/:id", s.apiUpdateBill)
	}
	s.router.OPTIONS("/api/v1/*path", s.corsMiddleware())
}

func (s *Server) publicPath() string {
	if s.config.PublicPath == "" {
		return "/files"
	}
	return s.config.PublicPath
}

// Start starts the HTTP server and blocks until ctx is done
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

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
