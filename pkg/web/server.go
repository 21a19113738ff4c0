// Package web provides the HTTP API of the bot on top of Gin: health and
// status probes, Prometheus metrics and the moderation endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Options configures a Server
type Options struct {
	// WebhookURL receives an embed per request when set
	WebhookURL string
	// AllowedHosts is a regexp the Host header must match; empty allows all
	AllowedHosts string
	// APIKey guards the moderation routes; empty disables them
	APIKey    string
	RateLimit RateLimitConfig
}

// Server is the Gin engine plus the listener that serves it
type Server struct {
	engine  *gin.Engine
	apiKey  string
	hosts   *regexp.Regexp
	webhook *requestWebhook

	mu   sync.Mutex
	http *http.Server
}

var server *Server

// Init builds the global web server
func Init(opts Options) (*Server, error) {
	s, err := NewServer(opts)
	if err != nil {
		return nil, err
	}
	server = s
	return server, nil
}

// Get returns the global web server
func Get() *Server {
	return server
}

// NewServer builds the engine and its middleware chain. Routes are added
// by SetupAPIRoutes.
func NewServer(opts Options) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:  gin.New(),
		apiKey:  opts.APIKey,
		webhook: newRequestWebhook(opts.WebhookURL),
	}

	if opts.AllowedHosts != "" {
		re, err := regexp.Compile(opts.AllowedHosts)
		if err != nil {
			return nil, fmt.Errorf("allowedHosts: %w", err)
		}
		s.hosts = re
	}

	limit := opts.RateLimit
	if limit.MaxRequests == 0 {
		limit = DefaultRateLimit()
	}

	s.engine.Use(gin.Recovery(), s.requestLogMiddleware(), newRateLimiter(limit).middleware())
	s.engine.HandleMethodNotAllowed = true
	s.engine.NoRoute(jsonError(http.StatusNotFound, "Not Found", "La ruta solicitada no existe."))
	s.engine.NoMethod(jsonError(http.StatusMethodNotAllowed, "Method Not Allowed", "El método HTTP no está permitido para esta ruta."))

	return s, nil
}

func jsonError(status int, title, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(status, gin.H{"error": title, "message": message, "status": status})
	}
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}

// StartAsync serves on port in the background until Shutdown
func (s *Server) StartAsync(port string) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	go func() {
		logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("Error en el servidor web: %v", err), "WebServer")
		}
	}()
}

// Shutdown stops accepting requests and waits for the in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
