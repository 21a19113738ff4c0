package web

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// requestLog is what the webhook reports about a request
type requestLog struct {
	Method  string
	Path    string
	IP      string
	Headers http.Header
	Query   string
}

// requestLogMiddleware reports every request and rejects hosts that do not
// match AllowedHosts
func (s *Server) requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := requestLog{
			Method:  c.Request.Method,
			Path:    c.Request.URL.Path,
			IP:      c.ClientIP(),
			Headers: c.Request.Header.Clone(),
			Query:   c.Request.URL.RawQuery,
		}
		entry.Headers.Del(apiKeyHeader)

		allowed := s.hosts == nil || s.hosts.MatchString(c.Request.Host)
		go s.webhook.send(entry, !allowed)

		if !allowed {
			logger.Warn(fmt.Sprintf("Solicitud sospechosa: %s %s desde %s (host %s)", entry.Method, entry.Path, entry.IP, c.Request.Host), "WebServer")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		logger.Debug(fmt.Sprintf("Nueva solicitud: %s %s", entry.Method, entry.Path), "WebServer")
		c.Next()
	}
}

// requestWebhook posts request embeds to a Discord webhook
type requestWebhook struct {
	url    string
	client *http.Client
}

func newRequestWebhook(url string) *requestWebhook {
	return &requestWebhook{url: url, client: &http.Client{Timeout: 5 * time.Second}}
}

func (w *requestWebhook) send(entry requestLog, suspicious bool) {
	if w.url == "" {
		return
	}

	title := "💫 | Nueva solicitud al servidor web de tipo " + entry.Method
	color := 0x00AE86
	if suspicious {
		title = fmt.Sprintf("💫 | Solicitud sospechosa rechazada: %s %s", entry.Method, entry.Path)
		color = 0xFFA500
	}

	headers, _ := json.Marshal(entry.Headers)
	query := entry.Query
	if query == "" {
		query = "{}"
	}

	body, err := json.Marshal(gin.H{"embeds": []gin.H{{
		"title": title,
		"description": fmt.Sprintf("> **Ruta:** `%s`\n> **IP:** `%s`\n> **Headers:** ```%s``` \n> **Query:** ```%s```",
			entry.Path, entry.IP, headers, query),
		"color":     color,
		"timestamp": time.Now().Format(time.RFC3339),
	}}})
	if err != nil {
		return
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Debug("Webhook de solicitudes no disponible: "+err.Error(), "WebServer")
		return
	}
	resp.Body.Close()
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultRateLimit allows 100 requests per minute per IP
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{Window: time.Minute, MaxRequests: 100}
}

// rateLimiter is a fixed-window counter per client IP. Expired windows are
// swept once per window so idle clients do not accumulate.
type rateLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg, windows: make(map[string]*window)}
}

// allow counts one request from ip at now
func (l *rateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for key, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, key)
			}
		}
		l.nextSweep = now.Add(l.cfg.Window)
	}

	w, ok := l.windows[ip]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.cfg.Window)}
		l.windows[ip] = w
	}
	w.count++
	return w.count <= l.cfg.MaxRequests
}

func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			return
		}
		c.Next()
	}
}
