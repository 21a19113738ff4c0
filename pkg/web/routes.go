package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader   = "X-Api-Key"
	requestTimeout = 30 * time.Second
)

// ModerationService is the part of warns.Service the API exposes
type ModerationService interface {
	Unwarn(ctx context.Context, req warns.UnwarnRequest) (*warns.UnwarnResult, error)
	ActiveWarnings(ctx context.Context, userID string) (*models.User, []models.Warning, error)
}

// SetupAPIRoutes sets up the status and metrics routes, and the moderation
// routes when svc is not nil
func SetupAPIRoutes(s *Server, svc ModerationService, events mqtt.EventPublisher) {
	s.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)
	}

	if svc == nil {
		return
	}

	h := &moderationHandlers{svc: svc, events: events}
	mod := api.Group("/moderation", s.apiKeyMiddleware())
	{
		mod.POST("/unwarn", h.unwarn)
		mod.GET("/users/:id/warns", h.listWarns)
	}
}

// apiKeyMiddleware only lets requests carrying the configured key through
func (s *Server) apiKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "API Disabled",
				"message": "La API de moderación no está configurada.",
			})
			return
		}

		key := c.GetHeader(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "API key inválida.",
			})
			return
		}

		c.Next()
	}
}

// statusHandler returns the bot and database status
func statusHandler(c *gin.Context) {
	db := database.Get()
	client := discord.Get()

	dbStatus, dbOnline := db.GetStatus()

	botOnline := false
	if client != nil {
		botOnline = client.IsReady()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":        dbStatus,
			"isOnline":      dbOnline,
			"pendingWrites": pendingWrites(db),
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

func pendingWrites(db *database.Database) int {
	if db == nil {
		return 0
	}
	return db.PendingWrites()
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyGuard Go is running",
	})
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"guilds":   client.GuildCount(),
		"isReady":  client.IsReady(),
	})
}
