package web

import (
	"context"
	"net/http"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/gin-gonic/gin"
)

type moderationHandlers struct {
	svc    ModerationService
	events mqtt.EventPublisher
}

// unwarnBody is the JSON body of POST /api/moderation/unwarn
type unwarnBody struct {
	Targets []string `json:"targets"`
	Date    string   `json:"date"`
	Actor   string   `json:"actor" binding:"required"`
}

// statusOf maps a moderation error to its HTTP status
func statusOf(err error) int {
	switch warns.Code(err) {
	case "bad_target", "invalid_date":
		return http.StatusBadRequest
	case "unknown_user", "warn_not_found":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithModerationError(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Error en la API de moderación: "+err.Error(), "WebServer")
		message = "Error interno del servidor."
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   warns.Code(err),
		"message": message,
	})
}

func (h *moderationHandlers) unwarn(c *gin.Context) {
	var body unwarnBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	result, err := h.svc.Unwarn(ctx, warns.UnwarnRequest{
		Targets:       body.Targets,
		Disambiguator: body.Date,
		Actor:         body.Actor,
	})
	if err != nil {
		abortWithModerationError(c, err)
		return
	}

	mqtt.PublishUnwarn(h.events, body.Actor, "api", result)
	c.JSON(http.StatusOK, result.Summary())
}

func (h *moderationHandlers) listWarns(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, active, err := h.svc.ActiveWarnings(ctx, c.Param("id"))
	if err != nil {
		abortWithModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":    user.ID,
		"status":    user.Status,
		"active":    active,
		"total":     len(user.Warns),
		"activeLen": len(active),
	})
}
