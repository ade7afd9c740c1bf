package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	eventService "github.com/careloop/emr-gateway/internal/service/event"
	apperrors "github.com/careloop/emr-gateway/pkg/errors"
	"github.com/careloop/emr-gateway/pkg/httputil"
)

const maxPayloadBytes = 1 << 20

// Handler accepts arbitrary JSON from the remote EMR, logs it and forwards
// it onto the event broker. No signature verification.
type Handler struct {
	events *eventService.Service
	logger zerolog.Logger
}

func NewHandler(events *eventService.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		events: events,
		logger: logger.With().Str("component", "webhook").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhook", h.Receive)
}

func (h *Handler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("unreadable payload", err))
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("payload must be JSON", err))
		return
	}

	h.logger.Info().RawJSON("payload", body).Msg("webhook received")
	h.events.Publish(c.Request.Context(), eventService.TypeWebhookReceived, payload)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
