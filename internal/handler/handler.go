package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	mode string
}

func NewHandler(mockMode bool) *Handler {
	mode := "live"
	if mockMode {
		mode = "mock"
	}
	return &Handler{mode: mode}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"mode":      h.mode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
