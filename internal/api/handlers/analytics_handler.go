package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/services"
)

type AnalyticsHandler struct {
	svc services.AnalyticsService
}

func NewAnalyticsHandler(svc services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Metrics(c *gin.Context) {
	m, err := h.svc.Metrics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *AnalyticsHandler) Funnel(c *gin.Context) {
	f, err := h.svc.Funnel(c.Request.Context(), c.Query("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *AnalyticsHandler) TimeToHire(c *gin.Context) {
	t, err := h.svc.TimeToHire(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *AnalyticsHandler) Sources(c *gin.Context) {
	sources, err := h.svc.Sources(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func (h *AnalyticsHandler) Interviews(c *gin.Context) {
	m, err := h.svc.Interviews(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Compliance defaults to the gender dimension.
func (h *AnalyticsHandler) Compliance(c *gin.Context) {
	r, err := h.svc.Compliance(c.Request.Context(), c.DefaultQuery("dimension", "gender"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
