package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/services"
)

type ActivityHandler struct {
	activity      services.ActivityService
	notifications services.NotificationService
}

func NewActivityHandler(activity services.ActivityService, notifications services.NotificationService) *ActivityHandler {
	return &ActivityHandler{activity: activity, notifications: notifications}
}

func (h *ActivityHandler) List(c *gin.Context) {
	entries, err := h.activity.List(c.Request.Context(), pgrepo.ActivityFilter{
		JobID:      c.Query("job_id"),
		TargetType: models.TargetType(c.Query("target_type")),
		TargetID:   c.Query("target_id"),
		ActorID:    c.Query("actor_id"),
		Limit:      queryLimit(c, 50, 200),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

func (h *ActivityHandler) Notifications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	list, err := h.notifications.List(c.Request.Context(), actor, c.Query("unread") == "true", queryLimit(c, 50, 200))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *ActivityHandler) MarkRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
