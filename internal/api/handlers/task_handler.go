package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

type TaskHandler struct {
	svc services.TaskService
}

func NewTaskHandler(svc services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type CreateTaskRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	AssigneeID  string             `json:"assignee_id" binding:"required"`
	RelatedTo   *models.RelatedRef `json:"related_to,omitempty"`
	Priority    string             `json:"priority"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !bindJSON(c, "TaskHandler.Create", &req) {
		return
	}

	task, err := h.svc.Create(c.Request.Context(), actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		RelatedTo:   req.RelatedTo,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Mine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	tasks, err := h.svc.ListMine(c.Request.Context(), actor, c.Query("include_closed") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// ListRelated lists tasks attached to ?related_type=&related_id=.
func (h *TaskHandler) ListRelated(c *gin.Context) {
	tasks, err := h.svc.ListRelated(c.Request.Context(), models.TargetType(c.Query("related_type")), c.Query("related_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type taskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req taskStatusRequest
	if !bindJSON(c, "TaskHandler.UpdateStatus", &req) {
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), models.TaskStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type reassignRequest struct {
	AssigneeID string `json:"assignee_id" binding:"required"`
}

func (h *TaskHandler) Reassign(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req reassignRequest
	if !bindJSON(c, "TaskHandler.Reassign", &req) {
		return
	}

	task, err := h.svc.Reassign(c.Request.Context(), actor, c.Param("id"), req.AssigneeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
