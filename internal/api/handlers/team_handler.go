package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

type TeamHandler struct {
	svc services.TeamService
}

func NewTeamHandler(svc services.TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

type CreateMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateMemberRequest
	if !bindJSON(c, "TeamHandler.Create", &req) {
		return
	}

	m, err := h.svc.Create(c.Request.Context(), actor, services.CreateMemberInput{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Role:   models.MemberRole(req.Role),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *TeamHandler) List(c *gin.Context) {
	members, err := h.svc.List(c.Request.Context(), c.Query("include_inactive") != "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// Me returns the resolved actor, which for a bootstrap admin has no member id.
func (h *TeamHandler) Me(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, actor)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *TeamHandler) ChangeRole(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req roleRequest
	if !bindJSON(c, "TeamHandler.ChangeRole", &req) {
		return
	}

	m, err := h.svc.ChangeRole(c.Request.Context(), actor, c.Param("id"), models.MemberRole(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *TeamHandler) Deactivate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	m, err := h.svc.Deactivate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
