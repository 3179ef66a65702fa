package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

type CommentHandler struct {
	svc services.CommentService
}

func NewCommentHandler(svc services.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

type AddCommentRequest struct {
	EntityType string   `json:"entity_type" binding:"required"`
	EntityID   string   `json:"entity_id" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	ParentID   string   `json:"parent_id"`
	Mentions   []string `json:"mentions"`
}

func (h *CommentHandler) Add(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req AddCommentRequest
	if !bindJSON(c, "CommentHandler.Add", &req) {
		return
	}

	cm, err := h.svc.Add(c.Request.Context(), actor, services.AddCommentInput{
		EntityType: models.EntityType(req.EntityType),
		EntityID:   req.EntityID,
		Content:    req.Content,
		ParentID:   req.ParentID,
		Mentions:   req.Mentions,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

// List returns flat comments, or reply trees when ?threaded=true.
func (h *CommentHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), models.EntityType(c.Query("entity_type")), c.Query("entity_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if c.Query("threaded") == "true" {
		c.JSON(http.StatusOK, gin.H{"threads": services.BuildThreads(list)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

type editCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) Edit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req editCommentRequest
	if !bindJSON(c, "CommentHandler.Edit", &req) {
		return
	}

	cm, err := h.svc.Edit(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

func (h *CommentHandler) AddReaction(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req reactionRequest
	if !bindJSON(c, "CommentHandler.AddReaction", &req) {
		return
	}

	reactions, err := h.svc.AddReaction(c.Request.Context(), actor, c.Param("id"), req.Emoji)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

// RemoveReaction reads the emoji from ?emoji= since DELETE bodies are often dropped.
func (h *CommentHandler) RemoveReaction(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	reactions, err := h.svc.RemoveReaction(c.Request.Context(), actor, c.Param("id"), c.Query("emoji"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}
