package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

type OfferHandler struct {
	svc services.OfferService
}

func NewOfferHandler(svc services.OfferService) *OfferHandler {
	return &OfferHandler{svc: svc}
}

type UpsertOfferRequest struct {
	CandidateID  string              `json:"candidate_id" binding:"required"`
	JobID        string              `json:"job_id" binding:"required"`
	Compensation models.Compensation `json:"compensation"`
}

// Upsert creates the offer or replaces a draft/approved one for the same candidate and job.
func (h *OfferHandler) Upsert(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req UpsertOfferRequest
	if !bindJSON(c, "OfferHandler.Upsert", &req) {
		return
	}

	offer, err := h.svc.Upsert(c.Request.Context(), actor, req.CandidateID, req.JobID, req.Compensation)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Get(c *gin.Context) {
	offer, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

func (h *OfferHandler) Review(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req reviewRequest
	if !bindJSON(c, "OfferHandler.Review", &req) {
		return
	}

	offer, err := h.svc.Review(c.Request.Context(), actor, c.Param("id"), models.ApprovalDecision(req.Decision), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Send(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	offer, err := h.svc.Send(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

type respondRequest struct {
	Accepted *bool `json:"accepted" binding:"required"`
}

func (h *OfferHandler) Respond(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req respondRequest
	if !bindJSON(c, "OfferHandler.Respond", &req) {
		return
	}

	offer, err := h.svc.Respond(c.Request.Context(), actor, c.Param("id"), *req.Accepted)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Withdraw(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	offer, err := h.svc.Withdraw(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}
