package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type ScheduleRequest struct {
	CandidateID     string    `json:"candidate_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"`
	Location        string    `json:"location"`
	Interviewers    []string  `json:"interviewers"`
	NotifyMemberIDs []string  `json:"notify_member_ids"`
}

func (h *InterviewHandler) Schedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req ScheduleRequest
	if !bindJSON(c, "InterviewHandler.Schedule", &req) {
		return
	}

	iv, err := h.svc.Schedule(c.Request.Context(), actor, services.ScheduleInput{
		CandidateID:     req.CandidateID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Type:            models.InterviewType(req.Type),
		Location:        req.Location,
		Interviewers:    req.Interviewers,
		NotifyMemberIDs: req.NotifyMemberIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, iv)
}

type rescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (h *InterviewHandler) Reschedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req rescheduleRequest
	if !bindJSON(c, "InterviewHandler.Reschedule", &req) {
		return
	}

	iv, err := h.svc.Reschedule(c.Request.Context(), actor, c.Param("id"), req.ScheduledAt, req.DurationMinutes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	iv, err := h.svc.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) NoShow(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	iv, err := h.svc.MarkNoShow(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

type feedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
}

func (h *InterviewHandler) Feedback(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req feedbackRequest
	if !bindJSON(c, "InterviewHandler.Feedback", &req) {
		return
	}

	iv, err := h.svc.SubmitFeedback(c.Request.Context(), actor, c.Param("id"), req.Feedback, req.Rating)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) ListByCandidate(c *gin.Context) {
	list, err := h.svc.ListByCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": list})
}

func (h *InterviewHandler) Upcoming(c *gin.Context) {
	list, err := h.svc.ListUpcoming(c.Request.Context(), int64(queryLimit(c, 50, 200)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": list})
}
