package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/services"
)

type JobHandler struct {
	svc services.JobService
}

func NewJobHandler(svc services.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

type JobRequest struct {
	Title        string   `json:"title" binding:"required"`
	Department   string   `json:"department" binding:"required"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Urgency      string   `json:"urgency"`
	SalaryMin    int64    `json:"salary_min"`
	SalaryMax    int64    `json:"salary_max"`
	Currency     string   `json:"currency"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

func (r JobRequest) input() services.JobInput {
	return services.JobInput{
		Title:        r.Title,
		Department:   r.Department,
		Location:     r.Location,
		Type:         models.JobType(r.Type),
		Urgency:      models.Urgency(r.Urgency),
		SalaryMin:    r.SalaryMin,
		SalaryMax:    r.SalaryMax,
		Currency:     r.Currency,
		Description:  r.Description,
		Requirements: r.Requirements,
	}
}

func (h *JobHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req JobRequest
	if !bindJSON(c, "JobHandler.Create", &req) {
		return
	}

	job, err := h.svc.Create(c.Request.Context(), actor, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req JobRequest
	if !bindJSON(c, "JobHandler.Update", &req) {
		return
	}

	job, err := h.svc.Update(c.Request.Context(), actor, c.Param("id"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.svc.List(c.Request.Context(), mongorepo.JobFilter{
		Status:     models.JobStatus(c.Query("status")),
		Department: c.Query("department"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

type jobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *JobHandler) SetStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req jobStatusRequest
	if !bindJSON(c, "JobHandler.SetStatus", &req) {
		return
	}

	job, err := h.svc.SetStatus(c.Request.Context(), actor, c.Param("id"), models.JobStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type assignRequest struct {
	MemberID string `json:"member_id" binding:"required"`
	Role     string `json:"role"`
}

func (h *JobHandler) Assign(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req assignRequest
	if !bindJSON(c, "JobHandler.Assign", &req) {
		return
	}

	job, err := h.svc.AssignMember(c.Request.Context(), actor, c.Param("id"), req.MemberID, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Unassign(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	job, err := h.svc.UnassignMember(c.Request.Context(), actor, c.Param("id"), c.Param("member_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
