package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type CandidateHandler struct {
	svc   services.CandidateService
	files services.FileService
}

func NewCandidateHandler(svc services.CandidateService, files services.FileService) *CandidateHandler {
	return &CandidateHandler{svc: svc, files: files}
}

type CreateCandidateRequest struct {
	Name         string               `json:"name" binding:"required"`
	Email        string               `json:"email" binding:"required"`
	Phone        string               `json:"phone"`
	JobID        string               `json:"job_id" binding:"required"`
	Location     string               `json:"location"`
	Experience   int                  `json:"experience"`
	Skills       []string             `json:"skills"`
	Source       string               `json:"source"`
	Demographics *models.Demographics `json:"demographics,omitempty"`
}

func (h *CandidateHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateCandidateRequest
	if !bindJSON(c, "CandidateHandler.Create", &req) {
		return
	}

	cand, err := h.svc.Create(c.Request.Context(), actor, services.CreateCandidateInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		JobID:        req.JobID,
		Location:     req.Location,
		Experience:   req.Experience,
		Skills:       req.Skills,
		Source:       models.CandidateSource(req.Source),
		Demographics: req.Demographics,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cand)
}

func (h *CandidateHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), mongorepo.CandidateFilter{
		JobID:  c.Query("job_id"),
		Status: models.CandidateStatus(c.Query("status")),
		Limit:  int64(queryLimit(c, 100, 500)),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": list})
}

// Get returns the candidate with its job, interviews, offers and comments.
func (h *CandidateHandler) Get(c *gin.Context) {
	details, err := h.svc.GetWithRelations(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type transitionRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

func (h *CandidateHandler) Advance(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req transitionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, "CandidateHandler.Advance", &req) {
		return
	}

	cand, err := h.svc.Advance(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (h *CandidateHandler) Reject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req transitionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, "CandidateHandler.Reject", &req) {
		return
	}

	cand, err := h.svc.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (h *CandidateHandler) UpdateEvaluation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var ev models.Evaluation
	if !bindJSON(c, "CandidateHandler.UpdateEvaluation", &ev) {
		return
	}

	cand, err := h.svc.UpdateEvaluation(c.Request.Context(), actor, c.Param("id"), ev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

type updateDetailsRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// UpdateDetails changes contact details only. Activity entries keep the name
// they were written with.
func (h *CandidateHandler) UpdateDetails(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req updateDetailsRequest
	if !bindJSON(c, "CandidateHandler.UpdateDetails", &req) {
		return
	}

	cand, err := h.svc.UpdateDetails(c.Request.Context(), actor, c.Param("id"), req.Name, req.Email, req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

type attachFileRequest struct {
	Kind      string `json:"kind" binding:"required"`
	StorageID string `json:"storage_id" binding:"required"`
}

// AttachFile links an object uploaded through a signed URL to the candidate.
func (h *CandidateHandler) AttachFile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req attachFileRequest
	if !bindJSON(c, "CandidateHandler.AttachFile", &req) {
		return
	}

	cand, err := h.svc.AttachFile(c.Request.Context(), actor, c.Param("id"), models.FileKind(req.Kind), req.StorageID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

// UploadResume accepts a multipart "file" field holding a PDF.
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	const op = "CandidateHandler.UploadResume"

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if strings.ToLower(filepath.Ext(fh.Filename)) != ".pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "only .pdf is allowed", nil))
		return
	}
	if fh.Size <= 0 || fh.Size > services.MaxResumeBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff content type (read 512 bytes)
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]
	if http.DetectContentType(head) != "application/pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid content type (must be pdf)", nil))
		return
	}

	r := io.MultiReader(bytes.NewReader(head), file)
	cand, err := h.files.UploadResume(c.Request.Context(), actor, c.Param("id"), fh.Filename, fh.Size, "application/pdf", r)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}
