package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/services"
)

// FileHandler serves blob access. Storage ids contain slashes, so clients send
// them path-escaped as a single segment.
type FileHandler struct {
	svc services.FileService
}

func NewFileHandler(svc services.FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

type uploadURLRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

func (h *FileHandler) UploadURL(c *gin.Context) {
	var req uploadURLRequest
	if !bindJSON(c, "FileHandler.UploadURL", &req) {
		return
	}

	ticket, err := h.svc.GenerateUploadURL(c.Request.Context(), req.ContentType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *FileHandler) URL(c *gin.Context) {
	url, expires, err := h.svc.GetURL(c.Request.Context(), c.Param("storage_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_at": expires})
}

// Download re-streams the object so browsers never see the signed URL.
func (h *FileHandler) Download(c *gin.Context) {
	blob, err := h.svc.Download(c.Request.Context(), c.Param("storage_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer blob.Body.Close()

	c.Header("Content-Type", blob.ContentType)
	if blob.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, blob.Body)
}
