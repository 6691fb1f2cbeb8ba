package curricula

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cvquery-backend/internal/extract"
	"cvquery-backend/internal/shared/server/respond"
)

// Handler exposes the analysis pipeline over HTTP.
type Handler struct {
	Svc    *Service
	Limits Limits
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, limits Limits) *Handler {
	return &Handler{Svc: svc, Limits: limits}
}

// RegisterRoutes mounts the curriculum routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/curriculum", h.analyze)
	rg.GET("/curriculum/history/:user_id", h.history)
	rg.GET("/curriculum/requests/:request_id", h.getRecord)
}

func (h *Handler) analyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid multipart form", nil)
		return
	}

	requestID := strings.TrimSpace(c.PostForm("request_id"))
	if requestID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "request_id is required", nil)
		return
	}
	userID := strings.TrimSpace(c.PostForm("user_id"))
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "user_id is required", nil)
		return
	}

	headers := form.File["files"]
	if err := ValidateFiles(headers, h.Limits); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
		return
	}

	files, err := readUploads(headers)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "could not read uploaded files", nil)
		return
	}

	resp, err := h.Svc.Execute(c.Request.Context(), files, c.PostForm("query"), requestID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeAnalysis, sanitizeError(err), nil)
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) history(c *gin.Context) {
	userID := c.Param("user_id")
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	history, err := h.Svc.History(c.Request.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "could not load history", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"user_id": userID,
		"history": history,
		"total":   len(history),
	})
}

func (h *Handler) getRecord(c *gin.Context) {
	view, err := h.Svc.GetByRequestID(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "analysis record not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "could not load record", nil)
		return
	}
	respond.JSON(c, http.StatusOK, view)
}

func readUploads(headers []*multipart.FileHeader) ([]extract.File, error) {
	files := make([]extract.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, extract.File{Name: header.Filename, Data: data})
	}
	return files, nil
}
