package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/church"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
	"github.com/openchurchhq/church-community-backend/internal/pkg/storage"
)

const (
	maxLogoBytes  = 5 << 20 // 5 MiB
	logoMaxWidth  = 512
	logoMaxHeight = 512
)

type Handler struct {
	service church.Service
	files   storage.Storage
}

func NewHandler(service church.Service, files storage.Storage) *Handler {
	return &Handler{service: service, files: files}
}

func churchID(c *gin.Context) (string, bool) {
	id := c.Param("churchID")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid church ID"})
		return "", false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateChurchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ch, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewChurchResponse(ch))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := churchID(c)
	if !ok {
		return
	}

	ch, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewChurchResponse(ch))
}

func (h *Handler) List(c *gin.Context) {
	var req ListChurchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	churches, total, err := h.service.List(c.Request.Context(), church.Filter{
		Name:     req.Name,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ChurchResponse, len(churches))
	for i, ch := range churches {
		items[i] = NewChurchResponse(ch)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := churchID(c)
	if !ok {
		return
	}

	var req UpdateChurchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ch, err := h.service.Update(c.Request.Context(), id, auth.GetUserID(c), church.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewChurchResponse(ch))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := churchID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadLogo accepts a multipart image, normalizes it to a bounded JPEG and
// stores it for the church.
func (h *Handler) UploadLogo(c *gin.Context) {
	id, ok := churchID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required"})
		return
	}
	if fileHeader.Size > maxLogoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is too large"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read logo file"})
		return
	}
	defer src.Close()

	normalized, err := storage.NormalizeImage(src, logoMaxWidth, logoMaxHeight)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo must be a valid image"})
		return
	}

	logoPath := fmt.Sprintf("churches/%s/logo.jpg", id)
	if err := h.files.Save(c.Request.Context(), logoPath, normalized); err != nil {
		response.Error(c, err)
		return
	}

	ch, err := h.service.SetLogo(c.Request.Context(), id, auth.GetUserID(c), logoPath)
	if err != nil {
		// The stored file is orphaned on failure; remove it.
		_ = h.files.Delete(c.Request.Context(), logoPath)
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewChurchResponse(ch))
}

// Logo streams the stored church logo.
func (h *Handler) Logo(c *gin.Context) {
	id, ok := churchID(c)
	if !ok {
		return
	}

	ch, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if ch.LogoPath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "church has no logo"})
		return
	}

	reader, err := h.files.Get(c.Request.Context(), *ch.LogoPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "logo not found"})
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "image/jpeg", reader, nil)
}
