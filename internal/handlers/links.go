package handlers

import (
	"errors"
	"net/http"

	"dynlink/internal/repository"
	"dynlink/internal/services"

	"github.com/gin-gonic/gin"
)

type CreateLinkRequest struct {
	DesktopURL string `json:"desktop_url" form:"desktop_url" binding:"max=2048"`
	AndroidURL string `json:"android_url" form:"android_url" binding:"max=2048"`
	IOSURL     string `json:"ios_url" form:"ios_url" binding:"max=2048"`
}

func (h *Handler) createInput(c *gin.Context, req CreateLinkRequest) services.CreateLinkInput {
	return services.CreateLinkInput{
		DesktopURL:     req.DesktopURL,
		AndroidURL:     req.AndroidURL,
		IOSURL:         req.IOSURL,
		Host:           c.Request.Host,
		ForwardedProto: c.GetHeader("X-Forwarded-Proto"),
		TLS:            c.Request.TLS != nil,
		IPAddress:      c.ClientIP(),
	}
}

// creationStatus maps a CreateLink error to an HTTP status.
func creationStatus(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrGenerationExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CreateLink handles the API request to create a dynamic link.
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.shortener.CreateLink(c.Request.Context(), h.createInput(c, req))
	if err != nil {
		status := creationStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Link creation failed", "request_id", c.GetString("request_id"), "error", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":      created.Link.ID,
		"short_url": created.ShortURL,
		"links":     created.Link.Links,
		"qr_code":   created.QRCode,
	})
}

func (h *Handler) ListLinks(c *gin.Context) {
	links, err := h.analytics.ListRecentLinks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *Handler) GetLink(c *gin.Context) {
	link, err := h.analytics.GetLink(c.Request.Context(), c.Param("code"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, link)
}
