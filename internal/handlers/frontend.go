package handlers

import (
	"encoding/base64"
	"html/template"
	"net/http"

	"dynlink/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ShowIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) HandleCreateForm(c *gin.Context) {
	var form CreateLinkRequest
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", gin.H{
			"Error": "Invalid Input: " + err.Error(),
			"Form":  form,
		})
		return
	}

	created, err := h.shortener.CreateLink(c.Request.Context(), h.createInput(c, form))
	if err != nil {
		c.HTML(creationStatus(err), "index.html", gin.H{
			"Error": "Failed to create link: " + err.Error(),
			"Form":  form,
		})
		return
	}

	var qrPNG, qrSVG template.URL
	if created.QRCode != "" {
		qrPNG = template.URL("data:image/png;base64," + created.QRCode)
	}
	svg, err := h.qrService.GenerateQRCodeSVG(services.QROptions{Content: created.ShortURL})
	if err != nil {
		h.logger.Warn("SVG QR rendering failed", "code", created.Link.ID, "error", err)
	} else {
		qrSVG = template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)))
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Message":   "Link created successfully!",
		"ShortURL":  created.ShortURL,
		"ShortCode": created.Link.ID,
		"QRData":    qrPNG,
		"QRSVG":     qrSVG,
	})
}
