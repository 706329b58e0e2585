package handlers

import (
	"net/http"

	"dynlink/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RedirectToLink(c *gin.Context) {
	code := c.Param("code")

	res, err := h.resolver.Resolve(c.Request.Context(), code, c.Request.UserAgent())
	if err != nil {
		h.logger.Error("Link lookup failed", "code", code, "request_id", c.GetString("request_id"), "error", err)
		c.HTML(http.StatusServiceUnavailable, "unavailable.html", gin.H{"Code": code})
		return
	}

	// The answer depends on the user agent; keep shared caches out of it.
	c.Header("Cache-Control", "no-store")
	c.Header("Vary", "User-Agent")

	switch res.State {
	case services.StateBotBlocked:
		c.HTML(http.StatusOK, "bot.html", gin.H{"Code": code})
	case services.StateNotFound:
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Code": code})
	case services.StateNoDestination:
		c.HTML(http.StatusUnprocessableEntity, "no_destination.html", gin.H{
			"Code":   code,
			"Device": res.Device,
		})
	default:
		h.recorder.RecordClickAsync(services.ClickRequest{
			Code:      code,
			Header:    c.Request.Header.Clone(),
			IPAddress: c.ClientIP(),
		})
		c.Redirect(http.StatusFound, res.Destination)
	}
}
