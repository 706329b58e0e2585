package handlers

import (
	"errors"
	"net/http"

	"dynlink/internal/repository"

	"github.com/gin-gonic/gin"
)

// requireLink aborts with 404 (or 500) unless the code exists.
func (h *Handler) requireLink(c *gin.Context) bool {
	_, err := h.analytics.GetLink(c.Request.Context(), c.Param("code"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) GetLinkStats(c *gin.Context) {
	if !h.requireLink(c) {
		return
	}
	stats, err := h.analytics.GetClickStats(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetLinkClicks(c *gin.Context) {
	if !h.requireLink(c) {
		return
	}
	clicks, err := h.analytics.GetRecentClicks(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicks": clicks})
}

func (h *Handler) RecalculateClickCounts(c *gin.Context) {
	res, err := h.analytics.RecalculateAllClickCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ShowStats(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()

	link, err := h.analytics.GetLink(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Code": code})
		return
	}
	if err != nil {
		h.logger.Error("Stats lookup failed", "code", code, "error", err)
		c.HTML(http.StatusServiceUnavailable, "unavailable.html", gin.H{"Code": code})
		return
	}

	stats, err := h.analytics.GetClickStats(ctx, code)
	if err != nil {
		h.logger.Error("Stats aggregation failed", "code", code, "error", err)
		c.HTML(http.StatusServiceUnavailable, "unavailable.html", gin.H{"Code": code})
		return
	}
	recentClicks, err := h.analytics.GetRecentClicks(ctx, code)
	if err != nil {
		h.logger.Error("Recent clicks lookup failed", "code", code, "error", err)
		c.HTML(http.StatusServiceUnavailable, "unavailable.html", gin.H{"Code": code})
		return
	}

	c.HTML(http.StatusOK, "stats.html", gin.H{
		"Link":         link,
		"Stats":        stats,
		"RecentClicks": recentClicks,
	})
}
