package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) > 0 {
		if err := session.Save(); err != nil {
			h.logger.Warn("Failed to clear flash messages", "error", err)
		}
	}

	links, err := h.analytics.ListRecentLinks(c.Request.Context())
	if err != nil {
		h.logger.Error("Dashboard query failed", "error", err)
		c.HTML(http.StatusServiceUnavailable, "unavailable.html", gin.H{})
		return
	}

	var totalClicks int64
	for _, l := range links {
		totalClicks += l.ClickCount
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Links":       links,
		"TotalClicks": totalClicks,
		"Flashes":     flashes,
	})
}

func (h *Handler) HandleRecalculateForm(c *gin.Context) {
	session := sessions.Default(c)

	res, err := h.analytics.RecalculateAllClickCounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Recalculation failed", "error", err)
		session.AddFlash("Recalculation failed: " + err.Error())
	} else {
		session.AddFlash(fmt.Sprintf("Recalculated %d links, %d corrected.", res.Scanned, res.Updated))
	}
	if err := session.Save(); err != nil {
		h.logger.Warn("Failed to save flash message", "error", err)
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}
