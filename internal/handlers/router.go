package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"dynlink/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter, templatePath string, staticPath string) *gin.Engine {
	r := gin.Default()

	// Only listed proxies may set X-Forwarded-For; ClientIP keys rate limits and click IPs.
	if err := r.SetTrustedProxies(h.cfg.TrustedProxies); err != nil {
		h.logger.Warn("Invalid TRUSTED_PROXIES, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.SetFuncMap(template.FuncMap{
		"json": func(v interface{}) template.JS {
			a, _ := json.Marshal(v)
			return template.JS(a)
		},
	})

	if templatePath != "" {
		r.LoadHTMLGlob(templatePath)
	}
	if staticPath != "" {
		r.Static("/static", staticPath)
	}

	// Middleware
	r.Use(h.RequestID())
	store := cookie.NewStore([]byte(h.cfg.SessionSecret))
	r.Use(sessions.Sessions("dynlink_session", store))

	limited := []gin.HandlerFunc{}
	if rateLimiter != nil {
		limited = append(limited, h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Pages
	r.GET("/", h.ShowIndex)
	r.POST("/", append(limited, h.HandleCreateForm)...)
	r.GET("/dashboard", h.ShowDashboard)
	r.POST("/dashboard/recalculate", h.AdminAPIKey(), h.HandleRecalculateForm)

	// JSON API
	api := r.Group("/api/v1")
	{
		api.POST("/links", append(limited, h.CreateLink)...)
		api.GET("/links", h.ListLinks)
		api.GET("/links/:code", h.GetLink)
		api.GET("/links/:code/stats", h.GetLinkStats)
		api.GET("/links/:code/clicks", h.GetLinkClicks)

		admin := api.Group("/admin")
		admin.Use(h.AdminAPIKey())
		admin.POST("/recalculate", h.RecalculateClickCounts)
	}

	// Catch-all Redirects
	r.GET("/:code", h.RedirectToLink)
	r.GET("/:code/stats", h.ShowStats)

	return r
}
