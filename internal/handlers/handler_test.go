package handlers

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"dynlink/internal/config"
	"dynlink/internal/models"
	"dynlink/internal/repository"
	"dynlink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaBot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

// recordingSink captures enqueued clicks instead of persisting them.
type recordingSink struct {
	mu       sync.Mutex
	requests []services.ClickRequest
}

func (s *recordingSink) RecordClickAsync(req services.ClickRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
}

func (s *recordingSink) Requests() []services.ClickRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]services.ClickRequest(nil), s.requests...)
}

type testEnv struct {
	h     *Handler
	store *repository.LinkStore
	db    *gorm.DB
	sink  *recordingSink
}

func setupTestHandler(t *testing.T, mutate ...func(*config.Config)) testEnv {
	t.Helper()

	cfg := config.Config{
		DatabaseURL:   "sqlite://:memory:",
		BaseURL:       "https://dl.example.org",
		SessionSecret: "test-secret-12345678901234567890123456789012",
		RecentLimit:   20,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	db, err := repository.InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := repository.NewLinkStore(db)
	cache := repository.NewLinkCache(nil, logger)
	audit := services.NewAuditService(db, logger)
	qr := services.NewQRService()
	sink := &recordingSink{}

	h := NewHandler(
		cfg,
		logger,
		services.NewShortenerService(cfg.BaseURL, store, cache, audit, qr, logger),
		services.NewResolver(store, cache, logger),
		sink,
		services.NewAnalyticsService(store, cache, audit, logger, cfg.RecentLimit),
		qr,
	)
	return testEnv{h: h, store: store, db: db, sink: sink}
}

func setupTestRouter(h *Handler, limiter *services.IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(limiter, "../../web/templates/*.html", "../../web/static")
}

func seedLink(t *testing.T, store *repository.LinkStore, code string, dest models.Destinations) {
	t.Helper()
	ok, err := store.InsertIfAbsent(context.Background(), &models.DynamicLink{
		ID:        code,
		Links:     dest,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func seedClick(t *testing.T, store *repository.LinkStore, code string, device models.DeviceType) {
	t.Helper()
	require.NoError(t, store.AppendClick(context.Background(), &models.Click{
		LinkID:     code,
		Timestamp:  time.Now(),
		DeviceType: device,
		Country:    "Unknown",
		Referrer:   "Direct",
	}))
}
