package services

import (
	"context"
	"log/slog"
	"time"

	"dynlink/internal/models"
	"dynlink/internal/repository"
)

type ClickStats struct {
	Desktop int64 `json:"desktop"`
	Android int64 `json:"android"`
	IOS     int64 `json:"ios"`
	Total   int64 `json:"total"`
}

// AnalyticsService answers dashboard queries from the click log and repairs
// the denormalized click_count column.
type AnalyticsService struct {
	store       LinkStore
	cache       *repository.LinkCache
	audit       *AuditService
	logger      *slog.Logger
	recentLimit int
}

func NewAnalyticsService(store LinkStore, cache *repository.LinkCache, audit *AuditService, logger *slog.Logger, recentLimit int) *AnalyticsService {
	if recentLimit <= 0 {
		recentLimit = 20
	}
	return &AnalyticsService{
		store:       store,
		cache:       cache,
		audit:       audit,
		logger:      logger,
		recentLimit: recentLimit,
	}
}

func (s *AnalyticsService) GetLink(ctx context.Context, code string) (*models.DynamicLink, error) {
	return s.store.GetByCode(ctx, code)
}

// GetClickStats tallies the click log by device. A link without clicks
// yields zeroes, not an error.
func (s *AnalyticsService) GetClickStats(ctx context.Context, code string) (ClickStats, error) {
	counts, err := s.store.CountClicksByDevice(ctx, code)
	if err != nil {
		return ClickStats{}, &PersistenceError{Op: "count clicks", Err: err}
	}

	stats := ClickStats{
		Desktop: counts[models.DeviceDesktop],
		Android: counts[models.DeviceAndroid],
		IOS:     counts[models.DeviceIOS],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *AnalyticsService) ListRecentLinks(ctx context.Context) ([]models.DynamicLink, error) {
	if links, ok := s.cache.GetRecent(ctx); ok {
		return links, nil
	}
	links, err := s.store.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, &PersistenceError{Op: "list links", Err: err}
	}
	s.cache.SetRecent(ctx, links)
	return links, nil
}

func (s *AnalyticsService) GetRecentClicks(ctx context.Context, code string) ([]models.Click, error) {
	clicks, err := s.store.RecentClicks(ctx, code, s.recentLimit)
	if err != nil {
		return nil, &PersistenceError{Op: "list clicks", Err: err}
	}
	return clicks, nil
}

// RecalculateAllClickCounts rewrites every drifted click_count from the click log.
func (s *AnalyticsService) RecalculateAllClickCounts(ctx context.Context) (repository.RecountResult, error) {
	res, err := s.store.RecalculateClickCounts(ctx)
	if err != nil {
		return res, &PersistenceError{Op: "recalculate click counts", Err: err}
	}
	s.cache.InvalidateRecent(ctx)
	s.logger.Info("Click counts recalculated", "scanned", res.Scanned, "updated", res.Updated)
	s.audit.LogAction(ActionRecalculateClick, "", res, "")
	return res, nil
}

// StartReconciler runs RecalculateAllClickCounts on a fixed interval until ctx
// is cancelled. A non-positive interval disables it.
func (s *AnalyticsService) StartReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.logger.Info("Click count reconciler starting", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RecalculateAllClickCounts(ctx); err != nil {
				s.logger.Error("Scheduled recalculation failed", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Click count reconciler stopping")
			return
		}
	}
}
