package services

import (
	"context"

	"dynlink/internal/models"
	"dynlink/internal/repository"
)

// LinkStore is the persistence surface the services depend on.
// *repository.LinkStore satisfies it.
type LinkStore interface {
	GetByCode(ctx context.Context, code string) (*models.DynamicLink, error)
	Exists(ctx context.Context, code string) (bool, error)
	InsertIfAbsent(ctx context.Context, link *models.DynamicLink) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]models.DynamicLink, error)
	AppendClick(ctx context.Context, click *models.Click) error
	RecentClicks(ctx context.Context, code string, limit int) ([]models.Click, error)
	CountClicksByDevice(ctx context.Context, code string) (map[models.DeviceType]int64, error)
	RecalculateClickCounts(ctx context.Context) (repository.RecountResult, error)
}
