package repository

import (
	"context"
	"errors"

	"dynlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// RecountResult summarises a click counter reconciliation pass.
type RecountResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated_count"`
}

// LinkStore persists dynamic links and their click log.
type LinkStore struct {
	db *gorm.DB
}

func NewLinkStore(db *gorm.DB) *LinkStore {
	return &LinkStore{db: db}
}

func (s *LinkStore) GetByCode(ctx context.Context, code string) (*models.DynamicLink, error) {
	var link models.DynamicLink
	err := s.db.WithContext(ctx).Where("id = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *LinkStore) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.DynamicLink{}).Where("id = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertIfAbsent writes the link unless its code is already taken. The
// conflict check happens inside the INSERT, so two racing callers can never
// both succeed with the same code. A false result means the code is taken.
func (s *LinkStore) InsertIfAbsent(ctx context.Context, link *models.DynamicLink) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *LinkStore) ListRecent(ctx context.Context, limit int) ([]models.DynamicLink, error) {
	var links []models.DynamicLink
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&links).Error
	return links, err
}

// AppendClick stores the click and bumps the parent's counter in one transaction.
func (s *LinkStore) AppendClick(ctx context.Context, click *models.Click) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DynamicLink{}).
			Where("id = ?", click.LinkID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(click).Error
	})
}

func (s *LinkStore) RecentClicks(ctx context.Context, code string, limit int) ([]models.Click, error) {
	var clicks []models.Click
	err := s.db.WithContext(ctx).
		Where("link_id = ?", code).
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&clicks).Error
	return clicks, err
}

func (s *LinkStore) CountClicksByDevice(ctx context.Context, code string) (map[models.DeviceType]int64, error) {
	var rows []struct {
		DeviceType models.DeviceType
		Count      int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Click{}).
		Select("device_type, count(*) as count").
		Where("link_id = ?", code).
		Group("device_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.DeviceType]int64, len(rows))
	for _, row := range rows {
		counts[row.DeviceType] += row.Count
	}
	return counts, nil
}

// RecalculateClickCounts overwrites every drifted click_count with the number
// of rows in the click log. The new value is computed by a subquery inside the
// UPDATE so clicks landing mid-pass are not lost.
func (s *LinkStore) RecalculateClickCounts(ctx context.Context) (RecountResult, error) {
	var rows []struct {
		ID         string
		ClickCount int64
		Actual     int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.DynamicLink{}).
		Select("dynamic_links.id, dynamic_links.click_count, count(clicks.id) as actual").
		Joins("LEFT JOIN clicks ON clicks.link_id = dynamic_links.id").
		Group("dynamic_links.id, dynamic_links.click_count").
		Scan(&rows).Error
	if err != nil {
		return RecountResult{}, err
	}

	result := RecountResult{Scanned: len(rows)}
	for _, row := range rows {
		if row.ClickCount == row.Actual {
			continue
		}
		err := s.db.WithContext(ctx).
			Model(&models.DynamicLink{}).
			Where("id = ?", row.ID).
			UpdateColumn("click_count", gorm.Expr("(SELECT count(*) FROM clicks WHERE clicks.link_id = ?)", row.ID)).Error
		if err != nil {
			return result, err
		}
		result.Updated++
	}
	return result, nil
}
