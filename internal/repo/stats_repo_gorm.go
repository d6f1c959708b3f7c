package repo

import (
	"errors"

	"gorm.io/gorm"

	"beanpulse/internal/domain"
)

type StatsRepo struct{ db *gorm.DB }

var _ domain.StatisticsRepository = (*StatsRepo)(nil)

func NewStatsRepo(db *gorm.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) FindByUserID(userID string) (*domain.UserStatistics, error) {
	var st domain.UserStatistics
	err := r.db.First(&st, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &st, err
}

// UpdateTaste 只改传进来的画像列（列名 → 归一化值）。
func (r *StatsRepo) UpdateTaste(userID string, taste map[string]float64) error {
	if len(taste) == 0 {
		return nil
	}
	updates := make(map[string]any, len(taste))
	for col, v := range taste {
		updates[col] = v
	}
	return r.db.Model(&domain.UserStatistics{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
