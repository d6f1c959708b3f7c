package service

import (
	"context"

	"gorm.io/gorm"

	"beanpulse/internal/domain"
	"beanpulse/internal/repo"
	"beanpulse/internal/taste"
)

// 口味画像：表单里传什么类型都行（数字 / 数字字符串 / 档位词），
// 统一过 taste.Normalize 再落到 user_statistics。

type TasteService struct {
	stats *repo.StatsRepo
}

func NewTasteService(db *gorm.DB) *TasteService {
	return &TasteService{stats: repo.NewStatsRepo(db)}
}

// 画像字段 → 列名。顺序固定，报错信息稳定。
var tasteFields = []string{"acidity", "bitterness", "sweetness", "body", "roast"}

// UpdateProfile 归一化并保存传入的画像字段，没传的列不动。
// 任何一个字段解析失败返回 *taste.FieldError，带字段名。
func (s *TasteService) UpdateProfile(ctx context.Context, userID string, in map[string]any, fallback any) (*domain.UserStatistics, error) {
	updates := make(map[string]float64, len(in))
	for _, f := range tasteFields {
		raw, ok := in[f]
		if !ok {
			continue
		}
		v, err := taste.Normalize(raw, fallback, f)
		if err != nil {
			return nil, err
		}
		updates[f] = v
	}
	if err := s.stats.UpdateTaste(userID, updates); err != nil {
		return nil, err
	}
	return s.stats.FindByUserID(userID)
}

// Profile 读当前画像。
func (s *TasteService) Profile(ctx context.Context, userID string) (*domain.UserStatistics, error) {
	return s.stats.FindByUserID(userID)
}
