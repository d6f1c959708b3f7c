package domain

import "time"

// UserStatistics 用户的一对一影子行，和 User 一起建。
// 口味画像字段存 0–10 的归一化值。
type UserStatistics struct {
	UserID     string    `gorm:"primaryKey;size:64" json:"userId"`
	Acidity    float64   `gorm:"default:0" json:"acidity"`
	Bitterness float64   `gorm:"default:0" json:"bitterness"`
	Sweetness  float64   `gorm:"default:0" json:"sweetness"`
	Body       float64   `gorm:"default:0" json:"body"`
	Roast      float64   `gorm:"default:0" json:"roast"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (UserStatistics) TableName() string { return "user_statistics" }

type StatisticsRepository interface {
	FindByUserID(userID string) (*UserStatistics, error)
	UpdateTaste(userID string, taste map[string]float64) error
}
