package repo

import (
	"errors"

	"gorm.io/gorm"

	"beanpulse/internal/domain"
)

// ErrVersionConflict 乐观锁没命中：别人先写了一版。
var ErrVersionConflict = errors.New("signal: version conflict")

type SignalRepo struct{ db *gorm.DB }

var _ domain.SignalRepository = (*SignalRepo)(nil)

func NewSignalRepo(db *gorm.DB) *SignalRepo { return &SignalRepo{db: db} }

func (r *SignalRepo) Find(userID, coffeeID string) (*domain.CoffeeSignal, error) {
	var s domain.CoffeeSignal
	err := r.db.First(&s, "user_id = ? AND coffee_id = ?", userID, coffeeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SignalRepo) ListByUser(userID string, offset, limit int) ([]domain.CoffeeSignal, int64, error) {
	var rows []domain.CoffeeSignal
	tx := r.db.Model(&domain.CoffeeSignal{}).Where("user_id = ?", userID)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := tx.Offset(offset).Limit(limit).Order("last_seen desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *SignalRepo) Insert(s *domain.CoffeeSignal) error {
	return r.db.Create(s).Error
}

// UpdateVersioned 条件更新：WHERE version = expected。
// 没命中行说明并发方先写了，返回 false 让上层重读重算。
func (r *SignalRepo) UpdateVersioned(s *domain.CoffeeSignal, expected int64) (bool, error) {
	res := r.db.Model(&domain.CoffeeSignal{}).
		Where("user_id = ? AND coffee_id = ? AND version = ?", s.UserID, s.CoffeeID, expected).
		Updates(map[string]any{
			"coffee_name":          s.CoffeeName,
			"scans":                s.Scans,
			"repeats":              s.Repeats,
			"favorites":            s.Favorites,
			"ignores":              s.Ignores,
			"consumed":             s.Consumed,
			"last_feedback":        s.LastFeedback,
			"last_feedback_reason": s.LastFeedbackReason,
			"last_seen":            s.LastSeen,
			"updated_at":           s.UpdatedAt,
			"version":              s.Version,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// topRow 聚合结果的扫描目标。时间列用字符串接：
// 聚合表达式的列类型各驱动都不保真（sqlite 回 TEXT、mysql 不开
// parseTime 回 []byte），直接扫 time.Time 会炸，统一交给视图层解析。
type topRow struct {
	CoffeeID   string `gorm:"column:coffee_id"`
	CoffeeName string `gorm:"column:coffee_name"`
	Scans      int64  `gorm:"column:scans"`
	Repeats    int64  `gorm:"column:repeats"`
	Favorites  int64  `gorm:"column:favorites"`
	Ignores    int64  `gorm:"column:ignores"`
	Consumed   int64  `gorm:"column:consumed"`
	LastSeen   string `gorm:"column:last_seen"`
	UpdatedAt  string `gorm:"column:updated_at"`
	Version    int64  `gorm:"column:version"`
}

// TopScanned 管理端统计：全量按扫码数聚合排序，按列名给出裸行。
func (r *SignalRepo) TopScanned(limit int) ([]map[string]any, error) {
	var rows []topRow
	err := r.db.Model(&domain.CoffeeSignal{}).
		Select("coffee_id, coffee_name, SUM(scans) AS scans, SUM(repeats) AS repeats, SUM(favorites) AS favorites, SUM(ignores) AS ignores, SUM(consumed) AS consumed, MAX(last_seen) AS last_seen, MAX(updated_at) AS updated_at, MAX(version) AS version").
		Group("coffee_id, coffee_name").
		Order("scans DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{
			"coffee_id":   row.CoffeeID,
			"coffee_name": row.CoffeeName,
			"scans":       row.Scans,
			"repeats":     row.Repeats,
			"favorites":   row.Favorites,
			"ignores":     row.Ignores,
			"consumed":    row.Consumed,
			"last_seen":   row.LastSeen,
			"updated_at":  row.UpdatedAt,
			"version":     row.Version,
		})
	}
	return out, nil
}
