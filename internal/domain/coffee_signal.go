package domain

import "time"

// CoffeeSignal 每个 (user, coffee) 一行的行为计数器。
// 计数器只增不减；Version 每次写 +1，用于乐观并发检测。
type CoffeeSignal struct {
	UserID             string    `gorm:"primaryKey;size:64;column:user_id"`
	CoffeeID           string    `gorm:"primaryKey;size:64;column:coffee_id"`
	CoffeeName         string    `gorm:"size:191;column:coffee_name"`
	Scans              int64     `gorm:"column:scans"`
	Repeats            int64     `gorm:"column:repeats"`
	Favorites          int64     `gorm:"column:favorites"`
	Ignores            int64     `gorm:"column:ignores"`
	Consumed           int64     `gorm:"column:consumed"`
	LastFeedback       *string   `gorm:"size:255;column:last_feedback"`
	LastFeedbackReason *string   `gorm:"size:255;column:last_feedback_reason"`
	LastSeen           time.Time `gorm:"column:last_seen"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
	Version            int64     `gorm:"column:version"`
}

func (CoffeeSignal) TableName() string { return "coffee_signals" }

type SignalRepository interface {
	Find(userID, coffeeID string) (*CoffeeSignal, error)
	ListByUser(userID string, offset, limit int) ([]CoffeeSignal, int64, error)
	Insert(s *CoffeeSignal) error
	// UpdateVersioned 只有行内 version 等于 expected 才更新，返回是否命中
	UpdateVersioned(s *CoffeeSignal, expected int64) (bool, error)
}
