package domain

import (
	"time"

	"gorm.io/gorm"
)

// User 身份锚点：所有依赖表的外键都指向它。
// ID 是外部身份系统给的不透明字符串，创建后不可变。
// Email 可选：没有就存 NULL，不占唯一键（各库的唯一索引都不约束 NULL）。
type User struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Email        *string        `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string         `gorm:"size:64" json:"name"`
	PasswordHash string         `gorm:"size:191" json:"-"`
	Role         string         `gorm:"size:16;default:user" json:"role"` // "user"/"admin"
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// EmailString email 为 NULL 时返回 ""。
func (u *User) EmailString() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

type UserRepository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	List(offset, limit int) ([]User, int64, error)
	Update(u *User) error
	SoftDelete(id string) error
}
