package provision

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beanpulse/internal/domain"
)

// 影子记录保障：任何依赖 users 外键的写入之前，
// 先确保 users + user_statistics 两行都在。
// 用 INSERT ... ON CONFLICT DO NOTHING 一条语句搞定幂等，
// 不做 SELECT 再 INSERT 的两段式（有竞态窗口）。

var (
	ErrEmptyUserID = errors.New("provision: empty user id")
	ErrEmailTaken  = errors.New("provision: email belongs to another user")
)

// Opts 首次建行时的可选字段，行已存在时全部忽略。
type Opts struct {
	Name         string // 不传就用 email 的 @ 前半段
	PasswordHash string
	Role         string
}

// EnsureUser 幂等保障 userID 的 users 行和 user_statistics 行都存在。
// db 由调用方显式传入，可以是事务句柄。
// 每张表至多一次 INSERT；库错误原样上抛，不重试。
func EnsureUser(ctx context.Context, db *gorm.DB, userID, email string, opts ...Opts) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	var o Opts
	if len(opts) > 0 {
		o = opts[0]
	}
	name := o.Name
	if name == "" {
		name = emailLocalPart(email)
	}
	role := o.Role
	if role == "" {
		role = "user"
	}

	u := domain.User{
		ID:           userID,
		Name:         name,
		PasswordHash: o.PasswordHash,
		Role:         role,
	}
	if e := strings.TrimSpace(email); e != "" {
		u.Email = &e
	}
	// 冲突目标只认主键：同一个 userID 重来是幂等 no-op，
	// email 撞了别的用户必须冒错误，不能静默吞掉。
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&u)
	if res.Error != nil && !IsDupKey(res.Error) {
		return res.Error
	}
	if res.Error != nil || res.RowsAffected == 0 {
		// 行没插进去。两种可能：id 行本来就在（幂等），
		// 或者 email 被别的用户占了（行不在，必须报错）。
		var n int64
		if err := db.WithContext(ctx).
			Model(&domain.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if res.Error != nil {
				return res.Error
			}
			return ErrEmailTaken
		}
	}

	st := domain.UserStatistics{UserID: userID}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&st).Error
}

// IsDupKey 撞唯一键的错误归类成“已存在”，上层当良性处理。
// 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异。
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed")
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return ""
}
