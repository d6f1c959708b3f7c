package provision

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"beanpulse/internal/domain"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:provision%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.UserStatistics{}))
	return db
}

func TestEnsureUserCreatesBothRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureUser(ctx, db, "u1", "alice@example.com"))

	var u domain.User
	require.NoError(t, db.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, "alice@example.com", u.EmailString())
	assert.Equal(t, "alice", u.Name) // email local-part 兜底
	assert.Equal(t, "user", u.Role)

	var st domain.UserStatistics
	require.NoError(t, db.First(&st, "user_id = ?", "u1").Error)
}

func TestEnsureUserIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureUser(ctx, db, "u1", "a@b.com"))
	require.NoError(t, EnsureUser(ctx, db, "u1", "a@b.com"))

	var userCount, statsCount int64
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", "u1").Count(&userCount).Error)
	require.NoError(t, db.Model(&domain.UserStatistics{}).Where("user_id = ?", "u1").Count(&statsCount).Error)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(1), statsCount)
}

func TestEnsureUserDoesNotOverwrite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureUser(ctx, db, "u1", "a@b.com", Opts{Name: "Alice"}))
	// 第二次换了名字也不会覆盖已有行
	require.NoError(t, EnsureUser(ctx, db, "u1", "a@b.com", Opts{Name: "Mallory"}))

	var u domain.User
	require.NoError(t, db.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, "Alice", u.Name)
}

func TestEnsureUserNameResolution(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// 显式名字优先于 email local-part
	require.NoError(t, EnsureUser(ctx, db, "u1", "bob@example.com", Opts{Name: "Bobby"}))
	var u domain.User
	require.NoError(t, db.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, "Bobby", u.Name)

	// 没有 email 也没有名字 → 空名（注意用新的目标结构体，
	// 复用 u 会把上一次的主键带进 WHERE）
	require.NoError(t, EnsureUser(ctx, db, "u2", ""))
	var u2 domain.User
	require.NoError(t, db.First(&u2, "id = ?", "u2").Error)
	assert.Equal(t, "", u2.Name)
}

func TestEnsureUserWithoutEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// 没 email 的用户存 NULL，不占唯一键：多个互不影响
	require.NoError(t, EnsureUser(ctx, db, "u1", ""))
	require.NoError(t, EnsureUser(ctx, db, "u2", ""))

	for _, id := range []string{"u1", "u2"} {
		var userCount, statsCount int64
		require.NoError(t, db.Model(&domain.User{}).Where("id = ?", id).Count(&userCount).Error)
		require.NoError(t, db.Model(&domain.UserStatistics{}).Where("user_id = ?", id).Count(&statsCount).Error)
		assert.Equal(t, int64(1), userCount, id)
		assert.Equal(t, int64(1), statsCount, id)
	}
}

func TestEnsureUserEmailTakenByOther(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureUser(ctx, db, "u1", "x@y.com"))

	// email 被别的用户占了 → 报错，不能静默吞掉
	err := EnsureUser(ctx, db, "u2", "x@y.com")
	require.Error(t, err)
	assert.True(t, IsDupKey(err) || errors.Is(err, ErrEmailTaken))

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", "u2").Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestEnsureUserEmptyID(t *testing.T) {
	db := newTestDB(t)
	err := EnsureUser(context.Background(), db, "  ", "a@b.com")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestIsDupKey(t *testing.T) {
	assert.False(t, IsDupKey(nil))
	assert.True(t, IsDupKey(fmt.Errorf("UNIQUE constraint failed: users.email")))
	assert.True(t, IsDupKey(fmt.Errorf("Error 1062: Duplicate entry 'a@b.com' for key 'email'")))
	assert.True(t, IsDupKey(fmt.Errorf(`duplicate key value violates unique constraint "users_email_key"`)))
	assert.False(t, IsDupKey(fmt.Errorf("connection refused")))
}
