package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanpulse/internal/domain"
	"beanpulse/internal/provision"
	"beanpulse/internal/taste"
)

func TestUpdateProfileMixedInputs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, provision.EnsureUser(ctx, db, "u1", "a@b.com"))

	svc := NewTasteService(db)
	st, err := svc.UpdateProfile(ctx, "u1", map[string]any{
		"acidity":    "high", // 词表
		"bitterness": 3.0,    // 数字
		"sweetness":  "7.5",  // 数字字符串
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 8.0, st.Acidity)
	assert.Equal(t, 3.0, st.Bitterness)
	assert.Equal(t, 7.5, st.Sweetness)
	assert.Equal(t, 0.0, st.Roast) // 没传的列不动
}

func TestUpdateProfilePartialUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, provision.EnsureUser(ctx, db, "u1", "a@b.com"))

	svc := NewTasteService(db)
	_, err := svc.UpdateProfile(ctx, "u1", map[string]any{"roast": "medium"}, nil)
	require.NoError(t, err)

	// 再只改 body，roast 保持
	st, err := svc.UpdateProfile(ctx, "u1", map[string]any{"body": 9}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, st.Roast)
	assert.Equal(t, 9.0, st.Body)
}

func TestUpdateProfileFallback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, provision.EnsureUser(ctx, db, "u1", "a@b.com"))

	svc := NewTasteService(db)
	st, err := svc.UpdateProfile(ctx, "u1", map[string]any{"acidity": "bogus"}, "medium")
	require.NoError(t, err)
	assert.Equal(t, 5.0, st.Acidity)
}

func TestUpdateProfileFieldError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, provision.EnsureUser(ctx, db, "u1", "a@b.com"))

	svc := NewTasteService(db)
	_, err := svc.UpdateProfile(ctx, "u1", map[string]any{"bitterness": "bogus"}, nil)
	require.Error(t, err)

	var fe *taste.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "bitterness", fe.Field)

	// 失败的请求不落库
	var st domain.UserStatistics
	require.NoError(t, db.First(&st, "user_id = ?", "u1").Error)
	assert.Equal(t, 0.0, st.Bitterness)
}

func TestProfileReadsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, provision.EnsureUser(ctx, db, "u1", "a@b.com"))

	svc := NewTasteService(db)
	_, err := svc.UpdateProfile(ctx, "u1", map[string]any{"sweetness": "strong"}, nil)
	require.NoError(t, err)

	st, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 8.0, st.Sweetness)

	missing, err := svc.Profile(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
