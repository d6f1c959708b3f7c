package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanpulse/internal/domain"
)

func TestToViewRoundTrip(t *testing.T) {
	fb := "great"
	reason := "aroma"
	seen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	row := domain.CoffeeSignal{
		UserID:             "u1",
		CoffeeID:           "c1",
		CoffeeName:         "Kenya AA",
		Scans:              5,
		Repeats:            4,
		Favorites:          2,
		Ignores:            1,
		Consumed:           3,
		LastFeedback:       &fb,
		LastFeedbackReason: &reason,
		LastSeen:           seen,
		UpdatedAt:          seen,
		Version:            9,
	}

	v := ToView(row)
	assert.Equal(t, "c1", v.ID)
	assert.Equal(t, "Kenya AA", v.Name)
	assert.Equal(t, int64(5), v.Scans)
	assert.Equal(t, int64(4), v.Repeats)
	assert.Equal(t, int64(2), v.Favorites)
	assert.Equal(t, int64(1), v.Ignores)
	assert.Equal(t, int64(3), v.Consumed)
	require.NotNil(t, v.LastFeedback)
	assert.Equal(t, "great", *v.LastFeedback)
	require.NotNil(t, v.LastFeedbackReason)
	assert.Equal(t, "aroma", *v.LastFeedbackReason)
	assert.Equal(t, seen, v.LastSeen)
	assert.Equal(t, seen, v.UpdatedAt)
	assert.Equal(t, int64(9), v.Version)
}

func TestToViewOptionalFieldsAbsent(t *testing.T) {
	v := ToView(domain.CoffeeSignal{CoffeeID: "c2"})
	assert.Nil(t, v.LastFeedback)
	assert.Nil(t, v.LastFeedbackReason)
	assert.Equal(t, UnknownCoffeeName, v.Name)
	assert.Zero(t, v.Scans)
}

func TestViewFromRowCoercion(t *testing.T) {
	seen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	row := map[string]any{
		"coffee_id":     "c3",
		"coffee_name":   "Colombia Huila",
		"scans":         int64(7),
		"repeats":       float64(6), // SUM() 在部分驱动下回 float
		"favorites":     "2",        // 字符串数值也收
		"ignores":       []byte("1"),
		"consumed":      nil, // 缺失 → 0
		"last_feedback": "great",
		"last_seen":     seen,
		"updated_at":    seen,
		"version":       int64(10),
	}

	v := ViewFromRow(row)
	assert.Equal(t, "c3", v.ID)
	assert.Equal(t, "Colombia Huila", v.Name)
	assert.Equal(t, int64(7), v.Scans)
	assert.Equal(t, int64(6), v.Repeats)
	assert.Equal(t, int64(2), v.Favorites)
	assert.Equal(t, int64(1), v.Ignores)
	assert.Equal(t, int64(0), v.Consumed)
	require.NotNil(t, v.LastFeedback)
	assert.Equal(t, "great", *v.LastFeedback)
	assert.Nil(t, v.LastFeedbackReason)
	assert.Equal(t, seen, v.LastSeen)
	assert.Equal(t, int64(10), v.Version)
}

func TestViewFromRowTextTimestamps(t *testing.T) {
	// 聚合裸查询的时间列在 sqlite/mysql 下是文本，不是 time.Time
	v := ViewFromRow(map[string]any{
		"coffee_id":  "c5",
		"last_seen":  "2025-06-01T12:00:00.5Z",
		"updated_at": []byte("2025-06-01 12:00:00"),
	})
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 500000000, time.UTC), v.LastSeen)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), v.UpdatedAt)

	// 解析不了的文本回退零值
	z := ViewFromRow(map[string]any{"last_seen": "not-a-time"})
	assert.True(t, z.LastSeen.IsZero())
}

func TestViewFromRowNonNumericFallsBackToZero(t *testing.T) {
	v := ViewFromRow(map[string]any{
		"coffee_id": "c4",
		"scans":     "garbage",
		"repeats":   struct{}{},
	})
	assert.Equal(t, int64(0), v.Scans)
	assert.Equal(t, int64(0), v.Repeats)
	assert.Equal(t, UnknownCoffeeName, v.Name)
}
