package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanpulse/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestApplyVersionMonotonic(t *testing.T) {
	cur := domain.CoffeeSignal{Version: 7}
	for _, kind := range []string{KindScan, KindIgnore, KindFavorite, KindConsumption, KindFeedback, "bogus"} {
		next := Apply(cur, Event{Kind: kind}, testNow)
		assert.Equal(t, cur.Version+1, next.Version, kind)
	}
}

func TestApplyScanAndRepeat(t *testing.T) {
	zero := domain.CoffeeSignal{}

	first := Apply(zero, Event{Kind: KindScan}, testNow)
	assert.Equal(t, int64(1), first.Scans)
	assert.Equal(t, int64(0), first.Repeats) // 首扫不算复扫

	second := Apply(first, Event{Kind: KindScan}, testNow)
	assert.Equal(t, int64(2), second.Scans)
	assert.Equal(t, int64(1), second.Repeats)

	third := Apply(second, Event{Kind: KindScan}, testNow)
	assert.Equal(t, int64(3), third.Scans)
	assert.Equal(t, int64(2), third.Repeats)
}

func TestApplyFavoriteFlag(t *testing.T) {
	zero := domain.CoffeeSignal{}

	on := Apply(zero, Event{Kind: KindFavorite, IsFavorite: true}, testNow)
	assert.Equal(t, int64(1), on.Favorites)

	// flag false：计数不动，通用步骤照走
	off := Apply(on, Event{Kind: KindFavorite, IsFavorite: false}, testNow)
	assert.Equal(t, int64(1), off.Favorites)
	assert.Equal(t, on.Version+1, off.Version)
}

func TestApplyFeedbackOverwrites(t *testing.T) {
	zero := domain.CoffeeSignal{}

	a := Apply(zero, Event{Kind: KindFeedback, Feedback: "great", FeedbackReason: "aroma"}, testNow)
	require.NotNil(t, a.LastFeedback)
	assert.Equal(t, "great", *a.LastFeedback)
	require.NotNil(t, a.LastFeedbackReason)
	assert.Equal(t, "aroma", *a.LastFeedbackReason)

	b := Apply(a, Event{Kind: KindFeedback, Feedback: "meh", FeedbackReason: "bitter"}, testNow)
	assert.Equal(t, "meh", *b.LastFeedback)
	assert.Equal(t, "bitter", *b.LastFeedbackReason)
	assert.Equal(t, a.Scans, b.Scans)
}

func TestApplyUnrecognizedKind(t *testing.T) {
	fb := "great"
	cur := domain.CoffeeSignal{
		CoffeeName:   "Ethiopia Yirgacheffe",
		Scans:        3,
		Repeats:      2,
		Favorites:    1,
		Ignores:      1,
		Consumed:     4,
		LastFeedback: &fb,
		Version:      11,
	}
	next := Apply(cur, Event{Kind: "resurrect"}, testNow)

	assert.Equal(t, cur.Scans, next.Scans)
	assert.Equal(t, cur.Repeats, next.Repeats)
	assert.Equal(t, cur.Favorites, next.Favorites)
	assert.Equal(t, cur.Ignores, next.Ignores)
	assert.Equal(t, cur.Consumed, next.Consumed)
	assert.Equal(t, cur.LastFeedback, next.LastFeedback)
	assert.Equal(t, cur.CoffeeName, next.CoffeeName)
	assert.Equal(t, cur.Version+1, next.Version)
	assert.Equal(t, testNow, next.LastSeen)
	assert.Equal(t, testNow, next.UpdatedAt)
}

func TestApplyNameResolution(t *testing.T) {
	zero := domain.CoffeeSignal{}

	// 事件带名字 → 用事件的
	a := Apply(zero, Event{Kind: KindScan, CoffeeName: "Kenya AA"}, testNow)
	assert.Equal(t, "Kenya AA", a.CoffeeName)

	// 事件没带 → 保留旧名
	b := Apply(a, Event{Kind: KindScan}, testNow)
	assert.Equal(t, "Kenya AA", b.CoffeeName)

	// 都没有 → 占位名
	c := Apply(zero, Event{Kind: KindScan}, testNow)
	assert.Equal(t, UnknownCoffeeName, c.CoffeeName)
}

func TestApplyTimestamp(t *testing.T) {
	zero := domain.CoffeeSignal{}
	evTime := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	// 事件自带时间戳优先
	a := Apply(zero, Event{Kind: KindScan, Timestamp: evTime}, testNow)
	assert.Equal(t, evTime, a.LastSeen)
	assert.Equal(t, evTime, a.UpdatedAt)

	// 没带用调用方时钟
	b := Apply(zero, Event{Kind: KindScan}, testNow)
	assert.Equal(t, testNow, b.LastSeen)
	assert.Equal(t, testNow, b.UpdatedAt)
}

func TestApplyEndToEndScenario(t *testing.T) {
	s := domain.CoffeeSignal{}

	s = Apply(s, Event{Kind: KindScan}, testNow)
	assert.Equal(t, int64(1), s.Scans)
	assert.Equal(t, int64(0), s.Repeats)
	assert.Equal(t, int64(1), s.Version)

	s = Apply(s, Event{Kind: KindScan}, testNow)
	assert.Equal(t, int64(2), s.Scans)
	assert.Equal(t, int64(1), s.Repeats)
	assert.Equal(t, int64(2), s.Version)

	s = Apply(s, Event{Kind: KindFavorite, IsFavorite: true}, testNow)
	assert.Equal(t, int64(1), s.Favorites)
	assert.Equal(t, int64(3), s.Version)

	s = Apply(s, Event{Kind: KindFeedback, Feedback: "great", FeedbackReason: "aroma"}, testNow)
	require.NotNil(t, s.LastFeedback)
	assert.Equal(t, "great", *s.LastFeedback)
	assert.Equal(t, "aroma", *s.LastFeedbackReason)
	assert.Equal(t, int64(4), s.Version)
	assert.Equal(t, int64(2), s.Scans)
	assert.Equal(t, int64(1), s.Repeats)
	assert.Equal(t, int64(1), s.Favorites)
	assert.Equal(t, int64(0), s.Ignores)
	assert.Equal(t, int64(0), s.Consumed)
}

func TestKnownKind(t *testing.T) {
	for _, k := range []string{KindScan, KindIgnore, KindFavorite, KindConsumption, KindFeedback} {
		assert.True(t, KnownKind(k), k)
	}
	assert.False(t, KnownKind("resurrect"))
	assert.False(t, KnownKind(""))
}
