package signal

import (
	"time"

	"beanpulse/internal/domain"
)

// 事件聚合：给定当前行和一个事件，算出下一行。
// 纯函数，不碰库也不碰全局状态，时钟由调用方传入，
// 并发策略（乐观锁 / 每 key 串行）全部留给调用方包在外面。

// UnknownCoffeeName 事件和现有行都没带名字时的占位名。
const UnknownCoffeeName = "Unknown coffee"

// 支持的事件类型。HTTP 层只放行这五种，
// 聚合本身对没见过的 kind 也不报错，只走通用步骤。
const (
	KindScan        = "scan"
	KindIgnore      = "ignore"
	KindFavorite    = "favorite"
	KindConsumption = "consumption"
	KindFeedback    = "feedback"
)

// Event 一条进站的咖啡行为事件。
type Event struct {
	Kind           string
	CoffeeName     string
	Timestamp      time.Time // 零值表示用调用方时钟
	IsFavorite     bool
	Feedback       string
	FeedbackReason string
}

// Apply 计算事件作用后的下一个聚合状态。
// cur 可以是零值（行还不存在），now 是调用方时钟的当前值。
//
// 通用步骤对所有 kind 生效：时间戳、名字兜底、version+1。
// 计数器只加不减，feedback 后写的覆盖先写的。
func Apply(cur domain.CoffeeSignal, ev Event, now time.Time) domain.CoffeeSignal {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = now
	}

	next := cur
	switch {
	case ev.CoffeeName != "":
		next.CoffeeName = ev.CoffeeName
	case cur.CoffeeName != "":
		// 保留旧名
	default:
		next.CoffeeName = UnknownCoffeeName
	}
	next.LastSeen = ts
	next.UpdatedAt = ts
	next.Version = cur.Version + 1

	switch ev.Kind {
	case KindScan:
		if cur.Scans > 0 {
			// 第二次起的扫码都算复扫
			next.Repeats++
		}
		next.Scans++
	case KindIgnore:
		next.Ignores++
	case KindFavorite:
		if ev.IsFavorite {
			next.Favorites++
		}
	case KindConsumption:
		next.Consumed++
	case KindFeedback:
		fb, reason := ev.Feedback, ev.FeedbackReason
		next.LastFeedback = &fb
		next.LastFeedbackReason = &reason
	default:
		// 未知 kind：只走通用步骤
	}
	return next
}

// KnownKind HTTP 绑定层用来拒掉不认识的事件类型。
func KnownKind(kind string) bool {
	switch kind {
	case KindScan, KindIgnore, KindFavorite, KindConsumption, KindFeedback:
		return true
	}
	return false
}
