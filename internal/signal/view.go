package signal

import (
	"strconv"
	"time"

	"beanpulse/internal/domain"
)

// View 对外返回的驼峰表示，数值字段保证是数值。
type View struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Scans              int64     `json:"scans"`
	Repeats            int64     `json:"repeats"`
	Favorites          int64     `json:"favorites"`
	Ignores            int64     `json:"ignores"`
	Consumed           int64     `json:"consumed"`
	LastFeedback       *string   `json:"lastFeedback"`
	LastFeedbackReason *string   `json:"lastFeedbackReason"`
	LastSeen           time.Time `json:"lastSeen"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Version            int64     `json:"version"`
}

// ToView 存储行 → 对外视图。纯投影，字段一一对应。
func ToView(row domain.CoffeeSignal) View {
	name := row.CoffeeName
	if name == "" {
		name = UnknownCoffeeName
	}
	return View{
		ID:                 row.CoffeeID,
		Name:               name,
		Scans:              row.Scans,
		Repeats:            row.Repeats,
		Favorites:          row.Favorites,
		Ignores:            row.Ignores,
		Consumed:           row.Consumed,
		LastFeedback:       row.LastFeedback,
		LastFeedbackReason: row.LastFeedbackReason,
		LastSeen:           row.LastSeen,
		UpdatedAt:          row.UpdatedAt,
		Version:            row.Version,
	}
}

// ViewFromRow 裸查询（map 扫描）出来的行 → 视图。
// 数值字段缺失或非数值一律回退 0，可选文本缺失保持 null。
func ViewFromRow(row map[string]any) View {
	return View{
		ID:                 asString(row["coffee_id"]),
		Name:               nameOrPlaceholder(row["coffee_name"]),
		Scans:              asInt64(row["scans"]),
		Repeats:            asInt64(row["repeats"]),
		Favorites:          asInt64(row["favorites"]),
		Ignores:            asInt64(row["ignores"]),
		Consumed:           asInt64(row["consumed"]),
		LastFeedback:       asStringPtr(row["last_feedback"]),
		LastFeedbackReason: asStringPtr(row["last_feedback_reason"]),
		LastSeen:           asTime(row["last_seen"]),
		UpdatedAt:          asTime(row["updated_at"]),
		Version:            asInt64(row["version"]),
	}
}

func nameOrPlaceholder(v any) string {
	if s := asString(v); s != "" {
		return s
	}
	return UnknownCoffeeName
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringPtr(v any) *string {
	switch s := v.(type) {
	case string:
		return &s
	case *string:
		return s
	}
	return nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		i, _ := strconv.ParseInt(string(n), 10, 64)
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

// 裸查询里时间常以文本出现：glebarez sqlite 存 RFC3339Nano，
// mysql 不开 parseTime 回 "2006-01-02 15:04:05" 的 []byte，
// database/sql 把 driver 的 time.Time 转字符串时用 RFC3339Nano。
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return parseAnyTime(t)
	case []byte:
		return parseAnyTime(string(t))
	}
	return time.Time{}
}

func parseAnyTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
