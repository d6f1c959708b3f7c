package taste

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 口味强度统一归一到 [0, 10]。
// 客户端表单里同一个字段可能传数字、数字字符串或者档位词，
// 这里按 数字 → 数字字符串 → 词表 的顺序解析，raw 不行再用 fallback 走一遍。

const (
	Min = 0
	Max = 10
)

// 档位词 → 锚点值。大小写不敏感，前后空白忽略。
var anchors = map[string]float64{
	"none":        0,
	"low":         3,
	"little":      3,
	"mild":        4,
	"medium":      5,
	"balanced":    5,
	"medium-high": 7,
	"medium_high": 7,
	"high":        8,
	"strong":      8,
	"very-high":   10,
	"very_high":   10,
}

// FieldError raw 和 fallback 都解析不出来时返回，带上出错的字段名给前端。
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid taste value for field %q", e.Field)
}

// Normalize 把任意口味强度输入转成 [0,10] 的数值。
// 纯函数，唯一的失败路径是两级输入都不可用。
func Normalize(raw, fallback any, field string) (float64, error) {
	if v, ok := resolve(raw); ok {
		return v, nil
	}
	if v, ok := resolve(fallback); ok {
		return v, nil
	}
	return 0, &FieldError{Field: field}
}

func resolve(in any) (float64, bool) {
	switch v := in.(type) {
	case nil:
		return 0, false
	case float64:
		return clampFinite(v)
	case float32:
		return clampFinite(float64(v))
	case int:
		return clamp(float64(v)), true
	case int64:
		return clamp(float64(v)), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return clampFinite(f)
		}
		if a, ok := anchors[strings.ToLower(s)]; ok {
			return a, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func clampFinite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clamp(f), true
}

func clamp(f float64) float64 {
	return math.Max(Min, math.Min(Max, f))
}
