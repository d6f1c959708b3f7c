package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位小写 hex，做主键比带横杠的 UUID 省地方。
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
