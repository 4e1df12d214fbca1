package util

import (
	"math"

	"github.com/google/uuid"
)

// IsValidID 判断字符串是否为合法的实体 ID（UUID）
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Percent 返回 round(100·part/whole)，whole 为 0 时返回 0
func Percent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}
