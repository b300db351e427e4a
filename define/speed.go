package define

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ParseSpeed 按浏览器 parseInt(s, 10) 的方式解析速度输入：
// 忽略前导空白，允许正负号，读取连续数字，忽略其后的内容。
// 结果不是正整数时返回 DefaultSpeedMs，超过 MaxSpeedMs 时取 MaxSpeedMs。
func ParseSpeed(s string) int {
	return ParseSpeedOr(s, DefaultSpeedMs)
}

// ParseSpeedOr 同 ParseSpeed，但无效输入返回 fallback
func ParseSpeedOr(s string, fallback int) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return fallback
	}

	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && s[0] != '-' {
		return MaxSpeedMs
	}
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, MaxSpeedMs)
}

// NormalizeSpeed 非正数回落到默认值，过大的值截断到 MaxSpeedMs
func NormalizeSpeed(ms int) int {
	if ms <= 0 {
		return DefaultSpeedMs
	}
	return min(ms, MaxSpeedMs)
}
