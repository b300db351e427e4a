package define

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode 无法识别的显示模式
var ErrUnknownMode = errors.New("unknown display mode")

// DisplayMode 图表显示模式
type DisplayMode int

const (
	ModeLine DisplayMode = iota
	ModeBar
)

func (m DisplayMode) String() string {
	if m == ModeBar {
		return "bar"
	}
	return "line"
}

// MarshalText 让模式以字符串形式出现在 JSON 中
func (m DisplayMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 解析 "line" / "bar"
func (m *DisplayMode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode 将字符串转换为显示模式，只接受 line 和 bar
func ParseMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line":
		return ModeLine, nil
	case "bar":
		return ModeBar, nil
	}
	return ModeLine, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
