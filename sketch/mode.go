package sketch

import (
	"fmt"
	"strings"
)

// Mode 绘制模式
type Mode int

const (
	ModePoint Mode = iota
	ModeLine
	ModePolygon
)

var modeNames = map[Mode]string{
	ModePoint:   "point",
	ModeLine:    "line",
	ModePolygon: "polygon",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid 是否为已知模式
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode 解析模式名称，兼容旧前端的 0/1/2 数字写法
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point", "points", "0":
		return ModePoint, nil
	case "line", "linestring", "1":
		return ModeLine, nil
	case "polygon", "2":
		return ModePolygon, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}
