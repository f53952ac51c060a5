package sketch

import (
	"github.com/GrainArc/SketchMap/logging"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// Surface 地图渲染面，只提供图层增删与视图控制
type Surface interface {
	AddLayer(l *Layer)
	RemoveLayer(l *Layer)
	// UpdateLayer 图层内容（图标、路径）变化后重绘
	UpdateLayer(l *Layer)
	FitBounds(b orb.Bound)
	// SetCapture 切换十字光标采集状态
	SetCapture(on bool)
	// SetModeControls drawing 为 true 时除 active 外的模式按钮全部禁用
	SetModeControls(active Mode, drawing bool)
}

// ListView 数据集列表的展示端
type ListView interface {
	ShowLoading()
	ShowDatasets(cards []DatasetCard)
	ShowError(msg string)
}

// Level 通知级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier 短暂提示
type Notifier interface {
	Notify(level Level, msg string)
}

// LogNotifier 把提示写到日志里，无界面时使用。Log 为空时用 sketch 组件日志
type LogNotifier struct {
	Log *logrus.Entry
}

func (n LogNotifier) logger() *logrus.Entry {
	if n.Log == nil {
		return logging.NewLogger("sketch")
	}
	return n.Log
}

func (n LogNotifier) Notify(level Level, msg string) {
	entry := n.logger()
	switch level {
	case LevelError:
		entry.Error(msg)
	default:
		entry.WithField("notify_level", string(level)).Info(msg)
	}
}
