package logging

import (
	"io"
	"os"
	"sync"

	"github.com/GrainArc/SketchMap/config"
	"github.com/sirupsen/logrus"
)

var (
	base      = logrus.New()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

func init() {
	Configure(config.MainConfig.Log)
}

// Configure 设置日志级别与格式，SKETCHMAP_LOG_LEVEL 优先
func Configure(cfg config.LogConfig) {
	levelStr := cfg.Level
	if env := os.Getenv("SKETCHMAP_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch cfg.Format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetOutput 重定向所有组件日志
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// NewLogger 返回带 component 字段的日志，同名组件复用
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, ok := loggers[component]; ok {
		return logger
	}
	logger := base.WithField("component", component)
	loggers[component] = logger
	return logger
}
