package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/GrainArc/SketchMap/client"
	"github.com/GrainArc/SketchMap/config"
	"github.com/GrainArc/SketchMap/logging"
	"github.com/GrainArc/SketchMap/sketch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	configPath string
	cfg        config.Config
	viper      *viper.Viper
	// newBackend 测试时替换为进程内后端
	newBackend func(config.ClientConfig) backend
	now        func() time.Time
}

// backend CLI 需要的后端能力：数据集接口加导出
type backend interface {
	sketch.Backend
	Export(ctx context.Context, id sketch.DatasetID, format string) ([]byte, error)
}

func newApp() *app {
	return &app{
		newBackend: func(cfg config.ClientConfig) backend { return client.NewFromConfig(cfg) },
		now:        time.Now,
	}
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, v, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Client.BaseURL = server
	}
	logging.Configure(cfg.Log)
	logging.SetOutput(cmd.ErrOrStderr())
	a.cfg, a.viper = cfg, v
	return nil
}

// session 终端里的一次控制器会话：无界面地图面、表格列表与终端提示
type session struct {
	backend backend
	ctrl    *sketch.Controller
	surface *sketch.MemorySurface
	list    *tableList
}

func (a *app) session(out, errOut io.Writer) *session {
	b := a.newBackend(a.cfg.Client)
	surface := sketch.NewMemorySurface()
	list := newTableList(out)
	ctrl := sketch.NewController(b, surface, list, newTermNotifier(errOut))
	return &session{backend: b, ctrl: ctrl, surface: surface, list: list}
}

func parseID(arg string) (sketch.DatasetID, error) {
	id, err := sketch.ParseDatasetID(arg)
	if err != nil {
		return 0, fmt.Errorf("dataset id %q: %w", arg, err)
	}
	return id, nil
}
