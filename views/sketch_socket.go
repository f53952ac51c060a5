package views

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/GrainArc/SketchMap/logging"
	"github.com/GrainArc/SketchMap/metrics"
	"github.com/GrainArc/SketchMap/sketch"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// 浏览器绘制会话：地图渲染在浏览器端完成，状态机与持久化留在服务端

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 生产环境需要严格检查
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const pingInterval = 30 * time.Second

type SketchHandler struct {
	backend sketch.Backend
	metrics *metrics.Metrics
	log     *logrus.Entry
}

func NewSketchHandler(backend sketch.Backend, m *metrics.Metrics) *SketchHandler {
	return &SketchHandler{backend: backend, metrics: m, log: logging.NewLogger("sketch-socket")}
}

// socketOp 服务端下发的渲染指令
type socketOp struct {
	Op   string      `json:"op"`
	Data interface{} `json:"data,omitempty"`
}

// socketAction 浏览器上报的交互
type socketAction struct {
	Action      string    `json:"action"`
	Mode        string    `json:"mode,omitempty"`
	Point       []float64 `json:"point,omitempty"`
	ID          int64     `json:"id,omitempty"`
	Entry       string    `json:"entry,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Content     string    `json:"content,omitempty"`
}

func (a socketAction) point() (orb.Point, bool) {
	if len(a.Point) != 2 {
		return orb.Point{}, false
	}
	return orb.Point{a.Point[0], a.Point[1]}, true
}

// SketchSession 一个 websocket 连接，同时充当地图面、列表与提示
type SketchSession struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	log    *logrus.Entry
}

var (
	_ sketch.Surface  = (*SketchSession)(nil)
	_ sketch.ListView = (*SketchSession)(nil)
	_ sketch.Notifier = (*SketchSession)(nil)
)

func (s *SketchSession) send(op string, data interface{}) {
	s.mu.Lock()
	err := s.conn.WriteJSON(socketOp{Op: op, Data: data})
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).WithField("op", op).Warn("write failed")
		s.cancel()
	}
}

func (s *SketchSession) AddLayer(l *sketch.Layer)    { s.send("add-layer", l) }
func (s *SketchSession) RemoveLayer(l *sketch.Layer) { s.send("remove-layer", gin.H{"id": l.ID}) }
func (s *SketchSession) UpdateLayer(l *sketch.Layer) { s.send("update-layer", l) }

func (s *SketchSession) FitBounds(b orb.Bound) {
	s.send("fit-bounds", [][2]float64{{b.Min[1], b.Min[0]}, {b.Max[1], b.Max[0]}})
}

func (s *SketchSession) SetCapture(on bool) {
	cursor := ""
	if on {
		cursor = "crosshair"
	}
	s.send("cursor", gin.H{"cursor": cursor})
}

func (s *SketchSession) SetModeControls(active sketch.Mode, drawing bool) {
	s.send("controls", gin.H{"active": active.String(), "drawing": drawing})
}

func (s *SketchSession) ShowLoading() {
	s.send("datasets", gin.H{"loading": true})
}

func (s *SketchSession) ShowDatasets(cards []sketch.DatasetCard) {
	if cards == nil {
		cards = []sketch.DatasetCard{}
	}
	s.send("datasets", gin.H{"loading": false, "cards": cards})
}

func (s *SketchSession) ShowError(msg string) {
	s.send("datasets-error", gin.H{"message": msg})
}

func (s *SketchSession) Notify(level sketch.Level, msg string) {
	s.send("notify", gin.H{"level": level, "message": msg})
}

// Serve GET /ws/sketch 升级为 websocket 并运行绘制会话
func (h *SketchHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade to websocket")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &SketchSession{
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		log:    h.log.WithField("remote", c.ClientIP()),
	}
	if h.metrics != nil {
		h.metrics.DrawingSessions.Inc()
		defer h.metrics.DrawingSessions.Dec()
	}
	h.handleSession(session)
}

func (h *SketchHandler) handleSession(session *SketchSession) {
	defer func() {
		session.cancel()
		session.conn.Close()
		session.log.Info("websocket session closed")
	}()

	ctrl := sketch.NewController(h.backend, session, session, session)
	ctrl.Init(session.ctx)
	session.send("icons", ctrl.Editor().Icons())

	// 心跳
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-session.ctx.Done():
				return
			case <-ticker.C:
				session.mu.Lock()
				err := session.conn.WriteMessage(websocket.PingMessage, nil)
				session.mu.Unlock()
				if err != nil {
					session.log.WithError(err).Warn("ping failed")
					session.cancel()
					return
				}
			}
		}
	}()

	for {
		select {
		case <-session.ctx.Done():
			return
		default:
		}

		var msg socketAction
		if err := session.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				session.log.WithError(err).Warn("websocket error")
			}
			return
		}
		h.dispatch(session, ctrl, msg)
	}
}

// dispatch 把一条交互送入控制器。控制器自身已提示后端错误，这里只补充本地校验错误
func (h *SketchHandler) dispatch(session *SketchSession, ctrl *sketch.Controller, msg socketAction) {
	ctx := session.ctx
	switch msg.Action {
	case "start":
		mode, err := sketch.ParseMode(msg.Mode)
		if err == nil {
			err = ctrl.StartDrawing(mode)
		}
		if err != nil {
			session.Notify(sketch.LevelError, err.Error())
		}
	case "click":
		if pt, ok := msg.point(); ok {
			ctrl.Click(pt)
		}
	case "move":
		if pt, ok := msg.point(); ok {
			ctrl.Move(pt)
		}
	case "stop":
		ctrl.StopDrawing(ctx)
	case "load":
		ctrl.Load(ctx, sketch.DatasetID(msg.ID))
	case "delete":
		ctrl.Delete(ctx, sketch.DatasetID(msg.ID))
	case "refresh":
		ctrl.Refresh(ctx)
	case "reset":
		ctrl.Reset(ctx)
	case "upload":
		ctrl.Upload(ctx, msg.Filename, []byte(msg.Content))
	case "edit":
		form, err := ctrl.OpenEditor(msg.Entry)
		if err != nil {
			session.Notify(sketch.LevelError, err.Error())
			return
		}
		session.send("editor", gin.H{"open": true, "form": form, "icons": ctrl.Editor().Icons()})
	case "icon":
		form, err := ctrl.SelectIcon(msg.Icon)
		if err != nil {
			session.Notify(sketch.LevelError, err.Error())
			return
		}
		session.send("editor", gin.H{"open": true, "form": form})
	case "confirm":
		err := ctrl.ConfirmEdit(ctx, msg.Name, msg.Description)
		if errors.Is(err, sketch.ErrEditorClosed) {
			session.Notify(sketch.LevelError, err.Error())
			return
		}
		session.send("editor", gin.H{"open": false})
	case "cancel":
		ctrl.CancelEdit()
		session.send("editor", gin.H{"open": false})
	default:
		session.log.WithField("action", msg.Action).Debug("unknown action")
	}
}
