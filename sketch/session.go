package sketch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Event 驱动绘制会话的输入事件
type Event interface {
	event()
}

// StartEvent 开始绘制
type StartEvent struct{ Mode Mode }

// ClickEvent 地图单击
type ClickEvent struct{ At orb.Point }

// MoveEvent 鼠标移动
type MoveEvent struct{ At orb.Point }

// StopEvent 结束绘制
type StopEvent struct{}

func (StartEvent) event() {}
func (ClickEvent) event() {}
func (MoveEvent) event()  {}
func (StopEvent) event()  {}

// EffectKind 状态转换产生的副作用类型
type EffectKind int

const (
	EffectEnterCapture EffectKind = iota
	EffectLeaveCapture
	EffectAddLayer
	EffectRemoveLayer
	EffectUpdateLayer
	EffectCommit
)

// Effect 由控制器应用到渲染面或持久化流程上
type Effect struct {
	Kind    EffectKind
	Mode    Mode
	Layer   *Layer
	Payload *geojson.FeatureCollection
}

// Session 绘制状态机：Idle <-> Capturing(mode)。
// Handle 只修改会话自身状态并返回副作用列表，不接触渲染面和网络。
type Session struct {
	mode    Mode
	active  bool
	points  []orb.Point
	entries []*FeatureEntry
	preview *Layer
	temp    *Layer
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Active() bool { return s.active }
func (s *Session) Mode() Mode   { return s.mode }

// Points 当前采集的坐标副本
func (s *Session) Points() []orb.Point {
	out := make([]orb.Point, len(s.points))
	copy(out, s.points)
	return out
}

func (s *Session) Entries() []*FeatureEntry {
	return s.entries
}

// Entry 按 id 查找本次绘制中的条目
func (s *Session) Entry(id string) (*FeatureEntry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Preview 已确认点之间的连线
func (s *Session) Preview() *Layer { return s.preview }

// Temp 最后一点到光标的虚线
func (s *Session) Temp() *Layer { return s.temp }

// Handle 状态转换函数
func (s *Session) Handle(ev Event) ([]Effect, error) {
	switch e := ev.(type) {
	case StartEvent:
		return s.start(e.Mode)
	case ClickEvent:
		return s.click(e.At), nil
	case MoveEvent:
		return s.move(e.At), nil
	case StopEvent:
		return s.stop()
	}
	return nil, nil
}

func (s *Session) start(mode Mode) ([]Effect, error) {
	if s.active {
		return nil, ErrSessionActive
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	s.active = true
	s.mode = mode
	return []Effect{{Kind: EffectEnterCapture, Mode: mode}}, nil
}

func (s *Session) click(at orb.Point) []Effect {
	if !s.active {
		return nil
	}
	s.points = append(s.points, at)
	entry := newEntry(at, DrawingIcon, Properties{}, 0)
	s.entries = append(s.entries, entry)
	effects := []Effect{{Kind: EffectAddLayer, Layer: entry.Marker}}

	if s.mode == ModePoint || len(s.points) < 2 {
		return effects
	}
	if s.preview != nil {
		effects = append(effects, Effect{Kind: EffectRemoveLayer, Layer: s.preview})
	}
	path := make(orb.LineString, len(s.points))
	copy(path, s.points)
	s.preview = NewPolyline(path, false)
	return append(effects, Effect{Kind: EffectAddLayer, Layer: s.preview})
}

func (s *Session) move(at orb.Point) []Effect {
	if !s.active || s.mode == ModePoint || len(s.points) == 0 {
		return nil
	}
	segment := orb.LineString{s.points[len(s.points)-1], at}
	if s.temp == nil {
		s.temp = NewPolyline(segment, true)
		return []Effect{{Kind: EffectAddLayer, Layer: s.temp}}
	}
	s.temp.Path = segment
	return []Effect{{Kind: EffectUpdateLayer, Layer: s.temp}}
}

func (s *Session) stop() ([]Effect, error) {
	if !s.active {
		return nil, nil
	}
	var (
		effects []Effect
		err     error
	)
	if len(s.points) > 0 {
		if s.mode == ModePolygon && DistinctPoints(s.points) < 3 {
			err = ErrTooFewPoints
		} else {
			props := make([]Properties, len(s.entries))
			for i, e := range s.entries {
				props[i] = e.Props
			}
			effects = append(effects, Effect{
				Kind:    EffectCommit,
				Mode:    s.mode,
				Payload: Assemble(s.mode, s.points, props),
			})
		}
	}

	for _, e := range s.entries {
		effects = append(effects, Effect{Kind: EffectRemoveLayer, Layer: e.Marker})
	}
	if s.preview != nil {
		effects = append(effects, Effect{Kind: EffectRemoveLayer, Layer: s.preview})
	}
	if s.temp != nil {
		effects = append(effects, Effect{Kind: EffectRemoveLayer, Layer: s.temp})
	}
	effects = append(effects, Effect{Kind: EffectLeaveCapture, Mode: s.mode})

	s.active = false
	s.points = nil
	s.entries = nil
	s.preview = nil
	s.temp = nil
	return effects, err
}
