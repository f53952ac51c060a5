package sketch

import "github.com/paulmach/orb"

// MemorySurface 无界面的渲染面，只记录图层状态，供命令行与测试使用
type MemorySurface struct {
	layers   map[string]*Layer
	order    []string
	Updates  map[string]int
	Bounds   []orb.Bound
	Capture  bool
	Mode     Mode
	Disabled bool
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		layers:  make(map[string]*Layer),
		Updates: make(map[string]int),
	}
}

func (s *MemorySurface) AddLayer(l *Layer) {
	if _, ok := s.layers[l.ID]; ok {
		return
	}
	s.layers[l.ID] = l
	s.order = append(s.order, l.ID)
}

func (s *MemorySurface) RemoveLayer(l *Layer) {
	if _, ok := s.layers[l.ID]; !ok {
		return
	}
	delete(s.layers, l.ID)
	for i, id := range s.order {
		if id == l.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemorySurface) UpdateLayer(l *Layer) {
	s.Updates[l.ID]++
}

func (s *MemorySurface) FitBounds(b orb.Bound) {
	s.Bounds = append(s.Bounds, b)
}

func (s *MemorySurface) SetCapture(on bool) {
	s.Capture = on
}

func (s *MemorySurface) SetModeControls(active Mode, drawing bool) {
	s.Mode = active
	s.Disabled = drawing
}

// Attached 图层是否在渲染面上
func (s *MemorySurface) Attached(l *Layer) bool {
	_, ok := s.layers[l.ID]
	return ok
}

// Layers 按添加顺序返回当前图层
func (s *MemorySurface) Layers() []*Layer {
	out := make([]*Layer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.layers[id])
	}
	return out
}

// Count 指定类型的图层数量
func (s *MemorySurface) Count(kind LayerKind) int {
	n := 0
	for _, l := range s.layers {
		if l.Kind == kind {
			n++
		}
	}
	return n
}
