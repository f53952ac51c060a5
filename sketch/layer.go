package sketch

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LayerKind 渲染图层类型
type LayerKind string

const (
	LayerMarker   LayerKind = "marker"
	LayerPolyline LayerKind = "polyline"
	LayerDataset  LayerKind = "dataset"
)

// Layer 地图上的一个渲染句柄，由 Surface 负责实际绘制
type Layer struct {
	ID       string                     `json:"id"`
	Kind     LayerKind                  `json:"kind"`
	Position orb.Point                  `json:"position,omitempty"`
	Icon     string                     `json:"icon,omitempty"`
	Path     orb.LineString             `json:"path,omitempty"`
	Dashed   bool                       `json:"dashed,omitempty"`
	Dataset  DatasetID                  `json:"dataset,omitempty"`
	Data     *geojson.FeatureCollection `json:"data,omitempty"`

	// Entries 数据集图层中点要素对应的可编辑条目
	Entries []*FeatureEntry `json:"entries,omitempty"`
	// others 数据集中非点要素，重新序列化时原样保留
	others []*geojson.Feature
}

// FeatureEntry 一个可编辑的点要素
type FeatureEntry struct {
	ID       string     `json:"id"`
	Marker   *Layer     `json:"-"`
	Position orb.Point  `json:"position"`
	Props    Properties `json:"properties"`
	Dataset  DatasetID  `json:"dataset,omitempty"`

	// source/sourceID 加载时的原始属性与要素 id，重新序列化时保留
	source   geojson.Properties
	sourceID interface{}
}

// Bag 条目写出时的完整属性：原始属性上覆盖编辑过的 name/description/icon
func (e *FeatureEntry) Bag() geojson.Properties {
	if e.source == nil {
		return e.Props.Bag()
	}
	m := e.source.Clone()
	e.Props.applyTo(m)
	return m
}

func newLayerID() string {
	return uuid.New().String()
}

// NewMarker 创建点标记
func NewMarker(at orb.Point, icon string) *Layer {
	return &Layer{ID: newLayerID(), Kind: LayerMarker, Position: at, Icon: icon}
}

// NewPolyline 创建折线，dashed 用于跟随鼠标的临时线段
func NewPolyline(path orb.LineString, dashed bool) *Layer {
	return &Layer{ID: newLayerID(), Kind: LayerPolyline, Path: path, Dashed: dashed}
}

func newEntry(at orb.Point, icon string, props Properties, dataset DatasetID) *FeatureEntry {
	marker := NewMarker(at, icon)
	return &FeatureEntry{
		ID:       marker.ID,
		Marker:   marker,
		Position: at,
		Props:    props,
		Dataset:  dataset,
	}
}

// NewDatasetLayer 将数据集渲染为图层，点要素生成可编辑条目
func NewDatasetLayer(id DatasetID, fc *geojson.FeatureCollection) *Layer {
	layer := &Layer{ID: newLayerID(), Kind: LayerDataset, Dataset: id, Data: fc}
	if fc == nil {
		layer.Data = geojson.NewFeatureCollection()
		return layer
	}
	for _, f := range fc.Features {
		if pt, ok := f.Geometry.(orb.Point); ok {
			props := PropertiesFromMap(f.Properties)
			entry := newEntry(pt, props.IconOrDefault(), props, id)
			entry.source = f.Properties.Clone()
			entry.sourceID = f.ID
			layer.Entries = append(layer.Entries, entry)
			continue
		}
		layer.others = append(layer.others, f)
	}
	return layer
}

// Bound 图层范围
func (l *Layer) Bound() orb.Bound {
	switch l.Kind {
	case LayerMarker:
		return l.Position.Bound()
	case LayerPolyline:
		return l.Path.Bound()
	}
	var b orb.Bound
	found := false
	if l.Data == nil {
		return b
	}
	for _, f := range l.Data.Features {
		if f.Geometry == nil {
			continue
		}
		if !found {
			b, found = f.Geometry.Bound(), true
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	return b
}

// Reserialize 按当前条目重新组装数据集，点要素保留原有 id 和其它属性，
// 非点要素原样追加，结果写回 Data
func (l *Layer) Reserialize() *geojson.FeatureCollection {
	points := make([]orb.Point, len(l.Entries))
	for i, e := range l.Entries {
		points[i] = e.Position
	}
	fc := Assemble(ModePoint, points, nil)
	for i, f := range fc.Features {
		f.ID = l.Entries[i].sourceID
		f.Properties = l.Entries[i].Bag()
	}
	for _, f := range l.others {
		fc.Append(f)
	}
	l.Data = fc
	return fc
}
