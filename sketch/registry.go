package sketch

import "sort"

// Registry 数据集 id 到渲染图层的映射。
// 有映射的图层一定已添加到渲染面上，移除映射前先从渲染面摘除图层。
type Registry struct {
	surface Surface
	layers  map[DatasetID]*Layer
}

func NewRegistry(surface Surface) *Registry {
	return &Registry{surface: surface, layers: make(map[DatasetID]*Layer)}
}

// Set 替换 id 的映射，旧图层先摘除再挂载新图层
func (r *Registry) Set(id DatasetID, layer *Layer) {
	if prev, ok := r.layers[id]; ok {
		if prev == layer {
			return
		}
		r.surface.RemoveLayer(prev)
	}
	r.layers[id] = layer
	r.surface.AddLayer(layer)
}

// Remove 摘除并删除映射，不存在时不做任何事
func (r *Registry) Remove(id DatasetID) {
	layer, ok := r.layers[id]
	if !ok {
		return
	}
	r.surface.RemoveLayer(layer)
	delete(r.layers, id)
}

// RemoveAll 全部摘除，整体刷新时使用
func (r *Registry) RemoveAll() {
	for _, id := range r.IDs() {
		r.Remove(id)
	}
}

func (r *Registry) Has(id DatasetID) bool {
	_, ok := r.layers[id]
	return ok
}

func (r *Registry) Get(id DatasetID) (*Layer, bool) {
	layer, ok := r.layers[id]
	return layer, ok
}

// IDs 已注册的 id，升序
func (r *Registry) IDs() []DatasetID {
	ids := make([]DatasetID, 0, len(r.layers))
	for id := range r.layers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Len() int {
	return len(r.layers)
}

// entry 在所有已注册数据集图层中查找条目
func (r *Registry) entry(id string) (*FeatureEntry, *Layer, bool) {
	for _, layer := range r.layers {
		for _, e := range layer.Entries {
			if e.ID == id {
				return e, layer, true
			}
		}
	}
	return nil, nil, false
}
