package sketch

import (
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// DefaultIcons 内置图标
var DefaultIcons = []string{DefaultIcon, DrawingIcon}

// Form 属性编辑表单的当前内容
type Form struct {
	EntryID     string    `json:"entry_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Dataset     DatasetID `json:"dataset,omitempty"`
}

// Editor 单个要素的属性编辑。选择图标立即改变标记外观，
// 只有 Commit 才把名称和描述写入条目。
type Editor struct {
	surface Surface
	custom  []string
	entry   *FeatureEntry
	layer   *Layer
}

func NewEditor(surface Surface) *Editor {
	return &Editor{surface: surface}
}

// SetCustomIcons 记录后端返回的图标文件，按去掉扩展名后的名称去重
func (e *Editor) SetCustomIcons(files []string) {
	seen := make(map[string]struct{})
	for _, name := range DefaultIcons {
		seen[name] = struct{}{}
	}
	e.custom = e.custom[:0]
	for _, f := range files {
		name := IconName(f)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		e.custom = append(e.custom, name)
	}
}

// IconName 图标文件标识去掉目录和扩展名
func IconName(file string) string {
	base := filepath.Base(strings.TrimSpace(file))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Icons 可选图标，内置在前
func (e *Editor) Icons() []string {
	icons := make([]string, 0, len(DefaultIcons)+len(e.custom))
	icons = append(icons, DefaultIcons...)
	return append(icons, e.custom...)
}

func (e *Editor) knownIcon(name string) bool {
	for _, icon := range e.Icons() {
		if icon == name {
			return true
		}
	}
	return false
}

// Open 打开条目的编辑表单，layer 为条目所属的数据集图层，未保存的绘制传 nil
func (e *Editor) Open(entry *FeatureEntry, layer *Layer) Form {
	e.entry = entry
	e.layer = layer
	return e.form()
}

func (e *Editor) form() Form {
	return Form{
		EntryID:     e.entry.ID,
		Name:        e.entry.Props.Name,
		Description: e.entry.Props.Description,
		Icon:        e.entry.Props.IconOrDefault(),
		Dataset:     e.entry.Dataset,
	}
}

// Current 正在编辑的条目
func (e *Editor) Current() (*FeatureEntry, bool) {
	return e.entry, e.entry != nil
}

// SelectIcon 只改本地外观，不触发保存
func (e *Editor) SelectIcon(name string) (Form, error) {
	if e.entry == nil {
		return Form{}, ErrEditorClosed
	}
	if !e.knownIcon(name) {
		return Form{}, ErrUnknownIcon
	}
	e.entry.Props.Icon = name
	if e.entry.Marker != nil {
		e.entry.Marker.Icon = name
		e.surface.UpdateLayer(e.entry.Marker)
	}
	return e.form(), nil
}

// Commit 写入名称和描述并关闭表单。条目属于已保存的数据集时返回
// 重新组装后的整个数据集，调用方负责提交更新；否则返回 nil。
func (e *Editor) Commit(name, description string) (*FeatureEntry, *geojson.FeatureCollection, error) {
	entry, layer := e.entry, e.layer
	if entry == nil {
		return nil, nil, ErrEditorClosed
	}
	entry.Props.Name = name
	entry.Props.Description = description
	if entry.Marker != nil && entry.Props.Icon != "" {
		entry.Marker.Icon = entry.Props.Icon
	}
	if entry.Marker != nil {
		e.surface.UpdateLayer(entry.Marker)
	}
	e.Cancel()

	if entry.Dataset == 0 || layer == nil {
		return entry, nil, nil
	}
	payload := layer.Reserialize()
	e.surface.UpdateLayer(layer)
	return entry, payload, nil
}

// Cancel 关闭表单，不修改条目
func (e *Editor) Cancel() {
	e.entry = nil
	e.layer = nil
}
