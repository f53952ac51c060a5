package sketch

import "github.com/paulmach/orb/geojson"

const (
	DefaultName = "Unnamed"
	DefaultIcon = "point"
	// DrawingIcon 绘制过程中临时标记使用的图标
	DrawingIcon = "drawing-pin"
)

// Properties 要素属性
type Properties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// DefaultProperties 线/面要素合并属性的初始值
func DefaultProperties() Properties {
	return Properties{Name: DefaultName}
}

// IconOrDefault 未设置图标时返回 point
func (p Properties) IconOrDefault() string {
	if p.Icon == "" {
		return DefaultIcon
	}
	return p.Icon
}

// Merge 用 o 中非空字段覆盖 p
func (p Properties) Merge(o Properties) Properties {
	if o.Name != "" {
		p.Name = o.Name
	}
	if o.Description != "" {
		p.Description = o.Description
	}
	if o.Icon != "" {
		p.Icon = o.Icon
	}
	return p
}

// ToMap 转换为线/面要素的 GeoJSON properties，空图标不输出
func (p Properties) ToMap() geojson.Properties {
	m := geojson.Properties{
		"name":        p.Name,
		"description": p.Description,
	}
	if p.Icon != "" {
		m["icon"] = p.Icon
	}
	return m
}

// Bag 点要素的属性，空字段不输出，未编辑的点得到空属性
func (p Properties) Bag() geojson.Properties {
	m := geojson.Properties{}
	p.applyTo(m)
	return m
}

// applyTo 写回 m：非空值覆盖；原来是字符串的字段允许清空；其它键不动
func (p Properties) applyTo(m geojson.Properties) {
	set := func(key, v string) {
		if _, isString := m[key].(string); v != "" || isString {
			m[key] = v
		}
	}
	set("name", p.Name)
	set("description", p.Description)
	set("icon", p.Icon)
}

// PropertiesFromMap 从要素属性中读取 name/description/icon，其余字段由 FeatureEntry 保留
func PropertiesFromMap(m geojson.Properties) Properties {
	if m == nil {
		return Properties{}
	}
	return Properties{
		Name:        m.MustString("name", ""),
		Description: m.MustString("description", ""),
		Icon:        m.MustString("icon", ""),
	}
}
