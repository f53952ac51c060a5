package methods

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Summary 数据集摘要
type Summary struct {
	GeometryTypes string
	FeatureCount  int
	Bounds        []float64 // minx, miny, maxx, maxy；无几何时为空
}

// Summarize 统计要素数、去重排序后的几何类型和整体范围
func Summarize(fc *geojson.FeatureCollection) Summary {
	var s Summary
	if fc == nil {
		return s
	}
	s.FeatureCount = len(fc.Features)

	types := make(map[string]struct{})
	var (
		bound orb.Bound
		found bool
	)
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		types[f.Geometry.GeoJSONType()] = struct{}{}
		if !found {
			bound, found = f.Geometry.Bound(), true
		} else {
			bound = bound.Union(f.Geometry.Bound())
		}
	}

	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t)
	}
	sort.Strings(names)
	s.GeometryTypes = strings.Join(names, ",")
	if found {
		s.Bounds = []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}
	}
	return s
}

// FilterByType 取出指定几何类型的要素
func FilterByType(fc *geojson.FeatureCollection, geoType string) []*geojson.Feature {
	var out []*geojson.Feature
	for _, f := range fc.Features {
		if f.Geometry != nil && f.Geometry.GeoJSONType() == geoType {
			out = append(out, f)
		}
	}
	return out
}
