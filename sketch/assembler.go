package sketch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Assemble 将采集的坐标序列组装为 FeatureCollection。
//
// ModePoint 每个点一个要素，属性按下标取 props（空字段不输出），缺失时为空属性；
// ModeLine 输出一条线，props 依次合并到默认属性上；
// ModePolygon 输出单环面，首点追加到末尾闭合。面至少需要3个不同的点，
// 由调用方在组装前检查。
// 空点列返回空集合。
func Assemble(mode Mode, points []orb.Point, props []Properties) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(points) == 0 {
		return fc
	}

	switch mode {
	case ModePoint:
		for i, pt := range points {
			f := geojson.NewFeature(pt)
			if i < len(props) {
				f.Properties = props[i].Bag()
			}
			fc.Append(f)
		}
	case ModeLine:
		line := make(orb.LineString, len(points))
		copy(line, points)
		f := geojson.NewFeature(line)
		f.Properties = mergeAll(props).ToMap()
		fc.Append(f)
	case ModePolygon:
		ring := make(orb.Ring, 0, len(points)+1)
		ring = append(ring, points...)
		ring = append(ring, points[0])
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties = mergeAll(props).ToMap()
		fc.Append(f)
	}
	return fc
}

func mergeAll(props []Properties) Properties {
	merged := DefaultProperties()
	for _, p := range props {
		merged = merged.Merge(p)
	}
	return merged
}

// DistinctPoints 统计不同坐标的数量
func DistinctPoints(points []orb.Point) int {
	seen := make(map[orb.Point]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}
