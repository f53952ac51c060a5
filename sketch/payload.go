package sketch

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParsePayload 解析上传的矢量数据，Feature 与 GeometryCollection 统一包装为 FeatureCollection。
// 无法解析或顶层类型不受支持时返回 ErrUnsupportedPayload。
func ParsePayload(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
		}
		return fc, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	case "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
		}
		fc := geojson.NewFeatureCollection()
		if col, ok := g.Geometry().(orb.Collection); ok {
			for _, member := range col {
				fc.Append(geojson.NewFeature(member))
			}
		}
		return fc, nil
	case "":
		return nil, fmt.Errorf("%w: missing top-level type", ErrUnsupportedPayload)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayload, head.Type)
}
