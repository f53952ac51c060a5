package methods

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"
)

var dxfLayers = []struct {
	name  string
	color color.ColorNumber
}{
	{"Point", color.Blue},
	{"LineString", color.Green},
	{"Polygon", color.Red},
}

// ConvertGeoJSONToDXF 按几何类型分图层写出 DXF，坐标原样输出不做投影转换
func ConvertGeoJSONToDXF(featureCollection *geojson.FeatureCollection, outputFilename string) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	for _, l := range dxfLayers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("add dxf layer %s: %w", l.name, err)
		}
	}

	for _, feature := range featureCollection.Features {
		if err := addGeometry(d, feature.Geometry); err != nil {
			return err
		}
	}
	return d.SaveAs(outputFilename)
}

// GeoJSONToDXFBytes 生成 DXF 内容，借助临时文件完成
func GeoJSONToDXFBytes(fc *geojson.FeatureCollection) ([]byte, error) {
	dir, err := os.MkdirTemp("", "sketchmap-dxf")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.dxf")
	if err := ConvertGeoJSONToDXF(fc, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func addGeometry(d *drawing.Drawing, g orb.Geometry) error {
	switch geom := g.(type) {
	case orb.Point:
		d.ChangeLayer("Point")
		if _, err := d.Point(geom[0], geom[1], 0); err != nil {
			return err
		}
	case orb.MultiPoint:
		for _, pt := range geom {
			if err := addGeometry(d, pt); err != nil {
				return err
			}
		}
	case orb.LineString:
		d.ChangeLayer("LineString")
		d.AddEntity(lwPolyline(geom))
	case orb.MultiLineString:
		for _, ls := range geom {
			if err := addGeometry(d, ls); err != nil {
				return err
			}
		}
	case orb.Polygon:
		d.ChangeLayer("Polygon")
		for _, ring := range geom {
			d.AddEntity(lwPolyline(ring))
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			if err := addGeometry(d, poly); err != nil {
				return err
			}
		}
	case orb.Collection:
		for _, member := range geom {
			if err := addGeometry(d, member); err != nil {
				return err
			}
		}
	}
	return nil
}

func lwPolyline(points []orb.Point) *entity.LwPolyline {
	lwp := entity.NewLwPolyline(len(points))
	for j, pt := range points {
		lwp.Vertices[j] = []float64{pt[0], pt[1]}
	}
	return lwp
}
