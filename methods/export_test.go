package methods

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func exportCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{1, 2}))
	fc.Append(geojson.NewFeature(orb.LineString{{0, 0}, {3, 4}}))
	fc.Append(geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}))
	return fc
}

func TestGeoJSONToDXFBytes(t *testing.T) {
	data, err := GeoJSONToDXFBytes(exportCollection())
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "LWPOLYLINE")
	assert.Contains(t, text, "POINT")
	for _, layer := range []string{"Point", "LineString", "Polygon"} {
		assert.Contains(t, text, layer)
	}
}

func TestAddGeometryNested(t *testing.T) {
	d := dxf.NewDrawing()
	for _, l := range dxfLayers {
		_, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false)
		require.NoError(t, err)
	}

	require.NoError(t, addGeometry(d, orb.MultiPoint{{1, 1}, {2, 2}}))
	require.NoError(t, addGeometry(d, orb.Collection{
		orb.LineString{{0, 0}, {1, 1}},
		orb.MultiPolygon{{{{0, 0}, {2, 0}, {2, 2}, {0, 0}}}},
	}))

	var points, polylines int
	for _, e := range d.Entities() {
		switch e.(type) {
		case *entity.Point:
			points++
		case *entity.LwPolyline:
			polylines++
		}
	}
	assert.Equal(t, 2, points)
	assert.Equal(t, 2, polylines)
}

func TestBundleDataset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BundleDataset(&buf, "测试 Roads", exportCollection()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"ce-shi-roads.geojson", "ce-shi-roads.dxf"}, names)

	for _, f := range zr.File {
		if f.Name != "ce-shi-roads.geojson" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		fc, err := geojson.UnmarshalFeatureCollection(data)
		require.NoError(t, err)
		assert.Len(t, fc.Features, 3)
	}
}

func TestUnbundleGeoJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BundleDataset(&buf, "Roads", exportCollection()))

	name, content, err := UnbundleGeoJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "roads.geojson", name)

	fc, err := geojson.UnmarshalFeatureCollection(content)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 3)
}

func TestUnbundleGeoJSON_GBKName(t *testing.T) {
	gbkName, err := simplifiedchinese.GB18030.NewEncoder().String("测试/道路.geojson")
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: gbkName, Method: zip.Deflate, NonUTF8: true})
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	name, content, err := UnbundleGeoJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "道路.geojson", name)
	assert.Contains(t, string(content), "FeatureCollection")
}

func TestUnbundleGeoJSON_Errors(t *testing.T) {
	_, _, err := UnbundleGeoJSON([]byte("not a zip"))
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, _ = w.Write([]byte("hello"))
	require.NoError(t, zw.Close())

	_, _, err = UnbundleGeoJSON(buf.Bytes())
	assert.ErrorIs(t, err, ErrNoGeoJSONInBundle)

	assert.True(t, IsBundle("roads.ZIP"))
	assert.False(t, IsBundle("roads.geojson"))
}
