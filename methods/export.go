package methods

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/mholt/archiver/v3"
	"github.com/paulmach/orb/geojson"
)

// BundleDataset 打包 <slug>.geojson 与 <slug>.dxf 为 zip
func BundleDataset(w io.Writer, name string, fc *geojson.FeatureCollection) error {
	slug := Slug(name)
	geoJSON, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	dxfData, err := GeoJSONToDXFBytes(fc)
	if err != nil {
		return err
	}

	z := archiver.NewZip()
	if err := z.Create(w); err != nil {
		return err
	}

	files := []struct {
		name string
		data []byte
	}{
		{slug + ".geojson", geoJSON},
		{slug + ".dxf", dxfData},
	}
	now := time.Now()
	for _, f := range files {
		err := z.Write(archiver.File{
			FileInfo: archiver.FileInfo{
				FileInfo:   memFileInfo{name: f.name, size: int64(len(f.data)), modTime: now},
				CustomName: f.name,
			},
			ReadCloser: io.NopCloser(bytes.NewReader(f.data)),
		})
		if err != nil {
			z.Close()
			return err
		}
	}
	return z.Close()
}

type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() os.FileMode  { return 0o644 }
func (fi memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() interface{}   { return nil }
