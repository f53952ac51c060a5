package methods

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var ErrNoGeoJSONInBundle = errors.New("zip contains no .geojson file")

// UnbundleGeoJSON 从 zip 中取出第一个 GeoJSON 文件，返回文件名与内容。
// 导出的数据集包可以直接再上传。
func UnbundleGeoJSON(data []byte) (string, []byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}

	for _, zf := range reader.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := zf.Name
		// Windows 压缩软件写入的文件名常为 GBK
		if zf.NonUTF8 {
			if decoded, err := gbkToUtf8(name); err == nil {
				name = decoded
			}
		}
		name = path.Base(name)
		ext := strings.ToLower(path.Ext(name))
		if ext != ".geojson" && ext != ".json" {
			continue
		}
		content, err := readZipFile(zf)
		if err != nil {
			return "", nil, err
		}
		return name, content, nil
	}
	return "", nil, ErrNoGeoJSONInBundle
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func gbkToUtf8(s string) (string, error) {
	reader := transform.NewReader(strings.NewReader(s), simplifiedchinese.GB18030.NewDecoder())
	d, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// IsBundle 按扩展名判断是否为 zip 包
func IsBundle(filename string) bool {
	return strings.EqualFold(path.Ext(filename), ".zip")
}
