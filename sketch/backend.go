package sketch

import (
	"context"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"
)

// DatasetID 后端分配的数据集标识，0 表示无
type DatasetID int64

func (id DatasetID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseDatasetID 解析路径或命令行中的数据集 id
func ParseDatasetID(s string) (DatasetID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidDatasetID
	}
	return DatasetID(v), nil
}

// DatasetRecord 数据集元信息
type DatasetRecord struct {
	ID            DatasetID `json:"id"`
	Name          string    `json:"name"`
	Filename      string    `json:"filename"`
	Description   string    `json:"description"`
	GeometryTypes string    `json:"geometry_types"`
	FeatureCount  int       `json:"feature_count"`
	UploadDate    time.Time `json:"upload_date"`
	Bounds        []float64 `json:"bounds,omitempty"`
}

// SaveRequest 保存数据集请求
type SaveRequest struct {
	Data        *geojson.FeatureCollection `json:"data"`
	Filename    string                     `json:"filename"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
}

// SaveResult 保存结果
type SaveResult struct {
	ID      DatasetID `json:"id"`
	Message string    `json:"message"`
}

// Backend 数据集持久化接口
type Backend interface {
	SaveDataset(ctx context.Context, req SaveRequest) (SaveResult, error)
	UpdateDataset(ctx context.Context, id DatasetID, data *geojson.FeatureCollection) (string, error)
	ListDatasets(ctx context.Context) ([]DatasetRecord, error)
	GetDataset(ctx context.Context, id DatasetID) (*geojson.FeatureCollection, error)
	DeleteDataset(ctx context.Context, id DatasetID) (string, error)
	ListIcons(ctx context.Context) ([]string, error)
}
