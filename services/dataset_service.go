package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/GrainArc/SketchMap/logging"
	"github.com/GrainArc/SketchMap/methods"
	"github.com/GrainArc/SketchMap/models"
	"github.com/GrainArc/SketchMap/sketch"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrDatasetNotFound = errors.New("Dataset not found")

const (
	DefaultFilename = "untitled.geojson"
	DefaultUserID   = "anonymous"
)

type DatasetService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewDatasetService(db *gorm.DB) *DatasetService {
	return &DatasetService{db: db, log: logging.NewLogger("dataset-service")}
}

// SaveInput 保存参数，空字段使用默认值
type SaveInput struct {
	Data        *geojson.FeatureCollection
	Filename    string
	Name        string
	Description string
	UserID      string
}

// Save 计算摘要后入库
func (s *DatasetService) Save(ctx context.Context, in SaveInput) (*models.Dataset, error) {
	if in.Data == nil {
		return nil, errors.New("No data provided")
	}
	if in.Filename == "" {
		in.Filename = DefaultFilename
	}
	if in.Name == "" {
		in.Name = sketch.DeriveName(in.Filename)
	}
	if in.UserID == "" {
		in.UserID = DefaultUserID
	}

	ds := &models.Dataset{
		Name:        in.Name,
		Filename:    in.Filename,
		UserID:      in.UserID,
		Description: in.Description,
	}
	if err := fill(ds, in.Data); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(ds).Error; err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}
	s.log.WithFields(logrus.Fields{"id": ds.ID, "features": ds.FeatureCount}).Info("dataset saved")
	return ds, nil
}

// Update 替换数据并重新计算摘要
func (s *DatasetService) Update(ctx context.Context, id int64, data *geojson.FeatureCollection) (*models.Dataset, error) {
	if data == nil {
		return nil, errors.New("No data provided")
	}
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fill(ds, data); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(ds).Select("data", "geometry_types", "feature_count", "bounds", "updated_at").Updates(ds).Error
	if err != nil {
		return nil, fmt.Errorf("update dataset %d: %w", id, err)
	}
	s.log.WithField("id", id).Info("dataset updated")
	return ds, nil
}

// List 按上传时间倒序，不加载 data 字段
func (s *DatasetService) List(ctx context.Context) ([]models.Dataset, error) {
	var items []models.Dataset
	err := s.db.WithContext(ctx).
		Select("id, name, filename, upload_date, updated_at, user_id, geometry_types, feature_count, bounds, description").
		Order("upload_date DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return items, nil
}

func (s *DatasetService) Get(ctx context.Context, id int64) (*models.Dataset, error) {
	var ds models.Dataset
	if err := s.db.WithContext(ctx).First(&ds, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}
	return &ds, nil
}

// Payload 取出数据集的 FeatureCollection
func (s *DatasetService) Payload(ctx context.Context, id int64) (*geojson.FeatureCollection, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sketch.ParsePayload(ds.Data)
}

func (s *DatasetService) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Dataset{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete dataset %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDatasetNotFound
	}
	s.log.WithField("id", id).Info("dataset removed")
	return nil
}

func fill(ds *models.Dataset, data *geojson.FeatureCollection) error {
	raw, err := data.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	sum := methods.Summarize(data)
	ds.Data = datatypes.JSON(raw)
	ds.GeometryTypes = sum.GeometryTypes
	ds.FeatureCount = sum.FeatureCount
	ds.Bounds = ""
	if sum.Bounds != nil {
		b, err := json.Marshal(sum.Bounds)
		if err != nil {
			return err
		}
		ds.Bounds = string(b)
	}
	return nil
}

// ToRecord 转换为列表记录
func ToRecord(ds models.Dataset) sketch.DatasetRecord {
	rec := sketch.DatasetRecord{
		ID:            sketch.DatasetID(ds.ID),
		Name:          ds.Name,
		Filename:      ds.Filename,
		Description:   ds.Description,
		GeometryTypes: ds.GeometryTypes,
		FeatureCount:  ds.FeatureCount,
		UploadDate:    ds.UploadDate,
	}
	if len(ds.Bounds) > 0 {
		_ = json.Unmarshal([]byte(ds.Bounds), &rec.Bounds)
	}
	return rec
}
