package models

import (
	"time"

	"gorm.io/datatypes"
)

// Dataset 一次上传或绘制保存的矢量数据
type Dataset struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Filename      string         `gorm:"type:varchar(255);not null" json:"filename"`
	Data          datatypes.JSON `gorm:"not null" json:"-"`
	UploadDate    time.Time      `gorm:"autoCreateTime;index" json:"upload_date"`
	UpdatedAt     time.Time      `json:"updated_at"`
	UserID        string         `gorm:"type:varchar(255)" json:"user_id"`
	GeometryTypes string         `gorm:"type:varchar(255)" json:"geometry_types"`
	FeatureCount  int            `json:"feature_count"`
	Bounds        string         `gorm:"type:varchar(255)" json:"bounds"`
	Description   string         `json:"description"`
}

func (Dataset) TableName() string {
	return "datasets"
}
