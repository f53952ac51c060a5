package models

// Symbol 上传的点图标
type Symbol struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Filename    string `gorm:"not null" json:"filename"`
	MimeType    string `gorm:"not null" json:"mime_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageData   []byte `json:"-"`
	Description string `json:"description"`
	Category    string `gorm:"index" json:"category"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Symbol) TableName() string {
	return "symbols"
}
