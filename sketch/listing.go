package sketch

import (
	"fmt"
	"time"
)

// DatasetCard 列表中的一张数据集卡片
type DatasetCard struct {
	ID     DatasetID `json:"id"`
	Name   string    `json:"name"`
	Meta   string    `json:"meta"`
	Date   string    `json:"date"`
	Active bool      `json:"active"`
}

// NewDatasetCards 由记录生成卡片，active 对应的卡片高亮
func NewDatasetCards(records []DatasetRecord, active DatasetID) []DatasetCard {
	cards := make([]DatasetCard, 0, len(records))
	for _, rec := range records {
		cards = append(cards, DatasetCard{
			ID:     rec.ID,
			Name:   rec.Name,
			Meta:   fmt.Sprintf("%s | %d features", rec.GeometryTypes, rec.FeatureCount),
			Date:   formatDate(rec.UploadDate),
			Active: active != 0 && rec.ID == active,
		})
	}
	return cards
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}
