package services

import (
	"context"
	"fmt"

	"github.com/GrainArc/SketchMap/sketch"
	"github.com/paulmach/orb/geojson"
)

// LocalBackend 进程内直接调用服务层，供 websocket 绘制会话使用
type LocalBackend struct {
	Datasets *DatasetService
	Symbols  *SymbolService
}

var _ sketch.Backend = (*LocalBackend)(nil)

func (b *LocalBackend) SaveDataset(ctx context.Context, req sketch.SaveRequest) (sketch.SaveResult, error) {
	ds, err := b.Datasets.Save(ctx, SaveInput{
		Data:        req.Data,
		Filename:    req.Filename,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return sketch.SaveResult{}, err
	}
	return sketch.SaveResult{ID: sketch.DatasetID(ds.ID), Message: SavedMessage(ds.Name)}, nil
}

func (b *LocalBackend) UpdateDataset(ctx context.Context, id sketch.DatasetID, data *geojson.FeatureCollection) (string, error) {
	ds, err := b.Datasets.Update(ctx, int64(id), data)
	if err != nil {
		return "", err
	}
	return UpdatedMessage(ds.Name), nil
}

func (b *LocalBackend) ListDatasets(ctx context.Context) ([]sketch.DatasetRecord, error) {
	items, err := b.Datasets.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]sketch.DatasetRecord, len(items))
	for i, ds := range items {
		records[i] = ToRecord(ds)
	}
	return records, nil
}

func (b *LocalBackend) GetDataset(ctx context.Context, id sketch.DatasetID) (*geojson.FeatureCollection, error) {
	return b.Datasets.Payload(ctx, int64(id))
}

func (b *LocalBackend) DeleteDataset(ctx context.Context, id sketch.DatasetID) (string, error) {
	if err := b.Datasets.Delete(ctx, int64(id)); err != nil {
		return "", err
	}
	return RemovedMessage(id), nil
}

func (b *LocalBackend) ListIcons(ctx context.Context) ([]string, error) {
	return b.Symbols.ListFiles(ctx)
}

func SavedMessage(name string) string {
	return fmt.Sprintf("Dataset %s saved successfully", name)
}

func UpdatedMessage(name string) string {
	return fmt.Sprintf("Dataset %s updated successfully", name)
}

func RemovedMessage(id sketch.DatasetID) string {
	return fmt.Sprintf("Dataset %d removed successfully", id)
}
