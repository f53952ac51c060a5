package sketch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/GrainArc/SketchMap/methods"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

// Controller 协调绘制会话、图层注册表与后端，持有全部会话状态。
// 由单个事件循环驱动，不支持并发调用。
type Controller struct {
	backend  Backend
	surface  Surface
	list     ListView
	notifier Notifier

	session  *Session
	registry *Registry
	editor   *Editor
	active   DatasetID
	records  []DatasetRecord

	now func() time.Time
}

func NewController(backend Backend, surface Surface, list ListView, notifier Notifier) *Controller {
	if list == nil {
		list = discardList{}
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Controller{
		backend:  backend,
		surface:  surface,
		list:     list,
		notifier: notifier,
		session:  NewSession(),
		registry: NewRegistry(surface),
		editor:   NewEditor(surface),
		now:      time.Now,
	}
}

func (c *Controller) Session() *Session   { return c.session }
func (c *Controller) Registry() *Registry { return c.registry }
func (c *Controller) Editor() *Editor     { return c.editor }

// Active 当前高亮的数据集，0 表示无
func (c *Controller) Active() DatasetID { return c.active }

// Records 最近一次列表结果
func (c *Controller) Records() []DatasetRecord { return c.records }

// Init 并发加载图标与数据集列表，两者都完成后再更新状态
func (c *Controller) Init(ctx context.Context) error {
	var (
		icons      []string
		records    []DatasetRecord
		iconErr    error
		recordsErr error
	)
	c.list.ShowLoading()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		icons, iconErr = c.backend.ListIcons(gctx)
		return nil
	})
	g.Go(func() error {
		records, recordsErr = c.backend.ListDatasets(gctx)
		return nil
	})
	_ = g.Wait()

	if iconErr != nil {
		c.notifier.Notify(LevelError, "Network error loading custom icons")
	} else {
		c.editor.SetCustomIcons(icons)
	}
	if recordsErr != nil {
		c.list.ShowError(recordsErr.Error())
	} else {
		c.records = records
		c.renderList()
	}
	return errors.Join(iconErr, recordsErr)
}

// ---- 绘制 ----

// StartDrawing 进入采集状态，已有会话时拒绝
func (c *Controller) StartDrawing(mode Mode) error {
	effects, err := c.session.Handle(StartEvent{Mode: mode})
	if err != nil {
		return err
	}
	_, err = c.apply(context.Background(), effects)
	return err
}

// Click 地图单击
func (c *Controller) Click(at orb.Point) {
	effects, _ := c.session.Handle(ClickEvent{At: at})
	c.apply(context.Background(), effects)
}

// Move 鼠标移动
func (c *Controller) Move(at orb.Point) {
	effects, _ := c.session.Handle(MoveEvent{At: at})
	c.apply(context.Background(), effects)
}

// StopDrawing 结束会话；有采集点时组装并保存，返回新数据集 id
func (c *Controller) StopDrawing(ctx context.Context) (DatasetID, error) {
	if cur, ok := c.editor.Current(); ok && cur.Dataset == 0 {
		c.editor.Cancel()
	}
	effects, stopErr := c.session.Handle(StopEvent{})
	id, err := c.apply(ctx, effects)
	if stopErr != nil {
		c.notifier.Notify(LevelError, stopErr.Error())
		return 0, stopErr
	}
	return id, err
}

func (c *Controller) apply(ctx context.Context, effects []Effect) (DatasetID, error) {
	var (
		id  DatasetID
		err error
	)
	for _, eff := range effects {
		switch eff.Kind {
		case EffectEnterCapture:
			c.surface.SetCapture(true)
			c.surface.SetModeControls(eff.Mode, true)
		case EffectLeaveCapture:
			c.surface.SetCapture(false)
			c.surface.SetModeControls(eff.Mode, false)
		case EffectAddLayer:
			c.surface.AddLayer(eff.Layer)
		case EffectRemoveLayer:
			c.surface.RemoveLayer(eff.Layer)
		case EffectUpdateLayer:
			c.surface.UpdateLayer(eff.Layer)
		case EffectCommit:
			id, err = c.Create(ctx, eff.Payload, eff.Mode.String()+".geojson")
		}
	}
	return id, err
}

// ---- 属性编辑 ----

// OpenEditor 打开绘制中或已加载数据集中的条目
func (c *Controller) OpenEditor(entryID string) (Form, error) {
	if entry, ok := c.session.Entry(entryID); ok {
		return c.editor.Open(entry, nil), nil
	}
	if entry, layer, ok := c.registry.entry(entryID); ok {
		return c.editor.Open(entry, layer), nil
	}
	return Form{}, ErrUnknownEntry
}

// SelectIcon 更换图标，仅本地生效
func (c *Controller) SelectIcon(name string) (Form, error) {
	return c.editor.SelectIcon(name)
}

// ConfirmEdit 提交表单；条目属于已保存数据集时同步更新到后端，失败不回滚本地修改
func (c *Controller) ConfirmEdit(ctx context.Context, name, description string) error {
	entry, payload, err := c.editor.Commit(name, description)
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	return c.Update(ctx, entry.Dataset, payload)
}

func (c *Controller) CancelEdit() {
	c.editor.Cancel()
}

// ---- 数据集同步 ----

// DeriveName 去掉文件扩展名作为默认名称
func DeriveName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Upload 解码并校验上传内容，然后走 Create 流程
func (c *Controller) Upload(ctx context.Context, filename string, raw []byte) (DatasetID, error) {
	text, err := methods.DecodeText(raw)
	if err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Error reading file: %v", err))
		return 0, err
	}
	payload, err := ParsePayload(text)
	if err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Invalid GeoJSON file structure: %v", err))
		return 0, err
	}
	return c.Create(ctx, payload, filename)
}

// Create 保存新数据集，成功后渲染、注册并设为当前
func (c *Controller) Create(ctx context.Context, payload *geojson.FeatureCollection, filename string) (DatasetID, error) {
	res, err := c.backend.SaveDataset(ctx, SaveRequest{
		Data:        payload,
		Filename:    filename,
		Name:        DeriveName(filename),
		Description: "Uploaded on " + c.now().Format("2006-01-02"),
	})
	if err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Error saving: %v", err))
		return 0, fmt.Errorf("save dataset: %w", err)
	}
	c.notifier.Notify(LevelSuccess, res.Message)

	c.show(res.ID, payload)
	c.Refresh(ctx)
	return res.ID, nil
}

// Load 获取数据集并替换已有图层
func (c *Controller) Load(ctx context.Context, id DatasetID) error {
	payload, err := c.backend.GetDataset(ctx, id)
	if err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Error loading dataset: %v", err))
		return fmt.Errorf("load dataset %d: %w", id, err)
	}
	c.notifier.Notify(LevelInfo, fmt.Sprintf("Loaded %q", c.recordName(id)))
	c.show(id, payload)
	c.renderList()
	return nil
}

// Update 只提交持久化，渲染已在本地完成
func (c *Controller) Update(ctx context.Context, id DatasetID, payload *geojson.FeatureCollection) error {
	msg, err := c.backend.UpdateDataset(ctx, id, payload)
	if err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Error updating: %v", err))
		return fmt.Errorf("update dataset %d: %w", id, err)
	}
	c.notifier.Notify(LevelSuccess, msg)
	return nil
}

// Delete 删除成功后摘除图层并清理当前指针，失败时保持原状
func (c *Controller) Delete(ctx context.Context, id DatasetID) error {
	if _, err := c.backend.DeleteDataset(ctx, id); err != nil {
		c.notifier.Notify(LevelError, fmt.Sprintf("Error removing dataset: %v", err))
		return fmt.Errorf("delete dataset %d: %w", id, err)
	}
	if cur, ok := c.editor.Current(); ok && cur.Dataset == id {
		c.editor.Cancel()
	}
	c.registry.Remove(id)
	if c.active == id {
		c.active = 0
	}
	for i, rec := range c.records {
		if rec.ID == id {
			c.records = append(c.records[:i:i], c.records[i+1:]...)
			break
		}
	}
	c.notifier.Notify(LevelInfo, "Dataset removed")
	c.renderList()
	return nil
}

// Refresh 重新拉取列表，不触碰注册表
func (c *Controller) Refresh(ctx context.Context) error {
	c.list.ShowLoading()
	records, err := c.backend.ListDatasets(ctx)
	if err != nil {
		c.list.ShowError(err.Error())
		return fmt.Errorf("list datasets: %w", err)
	}
	c.records = records
	c.renderList()
	return nil
}

// Reset 整体刷新：移除所有图层后重新拉取列表
func (c *Controller) Reset(ctx context.Context) error {
	if cur, ok := c.editor.Current(); ok && cur.Dataset != 0 {
		c.editor.Cancel()
	}
	c.registry.RemoveAll()
	c.active = 0
	return c.Refresh(ctx)
}

func (c *Controller) show(id DatasetID, payload *geojson.FeatureCollection) {
	if cur, ok := c.editor.Current(); ok && cur.Dataset == id {
		c.editor.Cancel()
	}
	layer := NewDatasetLayer(id, payload)
	c.registry.Set(id, layer)
	c.active = id
	if payload != nil && len(payload.Features) > 0 {
		c.surface.FitBounds(layer.Bound())
	}
}

func (c *Controller) renderList() {
	c.list.ShowDatasets(NewDatasetCards(c.records, c.active))
}

func (c *Controller) recordName(id DatasetID) string {
	for _, rec := range c.records {
		if rec.ID == id {
			return rec.Name
		}
	}
	return "dataset " + id.String()
}

type discardList struct{}

func (discardList) ShowLoading()               {}
func (discardList) ShowDatasets([]DatasetCard) {}
func (discardList) ShowError(string)           {}
