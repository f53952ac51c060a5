package sketch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) SaveDataset(ctx context.Context, req SaveRequest) (SaveResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(SaveResult), args.Error(1)
}

func (m *mockBackend) UpdateDataset(ctx context.Context, id DatasetID, data *geojson.FeatureCollection) (string, error) {
	args := m.Called(ctx, id, data)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) ListDatasets(ctx context.Context) ([]DatasetRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]DatasetRecord)
	return records, args.Error(1)
}

func (m *mockBackend) GetDataset(ctx context.Context, id DatasetID) (*geojson.FeatureCollection, error) {
	args := m.Called(ctx, id)
	fc, _ := args.Get(0).(*geojson.FeatureCollection)
	return fc, args.Error(1)
}

func (m *mockBackend) DeleteDataset(ctx context.Context, id DatasetID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) ListIcons(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	icons, _ := args.Get(0).([]string)
	return icons, args.Error(1)
}

type recordingList struct {
	loading int
	cards   []DatasetCard
	err     string
}

func (l *recordingList) ShowLoading()                     { l.loading++ }
func (l *recordingList) ShowDatasets(cards []DatasetCard) { l.cards = cards; l.err = "" }
func (l *recordingList) ShowError(msg string)             { l.err = msg }

type note struct {
	level Level
	msg   string
}

type recordingNotifier struct {
	notes []note
}

func (n *recordingNotifier) Notify(level Level, msg string) {
	n.notes = append(n.notes, note{level, msg})
}

func (n *recordingNotifier) last() note {
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

type fixture struct {
	backend  *mockBackend
	surface  *MemorySurface
	list     *recordingList
	notifier *recordingNotifier
	ctrl     *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:  &mockBackend{},
		surface:  NewMemorySurface(),
		list:     &recordingList{},
		notifier: &recordingNotifier{},
	}
	f.ctrl = NewController(f.backend, f.surface, f.list, f.notifier)
	f.ctrl.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { f.backend.AssertExpectations(t) })
	return f
}

func pointCollection(pts ...orb.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, pt := range pts {
		f := geojson.NewFeature(pt)
		f.Properties["name"] = string(rune('a' + i))
		fc.Append(f)
	}
	return fc
}

func TestControllerInit(t *testing.T) {
	f := newFixture(t)
	records := []DatasetRecord{{ID: 2, Name: "roads", GeometryTypes: "LineString", FeatureCount: 3}}
	f.backend.On("ListIcons", mock.Anything).Return([]string{"tree.png"}, nil)
	f.backend.On("ListDatasets", mock.Anything).Return(records, nil)

	require.NoError(t, f.ctrl.Init(context.Background()))
	assert.Equal(t, []string{"point", "drawing-pin", "tree"}, f.ctrl.Editor().Icons())
	require.Len(t, f.list.cards, 1)
	assert.Equal(t, "LineString | 3 features", f.list.cards[0].Meta)
}

func TestControllerInitIconFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.On("ListIcons", mock.Anything).Return(nil, errors.New("boom"))
	f.backend.On("ListDatasets", mock.Anything).Return([]DatasetRecord{}, nil)

	err := f.ctrl.Init(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultIcons, f.ctrl.Editor().Icons())
	assert.Equal(t, LevelError, f.notifier.last().level)
}

func TestControllerCreate(t *testing.T) {
	f := newFixture(t)
	payload := pointCollection(orb.Point{1, 1}, orb.Point{3, 2})
	f.backend.On("SaveDataset", mock.Anything, SaveRequest{
		Data:        payload,
		Filename:    "wells.geojson",
		Name:        "wells",
		Description: "Uploaded on 2024-03-09",
	}).Return(SaveResult{ID: 7, Message: "Dataset wells saved successfully"}, nil)
	f.backend.On("ListDatasets", mock.Anything).Return([]DatasetRecord{{ID: 7, Name: "wells"}}, nil)

	id, err := f.ctrl.Create(context.Background(), payload, "wells.geojson")
	require.NoError(t, err)
	assert.Equal(t, DatasetID(7), id)
	assert.Equal(t, DatasetID(7), f.ctrl.Active())
	assert.Equal(t, []DatasetID{7}, f.ctrl.Registry().IDs())

	layer, _ := f.ctrl.Registry().Get(7)
	assert.True(t, f.surface.Attached(layer))
	require.Len(t, f.surface.Bounds, 1)
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{3, 2}}, f.surface.Bounds[0])

	require.Len(t, f.list.cards, 1)
	assert.True(t, f.list.cards[0].Active)
	assert.Equal(t, note{LevelSuccess, "Dataset wells saved successfully"}, f.notifier.notes[0])
}

func TestControllerCreateFailureLeavesRegistry(t *testing.T) {
	f := newFixture(t)
	f.backend.On("SaveDataset", mock.Anything, mock.Anything).Return(SaveResult{}, errors.New("disk full"))

	_, err := f.ctrl.Create(context.Background(), pointCollection(orb.Point{0, 0}), "x.geojson")
	require.Error(t, err)
	assert.Equal(t, 0, f.ctrl.Registry().Len())
	assert.Equal(t, DatasetID(0), f.ctrl.Active())
	assert.Empty(t, f.surface.Layers())
	assert.Equal(t, note{LevelError, "Error saving: disk full"}, f.notifier.last())
	f.backend.AssertNotCalled(t, "ListDatasets", mock.Anything)
}

func TestControllerDrawAndCommit(t *testing.T) {
	f := newFixture(t)
	f.backend.On("SaveDataset", mock.Anything, mock.MatchedBy(func(req SaveRequest) bool {
		if req.Filename != "polygon.geojson" || req.Name != "polygon" || len(req.Data.Features) != 1 {
			return false
		}
		ring := req.Data.Features[0].Geometry.(orb.Polygon)[0]
		return len(ring) == 4 && ring[0] == ring[3]
	})).Return(SaveResult{ID: 11, Message: "saved"}, nil)
	f.backend.On("ListDatasets", mock.Anything).Return([]DatasetRecord{{ID: 11}}, nil)

	require.NoError(t, f.ctrl.StartDrawing(ModePolygon))
	assert.True(t, f.surface.Capture)
	assert.True(t, f.surface.Disabled)
	assert.ErrorIs(t, f.ctrl.StartDrawing(ModePoint), ErrSessionActive)

	f.ctrl.Click(orb.Point{0, 0})
	f.ctrl.Move(orb.Point{0.5, 0.5})
	f.ctrl.Click(orb.Point{1, 0})
	f.ctrl.Click(orb.Point{1, 1})
	assert.Equal(t, 3, f.surface.Count(LayerMarker))
	assert.Equal(t, 2, f.surface.Count(LayerPolyline))

	id, err := f.ctrl.StopDrawing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DatasetID(11), id)
	assert.False(t, f.surface.Capture)
	assert.False(t, f.surface.Disabled)
	assert.Equal(t, 0, f.surface.Count(LayerMarker))
	assert.Equal(t, 0, f.surface.Count(LayerPolyline))
	assert.Equal(t, 1, f.surface.Count(LayerDataset))
	assert.True(t, f.ctrl.Registry().Has(11))
}

func TestControllerStopTooFewPoints(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.StartDrawing(ModePolygon))
	f.ctrl.Click(orb.Point{0, 0})
	f.ctrl.Click(orb.Point{1, 1})

	_, err := f.ctrl.StopDrawing(context.Background())
	assert.ErrorIs(t, err, ErrTooFewPoints)
	assert.Empty(t, f.surface.Layers())
	assert.Equal(t, LevelError, f.notifier.last().level)
	f.backend.AssertNotCalled(t, "SaveDataset", mock.Anything, mock.Anything)
}

func TestControllerLoadReplacesLayer(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, DatasetID(4)).Return(pointCollection(orb.Point{1, 1}), nil).Twice()

	require.NoError(t, f.ctrl.Load(context.Background(), 4))
	first, _ := f.ctrl.Registry().Get(4)
	require.NoError(t, f.ctrl.Load(context.Background(), 4))
	second, _ := f.ctrl.Registry().Get(4)

	assert.NotSame(t, first, second)
	assert.False(t, f.surface.Attached(first))
	assert.True(t, f.surface.Attached(second))
	assert.Len(t, f.surface.Layers(), 1)
	assert.Equal(t, DatasetID(4), f.ctrl.Active())
}

func TestControllerLoadFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, DatasetID(4)).Return(pointCollection(orb.Point{1, 1}), nil).Once()
	f.backend.On("GetDataset", mock.Anything, DatasetID(5)).Return(nil, errors.New("Dataset not found"))

	require.NoError(t, f.ctrl.Load(context.Background(), 4))
	require.Error(t, f.ctrl.Load(context.Background(), 5))
	assert.Equal(t, []DatasetID{4}, f.ctrl.Registry().IDs())
	assert.Equal(t, DatasetID(4), f.ctrl.Active())
}

func TestControllerDeleteActive(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, DatasetID(4)).Return(pointCollection(orb.Point{1, 1}), nil)
	f.backend.On("DeleteDataset", mock.Anything, DatasetID(4)).Return("Dataset 4 removed successfully", nil)

	require.NoError(t, f.ctrl.Load(context.Background(), 4))
	layer, _ := f.ctrl.Registry().Get(4)

	require.NoError(t, f.ctrl.Delete(context.Background(), 4))
	assert.Equal(t, DatasetID(0), f.ctrl.Active())
	assert.False(t, f.ctrl.Registry().Has(4))
	assert.False(t, f.surface.Attached(layer))
	assert.Equal(t, note{LevelInfo, "Dataset removed"}, f.notifier.last())
}

func TestControllerDeleteOtherKeepsActive(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, mock.Anything).Return(pointCollection(orb.Point{1, 1}), nil)
	f.backend.On("DeleteDataset", mock.Anything, DatasetID(1)).Return("ok", nil)

	require.NoError(t, f.ctrl.Load(context.Background(), 1))
	require.NoError(t, f.ctrl.Load(context.Background(), 2))
	require.NoError(t, f.ctrl.Delete(context.Background(), 1))
	assert.Equal(t, DatasetID(2), f.ctrl.Active())
	assert.Equal(t, []DatasetID{2}, f.ctrl.Registry().IDs())
}

func TestControllerDeleteFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, DatasetID(4)).Return(pointCollection(orb.Point{1, 1}), nil)
	f.backend.On("DeleteDataset", mock.Anything, DatasetID(4)).Return("", errors.New("server down"))

	require.NoError(t, f.ctrl.Load(context.Background(), 4))
	layer, _ := f.ctrl.Registry().Get(4)

	require.Error(t, f.ctrl.Delete(context.Background(), 4))
	assert.Equal(t, DatasetID(4), f.ctrl.Active())
	assert.True(t, f.ctrl.Registry().Has(4))
	assert.True(t, f.surface.Attached(layer))
	assert.Equal(t, note{LevelError, "Error removing dataset: server down"}, f.notifier.last())
}

func TestControllerConfirmEditUpdatesDataset(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, DatasetID(3)).Return(pointCollection(orb.Point{1, 1}, orb.Point{2, 2}), nil)
	f.backend.On("UpdateDataset", mock.Anything, DatasetID(3), mock.MatchedBy(func(fc *geojson.FeatureCollection) bool {
		return len(fc.Features) == 2 &&
			fc.Features[0].Properties["name"] == "a" &&
			fc.Features[1].Properties["name"] == "pump" &&
			fc.Features[1].Properties["description"] == "diesel"
	})).Return("", errors.New("timeout"))

	require.NoError(t, f.ctrl.Load(context.Background(), 3))
	layer, _ := f.ctrl.Registry().Get(3)

	form, err := f.ctrl.OpenEditor(layer.Entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "b", form.Name)
	assert.Equal(t, DatasetID(3), form.Dataset)

	err = f.ctrl.ConfirmEdit(context.Background(), "pump", "diesel")
	require.Error(t, err)
	// 更新失败不回滚本地属性
	assert.Equal(t, "pump", layer.Entries[1].Props.Name)
	assert.Equal(t, "a", layer.Entries[0].Props.Name)
	assert.Equal(t, note{LevelError, "Error updating: timeout"}, f.notifier.last())
}

func TestControllerConfirmEditKeepsUntouchedAttributes(t *testing.T) {
	f := newFixture(t)
	fc := geojson.NewFeatureCollection()
	for i, name := range []string{"north", "site"} {
		feat := geojson.NewFeature(orb.Point{float64(i), float64(i)})
		feat.ID = i + 1
		feat.Properties = geojson.Properties{"name": name, "description": "d", "population": 1200, "category": "school"}
		fc.Append(feat)
	}
	var sent *geojson.FeatureCollection
	f.backend.On("GetDataset", mock.Anything, DatasetID(8)).Return(fc, nil)
	f.backend.On("UpdateDataset", mock.Anything, DatasetID(8), mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(*geojson.FeatureCollection) }).
		Return("Dataset updated successfully", nil)

	require.NoError(t, f.ctrl.Load(context.Background(), 8))
	layer, _ := f.ctrl.Registry().Get(8)
	_, err := f.ctrl.OpenEditor(layer.Entries[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.ConfirmEdit(context.Background(), "north gate", "d"))

	require.NotNil(t, sent)
	require.Len(t, sent.Features, 2)
	assert.Equal(t, "north gate", sent.Features[0].Properties["name"])
	assert.Equal(t, 1200, sent.Features[0].Properties["population"])

	untouched := sent.Features[1]
	assert.Equal(t, 2, untouched.ID)
	assert.Equal(t, geojson.Properties{"name": "site", "description": "d", "population": 1200, "category": "school"}, untouched.Properties)
}

func TestControllerEditUnsavedEntryHasNoNetworkCall(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.StartDrawing(ModePoint))
	f.ctrl.Click(orb.Point{0, 0})
	entry := f.ctrl.Session().Entries()[0]

	_, err := f.ctrl.OpenEditor(entry.ID)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.ConfirmEdit(context.Background(), "spring", ""))
	assert.Equal(t, "spring", entry.Props.Name)

	_, err = f.ctrl.OpenEditor("nope")
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestControllerUploadRejectsUnknownStructure(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Upload(context.Background(), "bad.geojson", []byte(`{"type":"Topology"}`))
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
	assert.Equal(t, LevelError, f.notifier.last().level)
	assert.Contains(t, f.notifier.last().msg, "Invalid GeoJSON file structure")
	assert.Equal(t, 0, f.ctrl.Registry().Len())
}

func TestControllerUploadFeature(t *testing.T) {
	f := newFixture(t)
	f.backend.On("SaveDataset", mock.Anything, mock.MatchedBy(func(req SaveRequest) bool {
		return req.Name == "trail" && len(req.Data.Features) == 1
	})).Return(SaveResult{ID: 1, Message: "saved"}, nil)
	f.backend.On("ListDatasets", mock.Anything).Return(nil, errors.New("list failed"))

	raw := []byte(`{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1],[2,1]]},"properties":{}}`)
	id, err := f.ctrl.Upload(context.Background(), "trail.json", raw)
	require.NoError(t, err)
	assert.Equal(t, DatasetID(1), id)
	assert.True(t, f.ctrl.Registry().Has(1))
	assert.Equal(t, "list failed", f.list.err)
}

func TestControllerRefreshDoesNotTouchRegistry(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, DatasetID(1)).Return(pointCollection(orb.Point{1, 1}), nil)
	f.backend.On("ListDatasets", mock.Anything).Return([]DatasetRecord{}, nil)

	require.NoError(t, f.ctrl.Load(context.Background(), 1))
	require.NoError(t, f.ctrl.Refresh(context.Background()))
	assert.True(t, f.ctrl.Registry().Has(1))
	assert.Equal(t, 1, f.list.loading)
}

func TestControllerReset(t *testing.T) {
	f := newFixture(t)
	f.backend.On("GetDataset", mock.Anything, mock.Anything).Return(pointCollection(orb.Point{1, 1}), nil)
	f.backend.On("ListDatasets", mock.Anything).Return([]DatasetRecord{}, nil)

	require.NoError(t, f.ctrl.Load(context.Background(), 1))
	require.NoError(t, f.ctrl.Load(context.Background(), 2))
	require.NoError(t, f.ctrl.Reset(context.Background()))
	assert.Equal(t, 0, f.ctrl.Registry().Len())
	assert.Equal(t, DatasetID(0), f.ctrl.Active())
	assert.Empty(t, f.surface.Layers())
}

func TestDeriveName(t *testing.T) {
	assert.Equal(t, "parcels", DeriveName("parcels.geojson"))
	assert.Equal(t, "a.b", DeriveName("a.b.json"))
	assert.Equal(t, "noext", DeriveName("noext"))
}
