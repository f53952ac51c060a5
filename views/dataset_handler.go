package views

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GrainArc/SketchMap/logging"
	"github.com/GrainArc/SketchMap/methods"
	"github.com/GrainArc/SketchMap/metrics"
	"github.com/GrainArc/SketchMap/response"
	"github.com/GrainArc/SketchMap/services"
	"github.com/GrainArc/SketchMap/sketch"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DatasetHandler struct {
	service *services.DatasetService
	metrics *metrics.Metrics
	log     *logrus.Entry
}

func NewDatasetHandler(service *services.DatasetService, m *metrics.Metrics) *DatasetHandler {
	return &DatasetHandler{service: service, metrics: m, log: logging.NewLogger("dataset-api")}
}

type saveDatasetRequest struct {
	Data        json.RawMessage `json:"data"`
	Filename    string          `json:"filename"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

type updateDatasetRequest struct {
	ID   int64           `json:"id"`
	Data json.RawMessage `json:"data"`
}

func emptyData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Save POST /api/save-dataset
func (h *DatasetHandler) Save(c *gin.Context) {
	var req saveDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil || emptyData(req.Data) {
		response.BadRequest(c, "No data provided")
		return
	}
	fc, err := sketch.ParsePayload(req.Data)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ds, err := h.service.Save(c.Request.Context(), services.SaveInput{
		Data:        fc,
		Filename:    req.Filename,
		Name:        req.Name,
		Description: req.Description,
	})
	h.metrics.Dataset("save", err)
	if err != nil {
		h.log.WithError(err).Error("save dataset failed")
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, services.SavedMessage(ds.Name), ds.ID)
}

// Update POST /api/update-dataset
func (h *DatasetHandler) Update(c *gin.Context) {
	var req updateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil || emptyData(req.Data) {
		response.BadRequest(c, "No data provided")
		return
	}
	if req.ID <= 0 {
		response.BadRequest(c, sketch.ErrInvalidDatasetID.Error())
		return
	}
	fc, err := sketch.ParsePayload(req.Data)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ds, err := h.service.Update(c.Request.Context(), req.ID, fc)
	h.metrics.Dataset("update", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, services.UpdatedMessage(ds.Name), ds.ID)
}

// List GET /api/get-datasets
func (h *DatasetHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	h.metrics.Dataset("list", err)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	records := make([]sketch.DatasetRecord, len(items))
	for i, ds := range items {
		records[i] = services.ToRecord(ds)
	}
	response.Success(c, records)
}

// Get GET /api/get-dataset/:id 返回保存的 GeoJSON
func (h *DatasetHandler) Get(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	ds, err := h.service.Get(c.Request.Context(), int64(id))
	h.metrics.Dataset("get", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", ds.Data)
}

// Remove GET|DELETE /api/remove-dataset/:id
func (h *DatasetHandler) Remove(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	err := h.service.Delete(c.Request.Context(), int64(id))
	h.metrics.Dataset("delete", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, services.RemovedMessage(id), int64(id))
}

// Export GET /api/export-dataset/:id?format=geojson|dxf|zip
func (h *DatasetHandler) Export(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ds, err := h.service.Get(ctx, int64(id))
	if err != nil {
		h.metrics.Dataset("export", err)
		h.fail(c, err)
		return
	}
	fc, err := sketch.ParsePayload(ds.Data)
	if err != nil {
		h.metrics.Dataset("export", err)
		response.InternalError(c, err.Error())
		return
	}

	slug := methods.Slug(ds.Name)
	format := c.DefaultQuery("format", "geojson")
	switch format {
	case "geojson":
		attachment(c, slug+".geojson")
		c.Data(http.StatusOK, "application/geo+json", ds.Data)
	case "dxf":
		data, err := methods.GeoJSONToDXFBytes(fc)
		if err != nil {
			h.metrics.Dataset("export", err)
			response.InternalError(c, err.Error())
			return
		}
		attachment(c, slug+".dxf")
		c.Data(http.StatusOK, "application/dxf", data)
	case "zip":
		var buf bytes.Buffer
		if err := methods.BundleDataset(&buf, ds.Name, fc); err != nil {
			h.metrics.Dataset("export", err)
			response.InternalError(c, err.Error())
			return
		}
		attachment(c, slug+".zip")
		c.Data(http.StatusOK, "application/zip", buf.Bytes())
	default:
		response.BadRequest(c, "unsupported export format "+format)
		return
	}
	h.metrics.Dataset("export", nil)
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}

func datasetID(c *gin.Context) (sketch.DatasetID, bool) {
	id, err := sketch.ParseDatasetID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return 0, false
	}
	return id, true
}

func (h *DatasetHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrDatasetNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	h.log.WithError(err).Error("dataset request failed")
	response.InternalError(c, err.Error())
}
