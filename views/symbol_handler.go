package views

import (
	"errors"
	"net/http"

	"github.com/GrainArc/SketchMap/response"
	"github.com/GrainArc/SketchMap/services"
	"github.com/gin-gonic/gin"
)

type SymbolHandler struct {
	service *services.SymbolService
}

func NewSymbolHandler(service *services.SymbolService) *SymbolHandler {
	return &SymbolHandler{service: service}
}

// List 获取图标文件列表
// @Summary 图标文件名数组，目录图标与上传图标合并
func (h *SymbolHandler) List(c *gin.Context) {
	files, err := h.service.ListFiles(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if files == nil {
		files = []string{}
	}
	response.Success(c, files)
}

// Upload 上传图标图片
// @Summary 上传图标图片
// @Accept multipart/form-data
// @Param file formData file true "图片文件(PNG/JPG/GIF/SVG/WEBP)"
// @Param name formData string false "图标名称(默认使用文件名)"
// @Param description formData string false "图标描述"
// @Param category formData string false "图标分类"
func (h *SymbolHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No file provided")
		return
	}

	symbol, err := h.service.Upload(c.Request.Context(), &services.SymbolUploadRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		File:        file,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "Icon "+symbol.Name+" uploaded", symbol.Filename)
}

// GetImage 获取原始图片
// @Param name path string true "图标名称或文件名"
func (h *SymbolHandler) GetImage(c *gin.Context) {
	data, mimeType, err := h.service.Image(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, services.ErrSymbolNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	c.Header("Content-Disposition", "inline")
	c.Header("Cache-Control", "public, max-age=86400") // 缓存1天
	c.Data(http.StatusOK, mimeType, data)
}

// Delete 删除上传的图标
func (h *SymbolHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.service.Delete(c.Request.Context(), name); err != nil {
		if errors.Is(err, services.ErrSymbolNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "Icon "+name+" removed", nil)
}
