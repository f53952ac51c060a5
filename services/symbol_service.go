package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GrainArc/SketchMap/logging"
	"github.com/GrainArc/SketchMap/models"
	"github.com/GrainArc/SketchMap/sketch"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

var ErrSymbolNotFound = errors.New("icon not found")

var iconMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// SymbolService 图标：上传到数据库的图标与 icons 目录下的静态图标
type SymbolService struct {
	db  *gorm.DB
	dir string
	log *logrus.Entry
}

func NewSymbolService(db *gorm.DB, dir string) *SymbolService {
	return &SymbolService{db: db, dir: dir, log: logging.NewLogger("symbol-service")}
}

// SymbolUploadRequest 上传请求参数
type SymbolUploadRequest struct {
	Name        string
	Description string
	Category    string
	File        *multipart.FileHeader
}

// Upload 上传图标，名称重复时覆盖
func (s *SymbolService) Upload(ctx context.Context, req *SymbolUploadRequest) (*models.Symbol, error) {
	ext := strings.ToLower(filepath.Ext(req.File.Filename))
	mimeType, ok := iconMimeTypes[ext]
	if !ok {
		return nil, errors.New("only PNG, JPG, GIF, SVG and WEBP icons are supported")
	}

	file, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	// SVG 不解析尺寸
	width, height := 64, 64
	if ext != ".svg" {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
		if err != nil {
			return nil, errors.New("cannot read image size")
		}
		width, height = cfg.Width, cfg.Height
	}

	name := req.Name
	if name == "" {
		name = sketch.IconName(req.File.Filename)
	}
	symbol := &models.Symbol{
		Name:        name,
		Filename:    name + ext,
		MimeType:    mimeType,
		Width:       width,
		Height:      height,
		ImageData:   imageData,
		Description: req.Description,
		Category:    req.Category,
	}

	var existing models.Symbol
	err = s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	switch {
	case err == nil:
		symbol.ID = existing.ID
		symbol.CreatedAt = existing.CreatedAt
		err = s.db.WithContext(ctx).Save(symbol).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.WithContext(ctx).Create(symbol).Error
	}
	if err != nil {
		return nil, fmt.Errorf("save icon: %w", err)
	}
	s.log.WithField("name", name).Info("icon uploaded")
	return symbol, nil
}

// ListFiles 所有图标文件标识：目录中的图片加上数据库中的图标，按名称排序去重
func (s *SymbolService) ListFiles(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}

	dirFiles, err := s.dirFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range dirFiles {
		add(f)
	}

	var names []string
	if err := s.db.WithContext(ctx).Model(&models.Symbol{}).Pluck("filename", &names).Error; err != nil {
		return nil, fmt.Errorf("list icons: %w", err)
	}
	for _, f := range names {
		add(f)
	}
	sort.Strings(files)
	return files, nil
}

func (s *SymbolService) dirFiles() ([]string, error) {
	if s.dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read icons dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := iconMimeTypes[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// Image 按名称或文件名取图标内容，数据库优先
func (s *SymbolService) Image(ctx context.Context, name string) ([]byte, string, error) {
	name = filepath.Base(name)
	var symbol models.Symbol
	err := s.db.WithContext(ctx).Where("name = ? OR filename = ?", name, name).First(&symbol).Error
	if err == nil {
		return symbol.ImageData, symbol.MimeType, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	files, err := s.dirFiles()
	if err != nil {
		return nil, "", err
	}
	for _, f := range files {
		if f != name && sketch.IconName(f) != name {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, f))
		if err != nil {
			return nil, "", err
		}
		return data, iconMimeTypes[strings.ToLower(filepath.Ext(f))], nil
	}
	return nil, "", ErrSymbolNotFound
}

// Delete 删除上传的图标
func (s *SymbolService) Delete(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Symbol{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSymbolNotFound
	}
	return nil
}
