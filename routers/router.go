package routers

import (
	"github.com/GrainArc/SketchMap/config"
	"github.com/GrainArc/SketchMap/metrics"
	"github.com/GrainArc/SketchMap/services"
	"github.com/GrainArc/SketchMap/views"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps 路由依赖
type Deps struct {
	DB       *gorm.DB
	Config   config.Config
	Registry *prometheus.Registry
}

// NewEngine 创建 gin 引擎并挂载全部路由
func NewEngine(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	Setup(r, deps)
	return r
}

func Setup(r *gin.Engine, deps Deps) {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		reg, gatherer = deps.Registry, deps.Registry
	}
	m := metrics.New(reg)
	r.Use(m.Middleware())

	datasets := services.NewDatasetService(deps.DB)
	symbols := services.NewSymbolService(deps.DB, deps.Config.Icons.Dir)
	backend := &services.LocalBackend{Datasets: datasets, Symbols: symbols}

	datasetHandler := views.NewDatasetHandler(datasets, m)
	symbolHandler := views.NewSymbolHandler(symbols)
	sketchHandler := views.NewSketchHandler(backend, m)

	api := r.Group("/api")
	{
		api.POST("/save-dataset", datasetHandler.Save)
		api.POST("/update-dataset", datasetHandler.Update)
		api.GET("/get-datasets", datasetHandler.List)
		api.GET("/get-dataset/:id", datasetHandler.Get)
		api.GET("/remove-dataset/:id", datasetHandler.Remove)
		api.DELETE("/remove-dataset/:id", datasetHandler.Remove)
		api.GET("/export-dataset/:id", datasetHandler.Export)

		api.GET("/icons", symbolHandler.List)
		api.POST("/icons", symbolHandler.Upload)
		api.GET("/icons/:name", symbolHandler.GetImage)
		api.DELETE("/icons/:name", symbolHandler.Delete)
	}

	r.GET("/ws/sketch", sketchHandler.Serve)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if dir := deps.Config.Icons.Dir; dir != "" {
		r.Static("/static/icons", dir)
	}
}
