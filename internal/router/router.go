package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "parseview/docs"
	"parseview/internal/config"
	"parseview/internal/handler"
	"parseview/internal/metrics"
	"parseview/internal/middleware"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Upload  *handler.UploadHandler
	Result  *handler.ResultHandler
	Session *handler.SessionHandler
	Health  *handler.HealthHandler
	Info    *handler.InfoHandler
	UI      *handler.UIHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h Handlers, m *metrics.Metrics, templates *template.Template) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(templates)
	r.MaxMultipartMemory = 8 << 20

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Ops
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/api", h.Info.Info)

	session := middleware.Session(&cfg.Session)

	// JSON API
	v1 := r.Group("/api/v1")
	v1.Use(session)
	v1.POST("/upload", h.Upload.Upload)

	result := v1.Group("/result")
	result.GET("", h.Result.Result)
	result.GET("/stats", h.Result.Stats)
	result.GET("/document", h.Result.Document)
	result.GET("/elements", h.Result.Elements)
	result.GET("/elements/:index", h.Result.Element)
	result.GET("/pages/:page/boxes.png", h.Result.Boxes)
	result.GET("/export", h.Result.Export)

	v1.GET("/session", h.Session.State)
	v1.DELETE("/session", h.Session.Discard)

	// Browser UI
	ui := r.Group("")
	ui.Use(session)
	ui.GET("/", h.UI.Index)
	ui.POST("/upload", h.UI.Upload)
	ui.POST("/session/discard", h.UI.Discard)
	ui.GET("/view/document", h.UI.Document)
	ui.GET("/view/elements", h.UI.Elements)

	return r
}
