// internal/api/router.go
package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LaporanOCR/internal/config"
	"github.com/Corphon/LaporanOCR/internal/identity"
	"github.com/Corphon/LaporanOCR/internal/ocr"
	"github.com/Corphon/LaporanOCR/internal/report"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Dependencies are the components the router dispatches to.
type Dependencies struct {
	Config    config.Config
	OCR       *ocr.Adapter
	Reports   *report.Service
	Extractor *identity.Extractor
	Logger    *utils.Logger
	Metrics   *utils.APIMetrics
	Limiter   *RateLimiter
}

// SetupRouter builds the gin engine with middleware and routes.
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = utils.GetLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = utils.NewAPIMetrics(nil, deps.Logger)
	}
	if deps.Limiter == nil {
		deps.Limiter = NewRateLimiter()
	}
	if deps.Extractor == nil {
		deps.Extractor = identity.NewExtractor(nil, "", 0, deps.Logger, deps.Metrics)
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	handler := NewHandler(deps.Config, deps.OCR, deps.Reports, deps.Extractor, deps.Logger, deps.Metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(requestLogger(deps.Logger, deps.Metrics))
	r.Use(corsMiddleware())
	r.SetHTMLTemplate(tmpl)

	// multipart bodies beyond this spill to temp files
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes()

	limit := deps.Limiter.RateLimitByIP(deps.Config.RateLimitPerMinute, time.Minute)

	r.GET("/", handler.IndexPage)

	r.POST("/ocr", limit, handler.OCR)
	r.POST("/generate-report", limit, handler.GenerateReport)
	r.POST("/extract-identity", limit, handler.ExtractIdentity)

	r.GET("/healthz", handler.GetHealth)

	api := r.Group("/api")
	{
		api.GET("/metrics", handler.GetMetrics)
	}

	return r, nil
}
