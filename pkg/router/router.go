// Package router assembles the HTTP surface shared by the server binary and
// the serverless entry point.
package router

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/handlers"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/pipeline"
	"ai-proposal-api/pkg/services"
)

// Dependencies are the collaborators the routes are served by. PDF and
// Index may be nil; their routes then answer 503.
type Dependencies struct {
	Orchestrator  *pipeline.Orchestrator
	LLM           llm.CompletionService
	Monitoring    *services.MonitoringService
	Maintenance   *handlers.Maintenance
	PDF           handlers.PDFRenderer
	Index         handlers.StrategySearcher
	APIKey        string
	AdminUsername string
	AdminPassword string
	Logger        *zap.Logger
}

// New builds the gin engine.
func New(deps Dependencies) *gin.Engine {
	if deps.Maintenance == nil {
		deps.Maintenance = &handlers.Maintenance{}
	}
	if deps.Monitoring == nil {
		deps.Monitoring = services.NewMonitoringService(deps.Logger)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(deps.Monitoring.LoggingMiddleware())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("X-API-KEY", services.RequestIDHeader)
	corsConfig.AddExposeHeaders("Content-Disposition", services.RequestIDHeader)
	r.Use(cors.New(corsConfig))

	c := deps.Orchestrator.Cache()
	adminHandler := handlers.NewAdminHandler(deps.AdminUsername, deps.AdminPassword, deps.Maintenance, deps.Logger)
	monitoringHandler := handlers.NewMonitoringHandler(deps.Monitoring)
	proposalHandler := handlers.NewProposalHandler(deps.Orchestrator, deps.LLM, deps.Logger)
	analysisHandler := handlers.NewAnalysisHandler(deps.Orchestrator, deps.Logger)
	cacheHandler := handlers.NewCacheHandler(c, deps.Logger)
	exportHandler := handlers.NewExportHandler(c, deps.PDF, deps.Logger)
	searchHandler := handlers.NewSearchHandler(deps.Index, deps.Logger)

	r.GET("/health", adminHandler.HealthCheck)

	api := r.Group("/api")
	api.Use(AuthMiddleware(deps.APIKey))
	{
		api.POST("/generate", proposalHandler.Generate)
		api.POST("/analyze", proposalHandler.Analyze)
		api.POST("/analysis/:company/generate", proposalHandler.GenerateForCompany)
		api.GET("/analysis/:company", analysisHandler.View)
		api.GET("/llm-content/:company", analysisHandler.Narrative)

		api.GET("/cache-status/:company", cacheHandler.Status)
		api.GET("/cache/:company/:file", cacheHandler.File)
		api.DELETE("/clear-cache/:company", cacheHandler.Clear)

		api.GET("/proposal/:company/pdf", exportHandler.PDF)
		api.GET("/proposal/:company/export", exportHandler.Workbook)
		api.GET("/strategies/search", searchHandler.Search)

		v1 := api.Group("/v1")
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}
		v1.GET("/monitoring/logs", monitoringHandler.GetLogs)
	}

	return r
}

// AuthMiddleware requires the X-API-KEY header to match apiKey. An empty key
// leaves the routes open.
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		provided := c.GetHeader("X-API-KEY")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
