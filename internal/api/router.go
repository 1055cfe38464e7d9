package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/bikeshare-insights/internal/config"
	"github.com/jengzang/bikeshare-insights/internal/handler"
	"github.com/jengzang/bikeshare-insights/internal/middleware"
)

// Handlers bundles everything the router serves
type Handlers struct {
	Dashboard *handler.DashboardHandler
	Datasets  *handler.DatasetHandler
	Metrics   http.Handler
}

// SetupRouter 设置路由
func SetupRouter(ctx context.Context, cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Bikeshare Insights API is running",
		})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// API 路由组
	api := r.Group("/api/v1")
	if cfg.RateLimit.Requests > 0 {
		api.Use(middleware.RateLimit(ctx, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		api.GET("/controls", h.Dashboard.GetControls)
		api.GET("/summary", h.Dashboard.GetSummary)
		api.GET("/dashboard", h.Dashboard.GetDashboard)

		charts := api.Group("/charts")
		{
			charts.GET("/usage-heatmap", h.Dashboard.GetUsageHeatmap)
			charts.GET("/temperature-scatter", h.Dashboard.GetTemperatureScatter)
			charts.GET("/user-types", h.Dashboard.GetUserTypes)
			charts.GET("/correlation", h.Dashboard.GetCorrelation)
			charts.GET("/segments", h.Dashboard.GetSegments)
		}

		datasets := api.Group("/datasets", middleware.Auth(cfg.Auth.JWTSecret))
		{
			datasets.POST("/reload", h.Datasets.Reload)
		}
	}

	return r
}
