package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook may be nil
// when WhatsApp is not configured.
func New(
	insights *handlers.InsightsHandler,
	records *handlers.RecordsHandler,
	webhook *handlers.WebhookHandler,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	batches := r.Group("/batches")
	batches.POST("", records.SyncBatch)
	batches.GET("/:batchId/performance-insights", insights.PerformanceInsights)
	batches.GET("/:batchId/insights", insights.Stored)
	batches.POST("/:batchId/insights/export", insights.Export)
	batches.POST("/:batchId/daily-records", records.AddDailyLog)
	batches.POST("/:batchId/weight-samplings", records.AddWeightSample)
	batches.POST("/:batchId/harvests", records.AddHarvest)

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	logger.Info("router initialized", zap.Bool("webhook", webhook != nil))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
