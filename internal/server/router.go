package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/handler"
	"github.com/Mahd-Mehn/dao-voting/pkg/monitor"
	"github.com/Mahd-Mehn/dao-voting/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig 路由配置
type RouterConfig struct {
	RequestTimeout time.Duration // 0: no per-request bound
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(cfg RouterConfig, proposals *handler.ProposalHandler, health *handler.HealthHandler) *gin.Engine {
	// 0. 初始化监控指标 & 校验器
	monitor.Init()
	validator.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())
	if cfg.RequestTimeout > 0 {
		r.Use(requestTimeout(cfg.RequestTimeout))
	}

	// 3. 注册基础路由
	r.GET("/health", health.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.POST("/proposals", proposals.CreateProposal)
		api.POST("/vote", proposals.Vote)
		api.GET("/proposals", proposals.ListProposals)
		api.GET("/proposals/count", proposals.CountProposals)
		api.GET("/proposals/:id", proposals.GetProposal)
		api.GET("/proposals/:id/voters/:address", proposals.HasVoted)
		api.POST("/proposals/:id/execute", proposals.ExecuteProposal)
		api.POST("/proposals/:id/delete", proposals.DeleteProposal)
	}

	return r
}

// WithCORS wraps the engine for browser clients. An empty origin list
// disables CORS headers entirely.
func WithCORS(engine http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return engine
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}).Handler(engine)
}

// requestTimeout bounds the whole request, including every node round trip
// a handler makes.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
