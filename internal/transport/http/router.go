package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailhub/backend/internal/auth"
	"mailhub/backend/internal/config"
	"mailhub/backend/internal/health"
	"mailhub/backend/internal/middleware"
	"mailhub/backend/internal/monitoring"
	"mailhub/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config                *config.Config
	ClientService         *service.ClientService
	MailboxService        *service.MailboxService
	CorrespondenceService *service.CorrespondenceService
	ContractService       *service.ContractService
	DashboardService      *service.DashboardService
	AuthService           *auth.Service
	HealthChecker         *health.HealthChecker
	Metrics               *monitoring.Metrics
	Logger                *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(1 * 1024 * 1024))

	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	rateLimiter := middleware.NewRateLimiter(deps.Config.RateLimit.RPS, deps.Config.RateLimit.Burst, deps.Metrics)
	router.Use(rateLimiter.Limit())

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	clientHandler := NewClientHandler(deps.ClientService, deps.CorrespondenceService, deps.Logger)
	mailboxHandler := NewMailboxHandler(deps.MailboxService, deps.CorrespondenceService, deps.Logger)
	correspondenceHandler := NewCorrespondenceHandler(deps.CorrespondenceService, deps.Logger)
	contractHandler := NewContractHandler(deps.ContractService, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.DashboardService, deps.CorrespondenceService, deps.Logger)

	jwtAuth := middleware.NewJWTAuth(deps.AuthService, deps.Logger)

	// 健康检查与监控
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.HealthChecker != nil {
		healthHandler := gin.WrapH(deps.HealthChecker.Handler())
		router.GET("/live", healthHandler)
		router.GET("/ready", healthHandler)
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// V1 API
	v1 := router.Group("/v1")
	{
		// ========== Auth Routes ==========
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.POST("/logout", jwtAuth.RequireAuth(), authHandler.Logout)
			authRoutes.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
		}

		// 业务路由全部需要操作员登录
		api := v1.Group("")
		api.Use(jwtAuth.RequireAuth())

		// ========== Client Routes ==========
		clientRoutes := api.Group("/clients")
		{
			clientRoutes.POST("", clientHandler.Create)
			clientRoutes.GET("", clientHandler.List)
			clientRoutes.GET("/:id", clientHandler.Get)
			clientRoutes.PATCH("/:id", clientHandler.Update)
			clientRoutes.DELETE("/:id", clientHandler.Delete)
			clientRoutes.POST("/:id/mailbox", clientHandler.AssignMailbox)
			clientRoutes.GET("/:id/correspondence", clientHandler.Correspondence)
		}

		// ========== Mailbox Routes ==========
		mailboxRoutes := api.Group("/mailboxes")
		{
			mailboxRoutes.GET("", mailboxHandler.List)
			mailboxRoutes.GET("/:id", mailboxHandler.Get)
			mailboxRoutes.PATCH("/:id", mailboxHandler.Update)
			mailboxRoutes.DELETE("/:id", mailboxHandler.Delete)
			mailboxRoutes.GET("/:id/correspondence", mailboxHandler.Correspondence)
		}

		// ========== Correspondence Routes ==========
		correspondenceRoutes := api.Group("/correspondence")
		{
			correspondenceRoutes.POST("", correspondenceHandler.Register)
			correspondenceRoutes.GET("", correspondenceHandler.List)
			correspondenceRoutes.GET("/pending", correspondenceHandler.Pending)
			correspondenceRoutes.GET("/today", correspondenceHandler.Today)
			correspondenceRoutes.GET("/:id", correspondenceHandler.Get)
			correspondenceRoutes.POST("/:id/pickup", correspondenceHandler.Pickup)
			correspondenceRoutes.POST("/:id/revert-pickup", correspondenceHandler.RevertPickup)
			correspondenceRoutes.POST("/:id/return", correspondenceHandler.Return)
			correspondenceRoutes.DELETE("/:id", correspondenceHandler.Delete)
		}

		// ========== Contract Routes ==========
		contractRoutes := api.Group("/contracts")
		{
			contractRoutes.POST("", contractHandler.Create)
			contractRoutes.GET("", contractHandler.List)
			contractRoutes.GET("/expired", contractHandler.Expired)
			contractRoutes.GET("/:id", contractHandler.Get)
			contractRoutes.PATCH("/:id", contractHandler.Update)
			contractRoutes.DELETE("/:id", contractHandler.Delete)
		}

		// ========== Dashboard & Reports ==========
		api.GET("/dashboard", dashboardHandler.Snapshot)
		api.GET("/reports/correspondence", dashboardHandler.CorrespondenceReport)
	}

	return router
}
