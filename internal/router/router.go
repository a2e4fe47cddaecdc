package router

import (
	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/config"
	adminhandlers "github.com/realcpa-hub/internal/http/handlers/admin"
	publichandlers "github.com/realcpa-hub/internal/http/handlers/public"
	"github.com/realcpa-hub/internal/idempotency"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/provider"
	"github.com/realcpa-hub/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := NewRateLimitRule(cfg.Redis.Prefix, "login", cfg.Security.LoginRateLimit)
	eventRule := NewRateLimitRule(cfg.Redis.Prefix, "events", cfg.Security.EventRateLimit)
	forgotRule := NewRateLimitRule(cfg.Redis.Prefix, "forgot_password", cfg.Security.LoginRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Telemetry.Enabled {
		r.Use(telemetry.Middleware())
	}

	idempotent := idempotencyMiddleware(c)

	// 追踪跳转（纯文本错误）
	r.GET("/t/:token", publicHandler.TrackRedirect)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/events",
			RateLimitMiddleware(redisClient, eventRule, KeyByIPAndJSONField("token")),
			idempotent,
			publicHandler.IngestEvent,
		)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/forgot-password", RateLimitMiddleware(redisClient, forgotRule, KeyByIPAndJSONField("email")), publicHandler.ForgotPassword)
			auth.POST("/reset-password", publicHandler.ResetPassword)
		}

		public := apiV1.Group("/public")
		{
			public.GET("/offers", publicHandler.ListPublicOffers)
			public.GET("/offers/:id", publicHandler.GetPublicOffer)
		}

		// 以下接口需要登录，并按角色做 RBAC
		authorized := apiV1.Group("")
		authorized.Use(UserJWTAuthMiddleware(c.UserAuthService), RoleRBACMiddleware(c.AuthzService))
		{
			authorized.GET("/me", publicHandler.GetCurrentUser)
			authorized.PATCH("/me", publicHandler.UpdateCurrentUser)
			authorized.PATCH("/me/password", publicHandler.ChangePassword)
			authorized.GET("/me/affiliate-profile", publicHandler.GetAffiliateProfile)
			authorized.PATCH("/me/affiliate-profile", publicHandler.UpdateAffiliateProfile)
			authorized.GET("/me/supplier-profile", publicHandler.GetSupplierProfile)
			authorized.PATCH("/me/supplier-profile", publicHandler.UpdateSupplierProfile)
			authorized.GET("/me/notifications", publicHandler.ListMyNotifications)
			authorized.PATCH("/me/notifications/read-all", publicHandler.MarkAllNotificationsRead)
			authorized.PATCH("/me/notifications/:id", publicHandler.MarkNotificationRead)

			affiliate := authorized.Group("/affiliate")
			{
				affiliate.POST("/offers/:id/join", publicHandler.JoinOffer)
				affiliate.GET("/my-offers", publicHandler.ListMyOffers)
				affiliate.GET("/stats", publicHandler.GetAffiliateStats)
				affiliate.GET("/balance", publicHandler.GetAffiliateBalance)
				affiliate.GET("/payouts", publicHandler.ListAffiliatePayouts)
				affiliate.POST("/payouts", idempotent, publicHandler.RequestPayout)
				affiliate.GET("/analytics", publicHandler.GetAffiliateAnalytics)
			}

			supplier := authorized.Group("/supplier")
			{
				supplier.GET("/offers", publicHandler.ListSupplierOffers)
				supplier.POST("/offers", publicHandler.CreateSupplierOffer)
				supplier.PATCH("/offers/:id", publicHandler.UpdateSupplierOffer)
				supplier.PATCH("/offers/:id/status", publicHandler.UpdateSupplierOfferStatus)
				supplier.GET("/offers/:id/affiliates", publicHandler.ListOfferAffiliates)
				supplier.PATCH("/affiliate-participation/:id", publicHandler.DecideSupplierParticipation)
				supplier.GET("/stats", publicHandler.GetSupplierStats)
				supplier.GET("/events", publicHandler.ListSupplierEvents)
				supplier.PATCH("/events/:id", publicHandler.ModerateSupplierEvent)
			}

			admin := authorized.Group("/admin")
			{
				admin.GET("/dashboard", adminHandler.GetDashboard)
				admin.GET("/users", adminHandler.ListUsers)
				admin.GET("/offers", adminHandler.ListOffers)
				admin.GET("/moderation/participations", adminHandler.ListPendingParticipations)
				admin.PATCH("/participations/:id", adminHandler.DecideParticipation)
				admin.GET("/events", adminHandler.ListEvents)
				admin.PATCH("/events/:id", adminHandler.ModerateEvent)
				admin.GET("/payouts", adminHandler.ListPayouts)
				admin.PATCH("/payouts/:id", adminHandler.UpdatePayoutStatus)
				admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
				admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// idempotencyMiddleware 未配置存储时退化为直通
func idempotencyMiddleware(c *provider.Container) gin.HandlerFunc {
	if c == nil || c.IdempotencyStore == nil {
		return func(ctx *gin.Context) { ctx.Next() }
	}
	return idempotency.Middleware(c.IdempotencyStore, c.IdempotencyTTL())
}
