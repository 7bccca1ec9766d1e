package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-ops/config"
	"relief-ops/internal/api/handler"
	"relief-ops/internal/api/middleware"
	"relief-ops/pkg/jwt"
	"relief-ops/pkg/redis"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup builds the gin engine with every route
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// nil *redis.Client must not leak into the interfaces as a non-nil value
	var checker middleware.TokenChecker
	var limiter middleware.RateLimiter
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	// ── health ──
	r.GET("/health", health(db, rdb))

	staff := middleware.RoleAuth("admin", "coordinator")

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", middleware.RateLimit(limiter, loginRateLimit, loginRateWindow), h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			users := authorized.Group("/users")
			{
				users.POST("", middleware.RoleAuth("admin"), h.User.Create)
				users.GET("/volunteers", staff, h.User.ListVolunteers)
			}

			cases := authorized.Group("/cases")
			{
				cases.POST("", h.Case.Create)
				cases.GET("", h.Case.List)
				cases.GET("/:id", h.Case.Get)
				cases.PUT("/:id/assign", staff, h.Case.Assign)
				cases.PUT("/:id/status", h.Case.UpdateStatus)
			}

			assignments := authorized.Group("/assignments", staff)
			{
				assignments.GET("/plan", h.Assignment.Plan)
				assignments.POST("/apply", h.Assignment.Apply)
			}

			blood := authorized.Group("/blood")
			{
				blood.GET("", h.Blood.List)
				blood.POST("", staff, h.Blood.Create)
				blood.PUT("/bulk", staff, h.Blood.BulkWrite)
				blood.PUT("/:id", staff, h.Blood.Update)
				blood.DELETE("/:id", staff, h.Blood.Delete)
			}

			fc := authorized.Group("/forecast")
			{
				fc.POST("/predictions", staff, h.Forecast.SetPredictions)
				fc.POST("/predictions/import", staff, h.Forecast.ImportPredictions)
				fc.POST("/predictions/refresh", staff, h.Forecast.Refresh)
				fc.POST("/demand", h.Forecast.Demand)
				fc.POST("/match", h.Forecast.Match)
				fc.GET("/expiry", h.Forecast.Expiry)
				fc.POST("/export", staff, h.Export.ExportForecast)
			}

			authorized.GET("/notifications", h.Notification.List)
			authorized.PUT("/notifications/read-all", h.Notification.MarkAllRead)
			authorized.GET("/audit", middleware.RoleAuth("admin"), h.Notification.AuditLog)
		}
	}

	return r
}

// health reports database and redis reachability; redis is optional
func health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "unreachable"
			}
		}
		c.JSON(code, status)
	}
}
