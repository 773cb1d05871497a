package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"restaurant-booking/config"
	"restaurant-booking/internal/api/handler"
	"restaurant-booking/internal/api/middleware"
)

// HealthChecker 健康检查依赖（数据库）
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎。
// limiter 为 nil 时写接口不限流。
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.Limiter, health HealthChecker, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ProcessTime())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			logger.Warn("健康检查失败", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	})

	// 写接口限流
	write := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 顾客模块
		customers := v1.Group("/customers")
		{
			customers.GET("", h.Customer.ListCustomers)
			customers.GET("/:id", h.Customer.GetCustomer)
			customers.POST("", write, h.Customer.CreateCustomer)
			customers.PUT("/:id", write, h.Customer.UpdateCustomer)
			customers.DELETE("/:id", write, h.Customer.DeleteCustomer)
		}

		// 餐桌模块
		tables := v1.Group("/tables")
		{
			tables.GET("", h.Table.ListTables)
			tables.GET("/:id", h.Table.GetTable)
			tables.POST("", write, h.Table.CreateTable)
			tables.PATCH("/:id", write, h.Table.UpdateTable)
			tables.DELETE("/:id", write, h.Table.DeleteTable)
		}

		// 营业时间模块
		hours := v1.Group("/operating-hours")
		{
			hours.GET("", h.OperatingHour.ListOperatingHours)
			hours.GET("/:day", h.OperatingHour.GetOperatingHour)
			hours.POST("", write, h.OperatingHour.CreateOperatingHour)
			hours.PATCH("/:day", write, h.OperatingHour.UpdateOperatingHour)
			hours.DELETE("/:day", write, h.OperatingHour.DeleteOperatingHour)
		}

		// 预订模块（日报静态路由优先于 /:id）
		reservations := v1.Group("/reservations")
		{
			reservations.GET("/daily-report", h.Report.DailyReport)
			reservations.GET("/daily-report/export", h.Report.ExportDailyReport)

			reservations.GET("", h.Reservation.ListReservations)
			reservations.GET("/:id", h.Reservation.GetReservation)
			reservations.POST("", write, h.Reservation.CreateReservation)
			reservations.PATCH("/:id", write, h.Reservation.UpdateReservation)
			reservations.PATCH("/:id/status", write, h.Reservation.UpdateReservationStatus)
			reservations.POST("/:id/merge-tables", write, h.Reservation.MergeTables)
			reservations.POST("/:id/demerge-tables", write, h.Reservation.DemergeTables)
			reservations.DELETE("/:id", write, h.Reservation.DeleteReservation)
		}
	}

	return r, nil
}
