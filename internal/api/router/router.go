package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-sync/backend/config"
	"shift-sync/backend/internal/api/handler"
	"shift-sync/backend/internal/api/middleware"
	"shift-sync/backend/pkg/jwt"
	"shift-sync/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/login/employee", h.Auth.LoginEmployee)
			auth.POST("/login/admin", h.Auth.LoginAdmin)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 员工模块（仅管理员）
			employees := authorized.Group("/employees")
			employees.Use(middleware.RoleAuth("admin"))
			{
				employees.GET("", h.Employee.ListEmployees)
				employees.GET("/:id", h.Employee.GetEmployee)
				employees.POST("", h.Employee.CreateEmployee)
				employees.PUT("/:id", h.Employee.UpdateEmployee)
				employees.DELETE("/:id", h.Employee.DeleteEmployee)
			}

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts) // 非管理员仅见自己名下（Handler 层收窄）
				shifts.GET("/working-hours", middleware.RoleAuth("admin"), h.Shift.WorkingHours)
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.POST("", middleware.RoleAuth("admin"), h.Shift.CreateShift)
				shifts.POST("/validate", middleware.RoleAuth("admin"), h.Shift.ValidateShift)
				shifts.PUT("/:id", middleware.RoleAuth("admin"), h.Shift.UpdateShift)
				shifts.DELETE("/:id", h.Shift.DeleteShift) // admin 或本人（Service 层鉴权）
			}

			// 问题反馈模块
			issues := authorized.Group("/issues")
			{
				issues.POST("", h.Issue.CreateIssue)
				issues.GET("/:id", h.Issue.GetIssue) // 非管理员仅见自己提交的（Service 层鉴权）
				issues.GET("", h.Issue.ListIssues)
				issues.GET("/unread-count", middleware.RoleAuth("admin"), h.Issue.UnreadCount)
				issues.PUT("/:id", middleware.RoleAuth("admin"), h.Issue.UpdateIssue)
				issues.PATCH("/:id/read", middleware.RoleAuth("admin"), h.Issue.MarkIssueRead)
				issues.DELETE("/:id", middleware.RoleAuth("admin"), h.Issue.DeleteIssue)
			}

			// 分析模块（仅管理员）
			analytics := authorized.Group("/analytics")
			analytics.Use(middleware.RoleAuth("admin"))
			{
				analytics.GET("/dashboard", h.Analytics.Dashboard)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/working-hours", middleware.RoleAuth("admin"), h.Export.ExportWorkingHours)
				export.GET("/calendar", h.Export.ExportShiftCalendar) // 非管理员仅导出自己的班次
			}
		}
	}

	return r
}
