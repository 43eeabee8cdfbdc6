package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tillpoint/fiscal-api/internal/config"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/handler"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/middleware"
	"github.com/tillpoint/fiscal-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth          *handler.AuthHandler
	ZReport       *handler.ZReportHandler
	Consolidation *handler.ConsolidationHandler
	Schedule      *handler.ScheduleHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *logrus.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-store rate limiter
		rateLimiter := middleware.NewStoreRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/profile", h.Auth.Profile)

	registerWorkPeriodRoutes(protected, h, deps)
	registerZReportRoutes(protected, h)
	registerStoreRoutes(protected, h)
	registerScheduleRoutes(protected, h)
}

func registerWorkPeriodRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	periods := protected.Group("/work-periods")
	{
		periods.GET("/:id/preview", h.ZReport.Preview)
		periods.GET("/:id/validate", h.ZReport.Validate)
		// Closing a period consumes a sequence number, so retries must be
		// idempotent at the transport layer as well as in the service.
		periods.POST("/:id/z-report", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.ZReport.Generate)
	}
}

func registerZReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/z-reports")
	{
		reports.GET("", h.ZReport.List)
		reports.GET("/verify", h.ZReport.VerifyBatch)
		reports.GET("/gaps", h.ZReport.Gaps)
		reports.GET("/sequence/:storeId/:n", h.ZReport.GetBySequence)
		reports.GET("/:id", h.ZReport.Get)
		reports.GET("/:id/verify", h.ZReport.Verify)
		reports.GET("/:id/export.csv", h.ZReport.ExportCSV)
		reports.GET("/:id/export.xlsx", h.ZReport.ExportXLSX)

		// Variance sign-off and corrections are management actions
		reports.POST("/:id/approve", middleware.RequireRole(entity.RoleManager), h.ZReport.Approve)
		reports.POST("/:id/corrections", middleware.RequireRole(entity.RoleManager), h.ZReport.Correct)
	}
}

func registerStoreRoutes(protected *gin.RouterGroup, h *Handlers) {
	stores := protected.Group("/stores")
	{
		stores.GET("/:storeId/consolidated", h.Consolidation.Get)
		stores.POST("/:storeId/consolidated", middleware.RequireRole(entity.RoleManager), h.Consolidation.Generate)
		stores.GET("/:storeId/variance-policy", h.Schedule.GetThreshold)
		stores.PUT("/:storeId/variance-policy", middleware.RequireRole(entity.RoleManager), h.Schedule.UpsertThreshold)
	}
}

func registerScheduleRoutes(protected *gin.RouterGroup, h *Handlers) {
	schedules := protected.Group("/schedules")
	schedules.Use(middleware.RequireRole(entity.RoleManager))
	{
		schedules.GET("", h.Schedule.List)
		schedules.POST("", h.Schedule.Create)
		schedules.PUT("/:id", h.Schedule.Update)
	}
}
