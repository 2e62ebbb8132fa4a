package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/schoolsuite/cbt-backend/internal/config"
	"github.com/schoolsuite/cbt-backend/internal/handler"
	"github.com/schoolsuite/cbt-backend/internal/middleware"
	"github.com/schoolsuite/cbt-backend/internal/response"
	"github.com/schoolsuite/cbt-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Practice *handler.PracticeHandler
	Bank     *handler.BankHandler
	WS       *handler.WSHandler
	Monitor  *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Admin-Key"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.Monitor.Health)

	// Rate limiter for login attempts (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/guest/login", authLimiter.Middleware(), handlers.Auth.GuestLogin)

		// Authenticated identity routes
		auth.GET("/guest/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.POST("/guest/logout", middleware.RequireStudentJWT(authService), handlers.Auth.Logout)
	}

	// ─── 2. Practice Group (JWT + Active Login) ────────────────────────
	practiceAPI := router.Group("/api/v1/practice")
	practiceAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckActiveLogin(authService),
	)
	{
		practiceAPI.POST("/session", handlers.Practice.StartSession)
		practiceAPI.GET("/session", handlers.Practice.GetState)
		practiceAPI.DELETE("/session", handlers.Practice.Abandon)
		practiceAPI.PUT("/session/answer", handlers.Practice.SelectAnswer)
		practiceAPI.PUT("/session/flag", handlers.Practice.ToggleFlag)
		practiceAPI.PUT("/session/navigate", handlers.Practice.Navigate)
		practiceAPI.POST("/session/submit", handlers.Practice.Submit)
		practiceAPI.GET("/session/result", handlers.Practice.GetResult)
		practiceAPI.GET("/attempts", handlers.Practice.ListAttempts)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/practice/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group (Operator Key) ─────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminKey(authService))
	{
		adminAPI.POST("/bank/questions", handlers.Bank.AddQuestion)
		adminAPI.GET("/bank/questions", handlers.Bank.ListQuestions)
		adminAPI.DELETE("/bank/questions/:id", handlers.Bank.DeleteQuestion)
		adminAPI.GET("/bank/subjects", handlers.Bank.ListSubjects)

		adminAPI.GET("/monitor/metrics", handlers.Monitor.MetricsSSE)
	}

	return router
}
