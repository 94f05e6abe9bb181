package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cookiejar/creator/internal/admission"
	"cookiejar/creator/internal/config"
	"cookiejar/creator/internal/middleware"
	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/service"
	"cookiejar/creator/internal/session"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

type Dependencies struct {
	Log        zerolog.Logger
	Config     *config.AppConfig
	Sessions   *session.Provider
	Auth       *service.AuthService
	Enrollment *service.EnrollmentService
	Profiles   *service.ProfileService
	Games      *service.GameService
	Uploads    *service.UploadService
	Checks     map[string]Check
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	sessions   *session.Provider
	auth       *service.AuthService
	enrollment *service.EnrollmentService
	profiles   *service.ProfileService
	games      *service.GameService
	uploads    *service.UploadService
	checks     map[string]Check
}

func NewHandlerSet(deps Dependencies) HandlerSet {
	return HandlerSet{
		log:        deps.Log,
		cfg:        deps.Config,
		sessions:   deps.Sessions,
		auth:       deps.Auth,
		enrollment: deps.Enrollment,
		profiles:   deps.Profiles,
		games:      deps.Games,
		uploads:    deps.Uploads,
		checks:     deps.Checks,
	}
}

// Register mounts every route on the root group. Host routing and session
// resolution are engine middleware and have already run.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/", h.Landing)
	router.GET("/auth/signin", h.SignIn)
	router.GET("/dashboard", h.DashboardIndex)
	router.GET("/dashboard/:page", h.DashboardPage)

	api := router.Group("/api")
	api.GET("/healthz", h.Health)

	v1 := api.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.SignUp)
		auth.POST("/login", h.Login)
		auth.GET("/session", h.CurrentSession)

		signedIn := v1.Group("/auth", middleware.RequireSession())
		signedIn.POST("/logout", h.Logout)
		signedIn.POST("/session/refresh", h.RefreshSession)
		signedIn.PUT("/password", h.ChangePassword)
	}

	v1.GET("/admission", h.Admission)

	enrollment := v1.Group("/creator/enrollment", middleware.RequireSession())
	enrollment.POST("/begin", h.BeginEnrollment)
	enrollment.POST("", h.SubmitApplication)

	profile := v1.Group("/profile", middleware.RequireAdmission("/dashboard/settings"))
	profile.GET("", h.GetProfile)
	profile.PUT("", h.UpdateProfile)

	v1.GET("/overview/stats", middleware.RequireAdmission(admission.OverviewPath), h.GameStats)

	games := v1.Group("/games", middleware.RequireAdmission("/dashboard/games"))
	games.GET("", h.ListGames)
	games.PUT("/:id", h.UpdateGame)
	v1.POST("/games", middleware.RequireAdmission("/dashboard/upload"), h.UploadGame)

	admin := v1.Group("/admin", middleware.RequireRoles(models.UserRoleAdmin))
	admin.GET("/applications", h.AdminListApplications)
}
