package router

import (
	"log/slog"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/handlers"
	"github.com/anonto42/yatube/internal/mailer"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/monitoring"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/tokens"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the external resources the server is built from.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *gorm.DB
	Storage   storage.Storage
	Mailer    mailer.Mailer
	PageCache *cache.PageCache
	// Firebase enables /auth/firebase/ when set.
	Firebase handlers.TokenVerifier
}

// NewServer builds the echo instance with middleware and every route.
func NewServer(d Deps) (*echo.Echo, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(d.Logger)

	userRepo := repositories.NewPostgresUserRepository(d.DB)

	config.SetupMiddleware(e, d.Config, d.Logger)
	e.Use(monitoring.Middleware())
	e.Use(middleware.SessionAuth(middleware.NewSessionStore(d.Config.SecretKey, d.Config.IsProduction()), userRepo, d.Config.SecretKey))

	SetupRoutes(e, d, userRepo)
	return e, nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps, userRepo repositories.UserRepository) {
	cfg := d.Config

	// --- Initialize Repositories ---
	postRepo := repositories.NewPostgresPostRepository(d.DB)
	groupRepo := repositories.NewPostgresGroupRepository(d.DB)
	commentRepo := repositories.NewPostgresCommentRepository(d.DB)
	followRepo := repositories.NewPostgresFollowRepository(d.DB)

	login := middleware.LoginRequired(handlers.LoginPath)
	canManageGroups := middleware.PermissionRequired(models.PermAddGroups, handlers.LoginPath)
	var cachePage echo.MiddlewareFunc
	if d.PageCache != nil {
		cachePage = middleware.CachePage(d.PageCache)
	}

	e.GET("/health", handlers.NewHealthHandler(d.DB).HealthCheck)

	root := e.Group("")
	handlers.NewFeedHandler(postRepo, groupRepo, cfg.PostsPerPage).RegisterFeedRoutes(root, login, cachePage)
	handlers.NewUserHandler(userRepo, postRepo, followRepo, cfg.PostsPerPage).RegisterProfileRoutes(root)
	handlers.NewFollowHandler(followRepo, userRepo).RegisterFollowRoutes(root, login)
	handlers.NewPostHandler(postRepo, groupRepo, commentRepo, d.Storage).RegisterPostRoutes(root, login)
	handlers.NewCommentHandler(commentRepo, postRepo).RegisterCommentRoutes(root, login)
	handlers.NewGroupHandler(groupRepo).RegisterGroupRoutes(root, canManageGroups)
	handlers.NewMediaHandler(d.Storage).RegisterMediaRoutes(root)
	handlers.RegisterAboutRoutes(root)

	resetTokens := tokens.NewPasswordResetTokens(cfg.SecretKey, cfg.PasswordResetTimeout)
	authHandler := handlers.NewAuthHandler(userRepo, resetTokens, d.Mailer, d.Firebase, cfg.SiteURL)
	authHandler.RegisterAuthRoutes(e.Group("/auth"), login)

	d.Logger.Debug("Routes configured", slog.Int("count", len(e.Routes())))
}
