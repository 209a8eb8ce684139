package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tradehub/tradehub-api/internal/config"
	"github.com/tradehub/tradehub-api/internal/coordinator"
	"github.com/tradehub/tradehub-api/internal/handler"
	"github.com/tradehub/tradehub-api/internal/identity"
	"github.com/tradehub/tradehub-api/internal/repository"
	"github.com/tradehub/tradehub-api/internal/service"
	"github.com/tradehub/tradehub-api/internal/storage"
	"github.com/tradehub/tradehub-api/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra       Infrastructure
	config      *config.Config
	router      *gin.Engine
	server      *http.Server
	coordinator *coordinator.Coordinator
}

func NewApp(ctx context.Context, infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	rateLimiter := service.NewRateLimiter(infra.Redis())
	roleCache := service.NewRoleCacheService(infra.Redis(), cfg.Security.RoleCacheTTL.Duration)
	notifier := service.NewEmailNotifier(cfg.SMTP)
	healthChecker := NewHealthChecker(infra)

	uploader, err := storage.NewCloudinaryUploader(cfg.Cloudinary)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize uploader: %w", err)
	}

	provider := identity.NewHTTPProvider(cfg.Identity.BaseURL, cfg.Identity.Timeout.Duration)

	coord := coordinator.New(coordinator.Config{
		Provider:      provider,
		Profiles:      repos.Profile,
		Professionals: repos.Professional,
		RoleChanges:   repos.RoleChange,
		Roles:         roleCache,
		Notifier:      notifier,
		Logger:        infra.Logger(),
		SiteURL:       cfg.Identity.SiteURL,
	})
	if err := coord.Init(ctx); err != nil {
		infra.Logger().Warn("session restore failed", zap.Error(err))
	}

	profileService := service.NewProfileService(repos.Profile, repos.Professional, roleCache, infra.Logger())
	marketplaceService := service.NewMarketplaceService(
		repos.Profile,
		repos.Job,
		repos.Bid,
		repos.Message,
		repos.Complaint,
		infra.Logger(),
	)

	authHandler := handler.NewAuthHandler(coord)
	profileHandler := handler.NewProfileHandler(profileService, coord, uploader)
	marketplaceHandler := handler.NewMarketplaceHandler(marketplaceService)

	router := gin.Default()
	router.Use(otelgin.Middleware("tradehub-api"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, profileHandler, marketplaceHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:       infra,
		config:      cfg,
		router:      router,
		server:      srv,
		coordinator: coord,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Coordinator() *coordinator.Coordinator {
	return a.coordinator
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	marketplaceHandler *handler.MarketplaceHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.SignUp,
			)
			auth.POST("/signin",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.EmailAndIPKey),
				authHandler.SignIn,
			)
			auth.POST("/otp",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.EmailBasedKey),
				authHandler.OTP,
			)
			auth.POST("/signout", handler.AuthMiddleware(cfg.Identity.JWTSecret), authHandler.SignOut)
		}

		protected := api.Group("")
		protected.Use(handler.AuthMiddleware(cfg.Identity.JWTSecret))
		{
			profile := protected.Group("/profile")
			{
				profile.GET("/me", profileHandler.Me)
				profile.PATCH("/me", profileHandler.Update)
				profile.DELETE("/me", profileHandler.Delete)
				profile.POST("/me/avatar", profileHandler.UploadAvatar)
				profile.POST("/me/role-change", profileHandler.RequestRoleChange)
			}

			jobs := protected.Group("/jobs")
			{
				jobs.POST("", marketplaceHandler.CreateJob)
				jobs.GET("", marketplaceHandler.ListJobs)
				jobs.PATCH("/:id/status", marketplaceHandler.UpdateJobStatus)
				jobs.POST("/:id/bids", marketplaceHandler.PlaceBid)
				jobs.GET("/:id/bids", marketplaceHandler.ListJobBids)
				jobs.POST("/:id/bids/:bidId/accept", marketplaceHandler.AcceptBid)
				jobs.POST("/:id/messages", marketplaceHandler.SendMessage)
				jobs.GET("/:id/messages", marketplaceHandler.ReadThread)
			}

			protected.GET("/bids", marketplaceHandler.ListOwnBids)
			protected.POST("/complaints", marketplaceHandler.FileComplaint)
			protected.GET("/complaints", marketplaceHandler.ListOwnComplaints)
			protected.GET("/dashboard", marketplaceHandler.Dashboard)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	a.coordinator.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
