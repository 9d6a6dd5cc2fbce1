package api

import (
	"context"

	"drive/internal/server/config"
	"drive/internal/server/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
// Background work started for the router stops when ctx is cancelled.
func SetupRouter(ctx context.Context, handler *Handler, cfg *config.Config) (*echo.Echo, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.BaseURL},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))
	e.Use(Metrics())
	e.Use(RequestLogger())

	// State-changing routes share one limiter
	limiter := NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	limited := limiter.Middleware()

	// Page
	e.GET("/", handler.HandleIndex)
	e.POST("/open", handler.HandleOpenPage, limited)
	e.POST("/back", handler.HandleBackPage, limited)
	e.POST("/theme", handler.HandleThemePage, limited)
	e.POST("/upload", handler.HandleUploadPage, limited)

	// JSON API
	g := e.Group("/api")
	g.GET("/view", handler.HandleView)
	g.GET("/tree", handler.HandleTree)
	g.POST("/open", handler.HandleOpen, limited)
	g.POST("/back", handler.HandleBack, limited)
	g.POST("/theme", handler.HandleTheme, limited)
	g.POST("/upload", handler.HandleUpload, limited)

	// Health & metrics
	e.GET("/health", handler.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e, nil
}
