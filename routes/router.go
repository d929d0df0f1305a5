package routes

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/watchpost/watchpost/config"
	"github.com/watchpost/watchpost/controllers"
	"github.com/watchpost/watchpost/ingest"
	"github.com/watchpost/watchpost/middleware"
	"github.com/watchpost/watchpost/presence"
	"github.com/watchpost/watchpost/registry"
	"github.com/watchpost/watchpost/store"
	"github.com/watchpost/watchpost/utils"
)

// Deps bundles the constructed components the router wires together, so
// tests can assemble the full HTTP surface around fabricated registries
// and in-memory stores.
type Deps struct {
	Config   config.AppConfig
	Service  *ingest.Service
	Store    *store.MediaStore
	Writer   *ingest.Writer
	Registry *registry.Registry
	Presence presence.Tracker
	Admin    registry.AdminCredential
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if utils.Logger != nil {
		r.Use(utils.Ginzap(utils.Logger))
		r.Use(utils.RecoveryWithZap(utils.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Device-Id", "X-Auth-Token", middleware.AdminHeaderName},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	if pages, _ := filepath.Glob("templates/*.html"); len(pages) > 0 {
		r.LoadHTMLGlob("templates/*.html")
	}

	apiController := controllers.NewAPIController(deps.Service, deps.Store, deps.Presence)
	dashController := controllers.NewDashboardController(deps.Store, deps.Writer, deps.Registry,
		deps.Presence, deps.Admin, cfg.SessionSecret)

	r.GET("/health", func(ctx *gin.Context) {
		utils.OK(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	api.POST("/upload", apiController.Upload)
	api.POST("/heartbeat", apiController.Heartbeat)
	api.GET("/list", middleware.AdminHeaderRequired(deps.Admin), apiController.List)

	r.GET("/login", dashController.LoginForm)
	r.POST("/login", dashController.Login)
	r.GET("/logout", dashController.Logout)

	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/dashboard")
	})

	session := r.Group("")
	session.Use(middleware.SessionRequired(cfg.SessionSecret))
	session.GET("/dashboard", dashController.Dashboard)
	session.GET("/gallery", dashController.Gallery)
	session.GET("/media/:filename", dashController.MediaFile)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Fail(ctx, http.StatusNotFound, "not found")
			return
		}
		ctx.Redirect(http.StatusFound, "/dashboard")
	})

	return r
}
