package routes

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/controllers"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/repository"
	"github.com/cppla/yatube/services"
	"github.com/cppla/yatube/storage"
	"github.com/cppla/yatube/templates"
	"github.com/cppla/yatube/utils"
)

// Dependencies are the collaborators built once in main and shared by all requests.
type Dependencies struct {
	DB        *gorm.DB
	Cache     utils.PageCache
	Media     storage.Storage
	Blacklist *utils.TokenBlacklist
	Clock     services.Clock
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Dependencies) (*gin.Engine, error) {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Clock == nil {
		deps.Clock = services.NewRealClock()
	}
	if deps.Blacklist == nil {
		deps.Blacklist = utils.NewTokenBlacklist(nil)
	}
	if deps.Cache == nil {
		deps.Cache = utils.NewMemoryPageCache(time.Now)
	}
	if deps.Media == nil {
		deps.Media = storage.NewDiskStorage(cfg.MediaRoot, cfg.MediaURL)
	}

	store := repository.NewStore(deps.DB)
	feeds := services.NewFeedService(store)
	posts := services.NewPostService(store, deps.Media, deps.Clock, cfg.MediaMaxWidth)
	follows := services.NewFollowService(store)
	accounts := services.NewAccountService(store)
	groups := services.NewGroupService(store)
	signer := utils.NewTokenSigner(cfg.JWTSecret)

	renderer, err := templates.New(template.FuncMap{
		"linebreaks": utils.Linebreaks,
		"media":      posts.ImageURL,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
	})
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = renderer

	// Access log goes to its own rolling file when configured
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		accessLog = utils.NewRollingFileLogger(cfg, cfg.GinPath)
	}
	r.Use(ginzap.Ginzap(accessLog, time.RFC3339, true))
	r.Use(ginzap.CustomRecoveryWithZap(accessLog, true, func(ctx *gin.Context, err any) {
		controllers.ServerError(ctx, err)
	}))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", middleware.CSRFHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(utils.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   len(cfg.TLSDomains) > 0,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("yatube_session", sessionStore))
	r.Use(middleware.CurrentUser(signer, deps.Blacklist, accounts))

	if disk, ok := deps.Media.(*storage.DiskStorage); ok {
		r.Static(strings.TrimRight(cfg.MediaURL, "/"), disk.BasePath)
	}

	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50300, "database unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(feeds, posts, follows, groups)
	followController := controllers.NewFollowController(feeds, follows)
	authController := controllers.NewAuthController(accounts, signer, deps.Blacklist, len(cfg.TLSDomains) > 0)
	adminController := controllers.NewAdminController(groups, accounts)

	pages := r.Group("")
	pages.Use(middleware.CSRF(controllers.CSRFFailure))

	pages.GET("/", middleware.CachePage(deps.Cache, time.Duration(cfg.PageCacheSeconds)*time.Second), postController.Index)
	pages.GET("/group/:slug/", postController.GroupPosts)
	pages.GET("/profile/:username/", postController.Profile)
	pages.GET("/posts/:id/", middleware.PostViewRecorder(posts), postController.PostDetail)

	authGroup := pages.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	authGroup.GET("/signup/", authController.SignupForm)
	authGroup.POST("/signup/", authController.Signup)
	authGroup.GET("/login/", authController.LoginForm)
	authGroup.POST("/login/", authController.Login)
	authGroup.GET("/logout/", authController.Logout)
	authGroup.POST("/logout/", authController.Logout)

	protected := pages.Group("")
	protected.Use(middleware.LoginRequired())
	protected.GET("/create/", postController.CreateForm)
	protected.POST("/create/", postController.CreatePost)
	protected.GET("/posts/:id/edit/", postController.EditForm)
	protected.POST("/posts/:id/edit/", postController.EditPost)
	protected.POST("/posts/:id/comment/", postController.AddComment)
	protected.GET("/follow/", followController.Index)
	protected.GET("/profile/:username/follow/", followController.Follow)
	protected.GET("/profile/:username/unfollow/", followController.Unfollow)

	admin := pages.Group("/admin/api")
	admin.Use(middleware.AdminRequired(cfg))
	admin.GET("/groups", adminController.ListGroups)
	admin.POST("/groups", adminController.CreateGroup)
	admin.DELETE("/groups/:id", adminController.DeleteGroup)
	admin.DELETE("/users/:id", adminController.DeleteUser)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/admin/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		controllers.NotFound(ctx)
	})

	return r, nil
}
