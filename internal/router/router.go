package router

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/handler"
	"github.com/portfolio/internal/service"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, gdb *gorm.DB) *gin.Engine {
	return setupRouter(cfg, handler.NewAPI(gdb, apiOptions(cfg)))
}

func setupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.New()
	// 未配置 TRUSTED_PROXIES 时 ClientIP 只取 RemoteAddr，限流无法靠伪造头绕过
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Printf("[router] invalid TRUSTED_PROXIES %v, trusting none: %v", cfg.TrustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Logger(), gin.Recovery())
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(handler.SessionName, store))
	r.Use(handler.CORS(cfg.Origins()))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	admin := api.AuthRequired()

	auth := apiGroup.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.GET("/verify", api.Verify)
		auth.POST("/logout", api.Logout)
	}

	blogs := apiGroup.Group("/blogs")
	{
		blogs.GET("", api.ListBlogs)
		blogs.POST("", admin, api.CreateBlog)
		blogs.GET("/categories", api.ListCategories)
		blogs.GET("/:id", api.GetBlog)
		blogs.PUT("/:id", admin, api.UpdateBlog)
		blogs.DELETE("/:id", admin, api.DeleteBlog)
		blogs.GET("/slug/:slug", api.GetBlogBySlug)
		blogs.PUT("/slug/:slug", admin, api.UpdateBlogBySlug)
		blogs.DELETE("/slug/:slug", admin, api.DeleteBlogBySlug)
	}

	contacts := apiGroup.Group("/contacts")
	{
		contacts.POST("", api.CreateContact)
		contacts.GET("", admin, api.ListContacts)
		contacts.GET("/:id", admin, api.GetContact)
		contacts.PATCH("/:id", admin, api.UpdateContactRead)
		contacts.DELETE("/:id", admin, api.DeleteContact)
	}

	// 需要认证的编辑器接口
	editor := apiGroup.Group("", admin)
	{
		editor.POST("/upload", api.UploadMedia)
		editor.DELETE("/upload", api.DeleteMedia)
		editor.GET("/fetch-url", api.FetchURLMetadata)
		editor.GET("/admin/stats", api.ShowStats)
	}

	return r
}

func apiOptions(cfg config.AppConfig) handler.Options {
	opts := handler.Options{
		TokenSecret:          cfg.TokenSecret,
		TokenTTL:             cfg.TokenTTL,
		SecureCookies:        cfg.Production(),
		UploadFolder:         cfg.UploadFolder,
		UploadMaxBytes:       cfg.UploadMaxBytes,
		LoginRatePerMinute:   cfg.LoginRatePerMinute,
		ContactRatePerMinute: cfg.ContactRatePerMinute,
	}
	// 未配置 Cloudinary 时保持 MediaHost 为 nil 接口
	if client := service.NewCloudinaryClient(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret); client != nil {
		if cfg.CloudinaryAPIBase != "" {
			client.SetBaseURL(cfg.CloudinaryAPIBase)
		}
		opts.MediaHost = client
	}
	return opts
}
