package handler

import (
	"time"

	"github.com/portfolio/internal/service"
	"gorm.io/gorm"
)

// Options configures the handler set.
type Options struct {
	TokenSecret          string
	TokenTTL             time.Duration
	SecureCookies        bool
	MediaHost            service.MediaHost
	UploadFolder         string
	UploadMaxBytes       int64
	LoginRatePerMinute   int
	ContactRatePerMinute int
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	blogs          *service.BlogService
	contacts       *service.ContactService
	auth           *service.AuthService
	media          *service.MediaService
	metadata       *service.MetadataService
	renderer       *service.ContentRenderer
	secureCookies  bool
	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	return &API{
		blogs:          service.NewBlogService(gdb),
		contacts:       service.NewContactService(gdb),
		auth:           service.NewAuthService(gdb, opts.TokenSecret, opts.TokenTTL),
		media:          service.NewMediaService(opts.MediaHost, opts.UploadFolder, opts.UploadMaxBytes),
		metadata:       service.NewMetadataService(),
		renderer:       service.NewContentRenderer(),
		secureCookies:  opts.SecureCookies,
		loginLimiter:   NewRateLimiter(opts.LoginRatePerMinute, time.Minute),
		contactLimiter: NewRateLimiter(opts.ContactRatePerMinute, time.Minute),
	}
}
