package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultSessionSecret = "portfolio-dev-session-secret"
	defaultTokenSecret   = "portfolio-dev-token-secret"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string        `env:"LISTEN_ADDR"`
	Port          string        `env:"PORT" envDefault:"8080"`
	DatabasePath  string        `env:"DATABASE_PATH" envDefault:"portfolio.db"`
	SessionSecret string        `env:"SESSION_SECRET"`
	TokenSecret   string        `env:"TOKEN_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	GinMode       string        `env:"GIN_MODE" envDefault:"release"`
	AppEnv        string        `env:"APP_ENV" envDefault:"development"`
	SiteBaseURL   string        `env:"SITE_BASE_URL" envDefault:"http://localhost:3000"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// 为空时不信任任何代理，X-Forwarded-For 会被忽略
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryAPIBase   string `env:"CLOUDINARY_API_BASE"`
	UploadFolder        string `env:"UPLOAD_FOLDER" envDefault:"portfolio/blogs"`
	UploadMaxBytes      int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`

	LoginRatePerMinute   int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	ContactRatePerMinute int `env:"CONTACT_RATE_PER_MINUTE" envDefault:"5"`
}

// Production reports whether secure cookies and strict secrets are required.
func (c AppConfig) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Origins returns the CORS allow-list, always including the site itself.
func (c AppConfig) Origins() []string {
	seen := make(map[string]struct{}, len(c.AllowedOrigins)+1)
	origins := make([]string, 0, len(c.AllowedOrigins)+1)
	for _, raw := range append([]string{c.SiteBaseURL}, c.AllowedOrigins...) {
		origin := strings.TrimRight(strings.TrimSpace(raw), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

// Load 从 .env 文件和环境变量读取应用配置，并为缺失项提供默认值。
// 已存在的环境变量优先于 .env 中的同名项。
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	cfg.DatabasePath = strings.TrimSpace(cfg.DatabasePath)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "portfolio.db"
	}

	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	cfg.TokenSecret = strings.TrimSpace(cfg.TokenSecret)
	if cfg.Production() {
		if cfg.SessionSecret == "" {
			return AppConfig{}, errors.New("SESSION_SECRET is required in production")
		}
		if cfg.TokenSecret == "" {
			return AppConfig{}, errors.New("TOKEN_SECRET is required in production")
		}
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = defaultSessionSecret
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = defaultTokenSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}

	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	proxies := cfg.TrustedProxies[:0]
	for _, proxy := range cfg.TrustedProxies {
		if proxy = strings.TrimSpace(proxy); proxy != "" {
			proxies = append(proxies, proxy)
		}
	}
	cfg.TrustedProxies = proxies

	cfg.CloudinaryCloudName = strings.TrimSpace(cfg.CloudinaryCloudName)
	cfg.CloudinaryAPIKey = strings.TrimSpace(cfg.CloudinaryAPIKey)
	cfg.CloudinaryAPISecret = strings.TrimSpace(cfg.CloudinaryAPISecret)
	cfg.CloudinaryAPIBase = strings.TrimSpace(cfg.CloudinaryAPIBase)
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 10 << 20
	}

	if cfg.LoginRatePerMinute <= 0 {
		cfg.LoginRatePerMinute = 10
	}
	if cfg.ContactRatePerMinute <= 0 {
		cfg.ContactRatePerMinute = 5
	}

	return cfg, nil
}
