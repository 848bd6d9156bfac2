package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

const (
	// SessionName is the cookie that carries the admin session.
	SessionName = "portfolio_session"

	sessionTokenKey = "admin_token"
	adminIDKey      = "admin_id"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验管理员凭据并把签名令牌写入会话
func (a *API) Login(c *gin.Context) {
	if !a.loginLimiter.Allow(c.ClientIP()) {
		a.loginLimiter.reject(c)
		return
	}

	var req loginRequest
	if !bindJSON(c, &req, "Email and password are required") {
		return
	}

	admin, err := a.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Printf("[auth] failed login for %q from %s", strings.TrimSpace(req.Email), c.ClientIP())
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondServerError(c, "auth", err)
		return
	}

	token, err := a.auth.IssueToken(admin)
	if err != nil {
		respondServerError(c, "auth", err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	if err := session.Save(); err != nil {
		respondServerError(c, "auth", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Verify 报告当前请求是否携带有效的管理员令牌
func (a *API) Verify(c *gin.Context) {
	if _, ok := a.currentAdmin(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true, Secure: a.secureCookies})
	if err := session.Save(); err != nil {
		respondServerError(c, "auth", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuthRequired rejects requests without a valid admin token.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.currentAdmin(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Set(adminIDKey, claims.AdminID())
		c.Next()
	}
}

// ShowStats 返回后台面板的计数
func (a *API) ShowStats(c *gin.Context) {
	blogCount, err := a.blogs.Count()
	if err != nil {
		respondServerError(c, "admin", err)
		return
	}
	contactCount, err := a.contacts.Count()
	if err != nil {
		respondServerError(c, "admin", err)
		return
	}
	unreadCount, err := a.contacts.UnreadCount()
	if err != nil {
		respondServerError(c, "admin", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blogCount":    blogCount,
		"contactCount": contactCount,
		"unreadCount":  unreadCount,
	})
}

func (a *API) currentAdmin(c *gin.Context) (*service.AdminClaims, bool) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		if value, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
			token = value
		}
	}
	if token == "" {
		return nil, false
	}

	claims, err := a.auth.VerifyToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
