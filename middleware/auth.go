package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

const (
	// ContextUserKey stores the authenticated *models.User inside Gin context.
	ContextUserKey = "current_user"
	// ContextTokenKey stores the raw token the user was authenticated with.
	ContextTokenKey = "auth_token"
	// TokenCookieName is the HttpOnly cookie carrying the login JWT.
	TokenCookieName = "yatube_token"
	// LoginURL is where anonymous callers of protected pages are sent.
	LoginURL = "/auth/login/"
)

// UserLoader resolves the user id found in a token.
type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// CurrentUser authenticates the request from the token cookie when present.
// Anonymous requests continue unchanged.
func CurrentUser(signer *utils.TokenSigner, blacklist *utils.TokenBlacklist, users UserLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(TokenCookieName)
		if err != nil || token == "" {
			ctx.Next()
			return
		}
		if blacklist.IsRevoked(token) {
			ctx.Next()
			return
		}
		claims, err := signer.ParseToken(token)
		if err != nil {
			ctx.Next()
			return
		}
		user, err := users.GetUser(ctx.Request.Context(), claims.UserID)
		if err != nil {
			utils.Sugar.Debugf("token for missing user id=%d: %v", claims.UserID, err)
			ctx.Next()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

// GetUser returns the authenticated user or nil for anonymous requests.
func GetUser(ctx *gin.Context) *models.User {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// LoginRequired redirects anonymous callers to the login page with a return path.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if GetUser(ctx) == nil {
			ctx.Redirect(http.StatusFound, LoginRedirectURL(ctx.Request.URL.RequestURI()))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// LoginRedirectURL builds /auth/login/?next=<next>, leaving slashes unescaped.
func LoginRedirectURL(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// AdminRequired guards the JSON admin API.
func AdminRequired(cfg config.AppConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := GetUser(ctx)
		if user == nil {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			return
		}
		if !cfg.IsAdmin(user.Username) {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin only")
			return
		}
		ctx.Next()
	}
}
