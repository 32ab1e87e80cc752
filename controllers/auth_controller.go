package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/services"
	"github.com/cppla/yatube/utils"
)

// AuthController handles signup, login and logout through HTML forms.
type AuthController struct {
	accounts     *services.AccountService
	signer       *utils.TokenSigner
	blacklist    *utils.TokenBlacklist
	secureCookie bool
}

func NewAuthController(accounts *services.AccountService, signer *utils.TokenSigner, blacklist *utils.TokenBlacklist, secureCookie bool) *AuthController {
	return &AuthController{accounts: accounts, signer: signer, blacklist: blacklist, secureCookie: secureCookie}
}

// SignupForm renders the registration page.
func (a *AuthController) SignupForm(ctx *gin.Context) {
	render(ctx, http.StatusOK, "signup.html", gin.H{"form": services.SignupForm{}, "errors": map[string]string{}})
}

// Signup registers the user, logs them in and sends them to the index.
func (a *AuthController) Signup(ctx *gin.Context) {
	form := services.SignupForm{
		Username:  ctx.PostForm("username"),
		FirstName: ctx.PostForm("first_name"),
		LastName:  ctx.PostForm("last_name"),
		Email:     ctx.PostForm("email"),
		Password:  ctx.PostForm("password"),
	}
	user, err := a.accounts.Register(ctx.Request.Context(), form)
	if errs, ok := fieldErrors(err); ok {
		form.Password = ""
		render(ctx, http.StatusOK, "signup.html", gin.H{"form": form, "errors": errs})
		return
	}
	if err != nil {
		ServerError(ctx, err)
		return
	}
	if err := a.issueCookie(ctx, user.ID, user.Username); err != nil {
		ServerError(ctx, err)
		return
	}
	utils.Sugar.Infow("user registered", "user_id", user.ID, "username", user.Username)
	ctx.Redirect(http.StatusFound, "/")
}

// LoginForm renders the login page keeping the return path.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	render(ctx, http.StatusOK, "login.html", gin.H{"next": safeNext(ctx.Query("next"))})
}

// Login checks the credentials and redirects to next.
func (a *AuthController) Login(ctx *gin.Context) {
	username := ctx.PostForm("username")
	next := safeNext(ctx.PostForm("next"))

	user, err := a.accounts.Authenticate(ctx.Request.Context(), username, ctx.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		render(ctx, http.StatusOK, "login.html", gin.H{
			"next":     next,
			"username": username,
			"error":    "Пожалуйста, введите правильные имя пользователя и пароль.",
		})
		return
	}
	if err != nil {
		ServerError(ctx, err)
		return
	}
	if err := a.issueCookie(ctx, user.ID, user.Username); err != nil {
		ServerError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, next)
}

// Logout revokes the token until it would have expired and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token != "" {
		expiresAt := time.Now().Add(utils.SessionTTL)
		if claims, err := a.signer.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		a.blacklist.Revoke(token, expiresAt)
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", a.secureCookie, true)
	ctx.Redirect(http.StatusFound, "/")
}

func (a *AuthController) issueCookie(ctx *gin.Context, userID uint, username string) error {
	token, err := a.signer.GenerateToken(userID, username, utils.SessionTTL)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookieName, token, int(utils.SessionTTL/time.Second), "/", "", a.secureCookie, true)
	return nil
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
