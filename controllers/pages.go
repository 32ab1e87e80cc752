package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/services"
	"github.com/cppla/yatube/utils"
)

// render executes an HTML page with the values every page shares.
func render(ctx *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["year"] = time.Now().Year()
	data["user"] = middleware.GetUser(ctx)
	data["csrf_token"] = middleware.CSRFToken(ctx)
	data["path"] = ctx.Request.URL.Path
	ctx.HTML(status, page, data)
}

// NotFound renders the 404 page for the current path.
func NotFound(ctx *gin.Context) {
	render(ctx, http.StatusNotFound, "404.html", nil)
	ctx.Abort()
}

// CSRFFailure renders the 403 page for a rejected form submission.
func CSRFFailure(ctx *gin.Context) {
	render(ctx, http.StatusForbidden, "403csrf.html", nil)
	ctx.Abort()
}

// ServerError logs err and renders the 500 page.
func ServerError(ctx *gin.Context, err any) {
	utils.Sugar.Errorw("request failed", "path", ctx.Request.URL.Path, "error", err)
	render(ctx, http.StatusInternalServerError, "500.html", nil)
	ctx.Abort()
}

// handleError maps a service error onto the page flow. Validation errors are handled by callers.
func handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		NotFound(ctx)
	case errors.Is(err, services.ErrUnauthorized):
		ctx.Redirect(http.StatusFound, middleware.LoginRedirectURL(ctx.Request.URL.RequestURI()))
		ctx.Abort()
	default:
		ServerError(ctx, err)
	}
}

// paramID parses a positive numeric path parameter.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// fieldErrors turns a ValidationError into per-field messages for the template.
func fieldErrors(err error) (map[string]string, bool) {
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return nil, false
	}
	return map[string]string{verr.Field: verr.Message}, true
}
