package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	csrfSessionKey = "csrf_token"
	// CSRFFormField is the hidden input name forms submit the token in.
	CSRFFormField = "csrfmiddlewaretoken"
	// CSRFHeader is accepted instead of the form field.
	CSRFHeader = "X-CSRFToken"
)

// CSRF keeps a per-session token and rejects unsafe requests that do not echo it.
// Rejected requests are handed to onFailure, which must write the response.
func CSRF(onFailure gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session := sessions.Default(ctx)
		token, _ := session.Get(csrfSessionKey).(string)

		switch ctx.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			if token == "" {
				token = uuid.NewString()
				session.Set(csrfSessionKey, token)
				if err := session.Save(); err != nil {
					ctx.Error(err)
				}
			}
			ctx.Set(csrfSessionKey, token)
			ctx.Next()
			return
		}

		sent := ctx.GetHeader(CSRFHeader)
		if sent == "" {
			sent = ctx.PostForm(CSRFFormField)
		}
		if token == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			onFailure(ctx)
			ctx.Abort()
			return
		}
		ctx.Set(csrfSessionKey, token)
		ctx.Next()
	}
}

// CSRFToken returns the token forms on this request must carry.
func CSRFToken(ctx *gin.Context) string {
	return ctx.GetString(csrfSessionKey)
}
