package utils

import "github.com/gin-gonic/gin"

// JSONResponse is the envelope of the admin API and the health check.
// Code is 0 on success. Errors use the HTTP status followed by a two digit
// reason, e.g. 40101 anonymous admin call, 40301 non-admin user, 42901 rate
// limited auth POST, 40020-40022 bad admin payloads, 50300 database down.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes the envelope with the given HTTP status.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success writes a 200 with code 0.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error writes an error envelope and aborts the chain, so guards such as
// AdminRequired and RateLimitMiddleware can stop the request with a single call.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
	ctx.Abort()
}
