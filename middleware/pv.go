package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/utils"
)

// ViewRecorder counts a view of a post.
type ViewRecorder interface {
	RecordView(ctx context.Context, postID uint) error
}

// PostViewRecorder records a view for every successful GET of a route with an :id parameter.
func PostViewRecorder(views ViewRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.Writer.Status() != http.StatusOK {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return
		}
		if err := views.RecordView(c.Request.Context(), uint(id)); err != nil {
			utils.Sugar.Warnf("record view post=%d: %v", id, err)
		}
	}
}
