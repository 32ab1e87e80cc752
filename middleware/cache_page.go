package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/utils"
)

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves successful GET responses from cache for ttl. Keys are the viewer, the
// path and the page parameter, so personalised navigation is never shared. Writes do not
// invalidate entries.
func CachePage(cache utils.PageCache, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		viewer := "anon"
		if user := GetUser(ctx); user != nil {
			viewer = strconv.FormatUint(uint64(user.ID), 10)
		}
		// only the page number changes a feed, other query parameters share the entry
		key := "v1:" + viewer + ":" + ctx.Request.URL.Path + "?page=" + ctx.Query("page")

		if raw, ok := cache.Get(ctx.Request.Context(), key); ok {
			var page cachedPage
			if err := json.Unmarshal(raw, &page); err == nil {
				ctx.Header("X-Cache", "HIT")
				ctx.Data(page.Status, page.ContentType, page.Body)
				ctx.Abort()
				return
			}
		}

		rec := &bodyRecorder{ResponseWriter: ctx.Writer}
		ctx.Writer = rec
		ctx.Next()
		ctx.Writer = rec.ResponseWriter

		if rec.Status() != http.StatusOK {
			return
		}
		raw, err := json.Marshal(cachedPage{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err != nil {
			return
		}
		cache.Set(ctx.Request.Context(), key, raw, ttl)
	}
}
