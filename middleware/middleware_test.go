package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(user *models.User) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if user != nil {
			ctx.Set(middleware.ContextUserKey, user)
		}
		ctx.Next()
	}
}

func serve(r *gin.Engine, method, target string, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCachePage(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := utils.NewMemoryPageCache(func() time.Time { return now })
	hits := 0

	newEngine := func(user *models.User) *gin.Engine {
		r := gin.New()
		r.Use(asUser(user))
		r.GET("/", middleware.CachePage(cache, 20*time.Second), func(ctx *gin.Context) {
			hits++
			ctx.String(http.StatusOK, "render %d", hits)
		})
		r.GET("/missing", middleware.CachePage(cache, 20*time.Second), func(ctx *gin.Context) {
			hits++
			ctx.String(http.StatusNotFound, "nope")
		})
		return r
	}
	anon := newEngine(nil)

	w := serve(anon, http.MethodGet, "/", "", nil)
	assert.Equal(t, "render 1", w.Body.String())
	assert.Empty(t, w.Header().Get("X-Cache"))

	w = serve(anon, http.MethodGet, "/", "", nil)
	assert.Equal(t, "render 1", w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

	w = serve(anon, http.MethodGet, "/?utm_source=junk", "", nil)
	assert.Equal(t, "render 1", w.Body.String(), "unrelated query parameters share the entry")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = serve(anon, http.MethodGet, "/?page=2", "", nil)
	assert.Equal(t, "render 2", w.Body.String(), "query string is part of the key")

	w = serve(newEngine(&models.User{ID: 7}), http.MethodGet, "/", "", nil)
	assert.Equal(t, "render 3", w.Body.String(), "signed-in viewers get their own entry")

	serve(anon, http.MethodGet, "/missing", "", nil)
	serve(anon, http.MethodGet, "/missing", "", nil)
	assert.Equal(t, 5, hits, "only 200 responses are stored")

	now = now.Add(21 * time.Second)
	w = serve(anon, http.MethodGet, "/", "", nil)
	assert.Equal(t, "render 6", w.Body.String())
}

func TestRateLimitCountsOnlyUnsafeMethods(t *testing.T) {
	r := gin.New()
	limited := r.Group("", middleware.RateLimitMiddleware(2))
	limited.GET("/login", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	limited.POST("/login", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/login", "", nil).Code)
	}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login", "", nil).Code)
	w := serve(r, http.MethodPost, "/login", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":42901`)
}

func TestLoginRequired(t *testing.T) {
	r := gin.New()
	r.GET("/posts/:id/edit/", middleware.LoginRequired(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/posts/3/edit/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/posts/3/edit/", w.Header().Get("Location"))

	signedIn := gin.New()
	signedIn.Use(asUser(&models.User{ID: 1}))
	signedIn.GET("/posts/:id/edit/", middleware.LoginRequired(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(signedIn, http.MethodGet, "/posts/3/edit/", "", nil).Code)

	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", middleware.LoginRedirectURL("/follow/?page=2"))
}

func TestAdminRequired(t *testing.T) {
	cfg := config.AppConfig{AdminUsernames: []string{"Root"}}
	for _, tc := range []struct {
		name   string
		user   *models.User
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"regular", &models.User{ID: 2, Username: "leo"}, http.StatusForbidden},
		{"admin", &models.User{ID: 1, Username: "root"}, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(asUser(tc.user))
			r.GET("/admin", middleware.AdminRequired(cfg), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
			assert.Equal(t, tc.status, serve(r, http.MethodGet, "/admin", "", nil).Code)
		})
	}
}

func TestCSRF(t *testing.T) {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("csrf-secret"))))
	r.Use(middleware.CSRF(func(ctx *gin.Context) { ctx.String(http.StatusForbidden, "csrf") }))
	r.GET("/form", func(ctx *gin.Context) { ctx.String(http.StatusOK, middleware.CSRFToken(ctx)) })
	r.POST("/form", func(ctx *gin.Context) { ctx.String(http.StatusOK, "saved") })

	w := serve(r, http.MethodGet, "/form", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()
	require.NotEmpty(t, token)
	sessionCookie := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, sessionCookie)
	withSession := http.Header{"Cookie": {strings.Split(sessionCookie, ";")[0]}}

	again := serve(r, http.MethodGet, "/form", "", withSession)
	assert.Equal(t, token, again.Body.String(), "token is stable within a session")

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/form", "", withSession).Code)

	form := http.Header{
		"Cookie":       withSession["Cookie"],
		"Content-Type": {"application/x-www-form-urlencoded"},
	}
	body := url.Values{middleware.CSRFFormField: {"wrong"}}.Encode()
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/form", body, form).Code)

	body = url.Values{middleware.CSRFFormField: {token}}.Encode()
	w = serve(r, http.MethodPost, "/form", body, form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved", w.Body.String())

	viaHeader := http.Header{"Cookie": withSession["Cookie"], middleware.CSRFHeader: {token}}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/form", "", viaHeader).Code)
	wrongHeader := http.Header{"Cookie": withSession["Cookie"], middleware.CSRFHeader: {"wrong"}}
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/form", "", wrongHeader).Code)

	// no session at all
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/form", "", http.Header{middleware.CSRFHeader: {token}}).Code)
}

type viewLog struct {
	mu  sync.Mutex
	ids []uint
}

func (v *viewLog) RecordView(_ context.Context, postID uint) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids = append(v.ids, postID)
	return nil
}

func TestPostViewRecorder(t *testing.T) {
	views := &viewLog{}
	r := gin.New()
	r.GET("/posts/:id/", middleware.PostViewRecorder(views), func(ctx *gin.Context) {
		if ctx.Param("id") == "404" {
			ctx.Status(http.StatusNotFound)
			return
		}
		ctx.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/posts/5/", "", nil)
	serve(r, http.MethodGet, "/posts/5/", "", nil)
	serve(r, http.MethodGet, "/posts/404/", "", nil)
	serve(r, http.MethodGet, "/posts/abc/", "", nil)
	assert.Equal(t, []uint{5, 5}, views.ids)
}

func TestCurrentUser(t *testing.T) {
	signer := utils.NewTokenSigner("secret")
	blacklist := utils.NewTokenBlacklist(nil)
	users := userMap{9: {ID: 9, Username: "leo"}}

	r := gin.New()
	r.Use(middleware.CurrentUser(signer, blacklist, users))
	r.GET("/", func(ctx *gin.Context) {
		if user := middleware.GetUser(ctx); user != nil {
			ctx.String(http.StatusOK, user.Username)
			return
		}
		ctx.String(http.StatusOK, "anonymous")
	})

	withToken := func(token string) http.Header {
		return http.Header{"Cookie": {middleware.TokenCookieName + "=" + token}}
	}

	token, err := signer.GenerateToken(9, "leo", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "leo", serve(r, http.MethodGet, "/", "", withToken(token)).Body.String())
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/", "", nil).Body.String())
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/", "", withToken("garbage")).Body.String())

	ghost, err := signer.GenerateToken(10, "ghost", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/", "", withToken(ghost)).Body.String())

	blacklist.Revoke(token, time.Now().Add(time.Hour))
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/", "", withToken(token)).Body.String())
}

type userMap map[uint]*models.User

func (m userMap) GetUser(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, assert.AnError
}
