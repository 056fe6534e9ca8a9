package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokens 令牌到用户 ID 的固定映射
type tokens map[string]int64

func (m tokens) Authenticate(_ context.Context, token string) (int64, error) {
	if id, ok := m[token]; ok {
		return id, nil
	}
	return 0, ErrTokenInvalid
}

func newAuthRouter(cfg AuthConfig[int64]) *gin.Engine {
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/profile", func(c *gin.Context) {
		id, ok := GetClaims[int64](c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": id, "found": ok, "gin": c.GetInt64(DefaultContextKey)})
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func extractFrom(t *testing.T, extract TokenExtractor, build func(*http.Request)) (string, error) {
	t.Helper()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?access_token=from-query", nil)
	if build != nil {
		build(c.Request)
	}
	return extract(c)
}

func TestBearerExtractor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"canonical", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"uppercase scheme", "BEARER abc", "abc"},
		{"padded token", "Bearer   abc  ", "abc"},
		{"missing", "", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
		{"empty token", "Bearer   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := extractFrom(t, BearerExtractor(), func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})
			if tt.want == "" {
				assert.ErrorIs(t, err, ErrTokenMissing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestExtractors(t *testing.T) {
	token, err := extractFrom(t, HeaderExtractor("X-Session-Token"), func(r *http.Request) {
		r.Header.Set("X-Session-Token", "from-header")
	})
	require.NoError(t, err)
	assert.Equal(t, "from-header", token)

	token, err = extractFrom(t, QueryExtractor("access_token"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from-query", token)

	token, err = extractFrom(t, CookieExtractor("sid"), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	})
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)

	_, err = extractFrom(t, CookieExtractor("sid"), nil)
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestChainExtractor(t *testing.T) {
	chain := ChainExtractor(BearerExtractor(), CookieExtractor("sid"))

	token, err := extractFrom(t, chain, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer from-bearer")
		r.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	})
	require.NoError(t, err)
	assert.Equal(t, "from-bearer", token)

	token, err = extractFrom(t, chain, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	})
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)

	_, err = extractFrom(t, chain, nil)
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestAuth(t *testing.T) {
	r := newAuthRouter(AuthConfig[int64]{
		Authenticator: tokens{"alice-token": 7},
		SkipPaths:     []string{"/health"},
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"valid token", "/profile", "Bearer alice-token", http.StatusOK},
		{"missing token", "/profile", "", http.StatusUnauthorized},
		{"wrong scheme", "/profile", "Token alice-token", http.StatusUnauthorized},
		{"unknown token", "/profile", "Bearer mallory-token", http.StatusUnauthorized},
		{"skipped path", "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			switch {
			case tt.status == http.StatusUnauthorized:
				// 缺失与无效令牌返回相同的响应体
				assert.JSONEq(t, `{"code":401,"msg":"unauthorized"}`, w.Body.String())
			case tt.path == "/profile":
				assert.JSONEq(t, `{"id":7,"found":true,"gin":7}`, w.Body.String())
			}
		})
	}
}

func TestAuth_SkipFunc(t *testing.T) {
	r := newAuthRouter(AuthConfig[int64]{
		Authenticator: tokens{},
		SkipFunc:      func(c *gin.Context) bool { return c.Request.Method == http.MethodGet },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"found":false,"gin":0}`, w.Body.String())
}

func TestAuth_Handlers(t *testing.T) {
	var seen int64
	var failure error

	r := gin.New()
	r.Use(Auth(AuthConfig[int64]{
		Authenticator:  tokens{"bob-token": 9},
		Extractor:      HeaderExtractor("X-Session-Token"),
		ContextKey:     "subject",
		SuccessHandler: func(_ *gin.Context, id int64) { seen = id },
		ErrorHandler: func(c *gin.Context, err error) {
			failure = err
			c.AbortWithStatus(http.StatusForbidden)
		},
	}))
	r.GET("/profile", func(c *gin.Context) {
		id, ok := GetClaims[int64](c.Request.Context(), "subject")
		assert.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("X-Session-Token", "bob-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), seen)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.ErrorIs(t, failure, ErrTokenMissing)
}

func TestAuth_RequiresAuthenticator(t *testing.T) {
	assert.Panics(t, func() { Auth(AuthConfig[int64]{}) })
}

func TestClaimsContext(t *testing.T) {
	ctx := WithClaims(context.Background(), int64(11))

	id, ok := GetClaims[int64](ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(11), id)

	_, ok = GetClaims[string](ctx)
	assert.False(t, ok, "type mismatch")

	_, ok = GetClaims[int64](ctx, "other")
	assert.False(t, ok, "different key")

	_, ok = GetClaims[int64](context.Background())
	assert.False(t, ok, "empty context")

	// 普通字符串键与中间件的键类型不同
	foreign := context.WithValue(context.Background(), DefaultContextKey, int64(1)) //nolint:staticcheck
	_, ok = GetClaims[int64](foreign)
	assert.False(t, ok, "foreign key type")
}

func TestAuthenticatorFunc(t *testing.T) {
	fn := AuthenticatorFunc[int64](func(_ context.Context, token string) (int64, error) {
		if token == "" {
			return 0, ErrTokenMissing
		}
		return int64(len(token)), nil
	})

	id, err := fn.Authenticate(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	_, err = fn.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenMissing)
}
