package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kochabx/authsvc/audit"
	"github.com/kochabx/authsvc/core/auth/jwt"
	"github.com/kochabx/authsvc/core/auth/password"
	"github.com/kochabx/authsvc/core/auth/session"
	"github.com/kochabx/authsvc/core/rate"
	"github.com/kochabx/authsvc/log"
	middleware "github.com/kochabx/authsvc/middleware/http"
	"github.com/kochabx/authsvc/store/db"
	kitredis "github.com/kochabx/authsvc/store/redis"
	"github.com/kochabx/authsvc/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingEmitter) Emit(e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []audit.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
	db     *gorm.DB
	audit  *recordingEmitter
}

func newTestServer(t *testing.T, loginLimit int) *testServer {
	t.Helper()

	ts := &testServer{
		mr:    miniredis.RunT(t),
		audit: &recordingEmitter{},
	}
	logger := log.NewWithWriter(&bytes.Buffer{})

	dbClient, err := db.Open(&db.Config{Driver: db.DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { dbClient.Close() })
	require.NoError(t, user.AutoMigrate(context.Background(), dbClient.DB()))
	ts.db = dbClient.DB()

	redisClient, err := kitredis.New(&kitredis.Config{Addrs: []string{ts.mr.Addr()}, MaxRetries: -1})
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	hasher, err := password.New(bcrypt.MinCost)
	require.NoError(t, err)
	users := user.NewService(user.NewRepository(ts.db), hasher, user.WithLogger(logger))

	codec, err := jwt.New(&jwt.Config{Secret: "handler-test-secret"})
	require.NoError(t, err)
	sessions := session.NewService(users, codec, session.NewRedisStore(redisClient), session.WithLogger(logger))

	opts := []Option{WithAudit(ts.audit), WithLogger(logger)}
	if loginLimit > 0 {
		limiter := rate.NewSlidingWindowLimiter(redisClient.UniversalClient(), "rl:login:", time.Minute, loginLimit)
		opts = append(opts, WithLoginMiddleware(middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter, Logger: logger})))
	}

	ts.router = NewRouter(New(users, sessions, opts...), RouterConfig{})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (ts *testServer) register(t *testing.T, email, pass, name string) user.Profile {
	t.Helper()

	w, env := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": pass, "name": name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p user.Profile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func (ts *testServer) login(t *testing.T, email, pass string) LoginResponse {
	t.Helper()

	w, env := ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: pass})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, 0)

	profile := ts.register(t, "alice@example.com", "password123", "Alice")
	assert.NotZero(t, profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, "Alice", profile.Name)

	login := ts.login(t, "alice@example.com", "password123")
	assert.NotEmpty(t, login.SessionID)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, profile.ID, login.User.ID)
	assert.Greater(t, login.ExpiresAt, time.Now().Unix())
	assert.True(t, ts.mr.Exists("session:"+login.SessionID))

	w, env := ts.do(t, http.MethodGet, "/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+jsonInt(profile.ID)+`,"email":"alice@example.com","name":"Alice"}`, string(env.Data))

	w, env = ts.do(t, http.MethodPost, "/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out"}`, string(env.Data))
	assert.False(t, ts.mr.Exists("session:"+login.SessionID))

	w, env = ts.do(t, http.MethodGet, "/profile", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", env.Msg)

	assert.Equal(t, []audit.Type{audit.TypeRegister, audit.TypeLogin, audit.TypeLogout}, ts.audit.types())
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.register(t, "bob@example.com", "password123", "Bob")

	t.Run("duplicate email", func(t *testing.T) {
		w, env := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email": "bob@example.com", "password": "password456", "name": "Bobby",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "email already registered", env.Msg)
	})

	t.Run("validation", func(t *testing.T) {
		w, env := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email": "not-an-email", "password": "short", "name": "Al",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation failed", env.Msg)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &fields))
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "name")
	})

	t.Run("malformed body", func(t *testing.T) {
		w, env := ts.do(t, http.MethodPost, "/auth/register", "", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", env.Msg)
	})
}

func TestLoginRejected(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.register(t, "carol@example.com", "password123", "Carol")

	for _, tc := range []struct {
		name, email, password string
	}{
		{"wrong password", "carol@example.com", "password124"},
		{"unknown email", "nobody@example.com", "password123"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w, env := ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: tc.email, Password: tc.password})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "invalid credentials", env.Msg)
		})
	}

	w, _ := ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "carol", Password: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Contains(t, ts.audit.types(), audit.TypeLoginFailed)
	assert.Empty(t, ts.mr.Keys())
}

func TestReloginSupersedesPreviousToken(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.register(t, "dave@example.com", "password123", "Dave")

	first := ts.login(t, "dave@example.com", "password123")
	second := ts.login(t, "dave@example.com", "password123")
	require.NotEqual(t, first.Token, second.Token)

	w, _ := ts.do(t, http.MethodGet, "/profile", first.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/profile", second.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, ts.mr.Exists("session:"+first.SessionID))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, 0)

	for _, tc := range []struct {
		method, path, token string
	}{
		{http.MethodGet, "/profile", ""},
		{http.MethodGet, "/profile", "garbage"},
		{http.MethodPost, "/auth/logout", ""},
		{http.MethodPost, "/auth/logout", "eyJhbGciOiJIUzI1NiJ9.e30.x"},
	} {
		w, env := ts.do(t, tc.method, tc.path, tc.token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.Equal(t, "unauthorized", env.Msg)
	}
}

func TestProfileUserDeleted(t *testing.T) {
	ts := newTestServer(t, 0)
	p := ts.register(t, "erin@example.com", "password123", "Erin")
	login := ts.login(t, "erin@example.com", "password123")

	require.NoError(t, ts.db.Delete(&user.User{}, p.ID).Error)

	w, env := ts.do(t, http.MethodGet, "/profile", login.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", env.Msg)
}

func TestLoginStoreUnavailable(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.register(t, "frank@example.com", "password123", "Frank")
	ts.mr.Close()

	w, env := ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "frank@example.com", Password: "password123"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Msg)
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		w, _ := ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "x@example.com", Password: "password123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w, env := ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "x@example.com", Password: "password123"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 429, env.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// 其他接口不受登录限流影响
	w, _ = ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "x@example.com", "password": "password123", "name": "Xavier",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestToError(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
	}{
		{session.ErrInvalidCredentials, http.StatusUnauthorized},
		{session.ErrStoreUnavailable, http.StatusInternalServerError},
		{session.ErrUserLookup, http.StatusInternalServerError},
		{user.ErrEmailTaken, http.StatusConflict},
		{user.ErrNotFound, http.StatusNotFound},
		{password.ErrTooLong, http.StatusBadRequest},
	} {
		assert.Equal(t, tc.code, toError(tc.err).Code, tc.err.Error())
	}
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
