package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/config"
	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/session"
)

const adminEmail = "admin@formcraft.app"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type verifierFunc func(ctx context.Context, idToken string) (*auth.Token, error)

func (f verifierFunc) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	return f(ctx, idToken)
}

func tokenVerifier(tokens map[string]*auth.Token) TokenVerifier {
	return verifierFunc(func(_ context.Context, idToken string) (*auth.Token, error) {
		if tok, ok := tokens[idToken]; ok {
			return tok, nil
		}
		return nil, core.ErrInvalidToken
	})
}

func testTokens() map[string]*auth.Token {
	return map[string]*auth.Token{
		"user-token": {
			UID:      "user-1",
			Claims:   map[string]interface{}{"email": "jane@example.com", "email_verified": true, "name": "Jane"},
			Firebase: auth.FirebaseInfo{SignInProvider: "password"},
		},
		"admin-token": {
			UID:      "admin-1",
			Claims:   map[string]interface{}{"email": adminEmail, "email_verified": true},
			Firebase: auth.FirebaseInfo{SignInProvider: "google.com"},
		},
	}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", append(handlers, func(c *gin.Context) {
		s, ok := session.FromGin(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, s.UID)
	})...)
	return r
}

func get(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestNewAuthMiddleware_PanicsWithoutVerifier(t *testing.T) {
	assert.Panics(t, func() { NewAuthMiddleware(nil, adminEmail, zap.NewNop()) })
}

func TestVerifyToken(t *testing.T) {
	m := NewAuthMiddleware(tokenVerifier(testTokens()), adminEmail, zap.NewNop())
	r := newRouter(m.VerifyToken())

	tests := []struct {
		name     string
		header   http.Header
		wantCode int
		wantBody string
	}{
		{"missing header", nil, http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", http.Header{"Authorization": {"Basic abc"}}, http.StatusUnauthorized, "Bearer {token}"},
		{"invalid token", bearer("nope"), http.StatusUnauthorized, core.ErrInvalidToken.Error()},
		{"valid token", bearer("user-token"), http.StatusOK, "user-1"},
		{"lowercase scheme", http.Header{"Authorization": {"bearer user-token"}}, http.StatusOK, "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestVerifyToken_RevokedSession(t *testing.T) {
	v := verifierFunc(func(context.Context, string) (*auth.Token, error) {
		return nil, core.ErrSessionRevoked
	})
	r := newRouter(NewAuthMiddleware(v, adminEmail, zap.NewNop()).VerifyToken())

	w := get(r, bearer("revoked"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), core.ErrSessionRevoked.Error())
}

func TestVerifyToken_HidesProviderErrors(t *testing.T) {
	v := verifierFunc(func(context.Context, string) (*auth.Token, error) {
		return nil, errors.New("googleapi: internal key rotation failure")
	})
	r := newRouter(NewAuthMiddleware(v, adminEmail, zap.NewNop()).VerifyToken())

	w := get(r, bearer("x"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "key rotation")
}

func TestOptionalToken(t *testing.T) {
	r := newRouter(NewAuthMiddleware(tokenVerifier(testTokens()), adminEmail, zap.NewNop()).OptionalToken())

	assert.Equal(t, "anonymous", get(r, nil).Body.String())
	assert.Equal(t, "anonymous", get(r, bearer("nope")).Body.String())
	assert.Equal(t, "user-1", get(r, bearer("user-token")).Body.String())
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(tokenVerifier(testTokens()), adminEmail, zap.NewNop())
	r := newRouter(m.VerifyToken(), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, get(r, bearer("user-token")).Code)

	w := get(r, bearer("admin-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", w.Body.String())
}

func TestRequireAdmin_WithoutSession(t *testing.T) {
	r := newRouter(RequireAdmin())
	assert.Equal(t, http.StatusForbidden, get(r, nil).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var info core.ClientInfo
	var seen string
	r.GET("/whoami", func(c *gin.Context) {
		info = core.ClientInfoFrom(c.Request.Context())
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("User-Agent", "form-tests/1.0")
	req.RemoteAddr = "203.0.113.7:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, seen)
	assert.Equal(t, "203.0.113.7", info.IPAddress)
	assert.Equal(t, "form-tests/1.0", info.UserAgent)

	incoming := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestRequestLogger_PanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { RequestLogger(nil) })
	assert.Panics(t, func() { RecoveryMiddleware(nil) })
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.NewNop()))
	r.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?x=1", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	assert.Panics(t, func() { CORSMiddleware(&config.Config{}) })

	cfg := &config.Config{ClientURL: "http://localhost:5173, https://app.formcraft.app/", PublicBaseURL: "https://forms.formcraft.app"}
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, origin := range []string{"http://localhost:5173", "https://app.formcraft.app", "https://forms.formcraft.app"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"), origin)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), ReceiptHeader)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, zap.NewNop())
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	r := gin.New()
	r.POST("/submit", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post("198.51.100.1").Code)
	assert.Equal(t, http.StatusCreated, post("198.51.100.1").Code)
	limited := post("198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusCreated, post("198.51.100.2").Code)

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, http.StatusCreated, post("198.51.100.1").Code)

	clock = clock.Add(limiterIdleTTL + time.Minute)
	post("198.51.100.3")
	rl.mu.Lock()
	assert.Len(t, rl.visitors, 1)
	rl.mu.Unlock()
}

func TestRateLimiter_SweepsIdleVisitorsPeriodically(t *testing.T) {
	rl := NewRateLimiter(5, zap.NewNop())
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for i := 0; i < 50; i++ {
		assert.True(t, rl.allow(fmt.Sprintf("203.0.113.%d", i)))
	}
	sweptAt := rl.lastSweep

	// Requests inside the sweep interval never walk the visitor table.
	clock = clock.Add(limiterSweepInterval / 2)
	assert.True(t, rl.allow("203.0.113.200"))
	assert.Equal(t, sweptAt, rl.lastSweep)
	assert.Len(t, rl.visitors, 51)

	// Once due, the sweep drops every idle entry.
	clock = clock.Add(limiterIdleTTL)
	rl.visitors["203.0.113.200"].lastSeen = clock
	clock = clock.Add(limiterSweepInterval / 4)
	assert.True(t, rl.allow("203.0.113.201"))
	assert.Len(t, rl.visitors, 2)
	assert.Equal(t, clock, rl.lastSweep)
}
