package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"project-management-api/internal/core/auth"
	"project-management-api/internal/core/tracing"
	"project-management-api/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s stubVerifier) VerifyType(string, auth.TokenType) (*auth.Claims, error) {
	return s.claims, s.err
}

type stubPrincipals map[uint64]*domain.User

func (s stubPrincipals) Principal(_ context.Context, id uint64) (*domain.User, error) {
	return s[id], nil
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, string) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body.Error
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		tok    string
		ok     bool
	}{
		"valid":       {"Bearer abc.def", "abc.def", true},
		"lowercase":   {"bearer abc", "abc", true},
		"empty":       {"", "", false},
		"no scheme":   {"abc", "", false},
		"basic":       {"Basic abc", "", false},
		"empty token": {"Bearer   ", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tok, ok := BearerToken(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.tok, tok)
		})
	}
}

func TestRequireAccessAndManager(t *testing.T) {
	users := stubPrincipals{
		1: {ID: 1, Email: "boss@example.com", Role: domain.RoleManager},
		2: {ID: 2, Email: "worker@example.com", Role: domain.RoleEmployee},
	}
	build := func(v TokenVerifier) *gin.Engine {
		r := gin.New()
		g := r.Group("", RequireAccess(v, users))
		g.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).Email) })
		g.GET("/admin", RequireManager(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}
	get := func(r *gin.Engine, path string, withAuth bool) (*httptest.ResponseRecorder, string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if withAuth {
			req.Header.Set("Authorization", "Bearer token")
		}
		return serve(r, req)
	}

	w, msg := get(build(stubVerifier{}), "/me", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrMissingToken.Msg, msg)

	w, msg = get(build(stubVerifier{err: auth.ErrExpired}), "/me", true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrExpired.Msg, msg)

	w, msg = get(build(stubVerifier{claims: &auth.Claims{UserID: 99}}), "/me", true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrUserNotFound.Msg, msg)

	// token 里声称 manager 也没用，以库里的角色为准
	w, msg = get(build(stubVerifier{claims: &auth.Claims{UserID: 2, Role: "manager"}}), "/admin", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, auth.ErrInsufficientRole.Msg, msg)

	w, _ = get(build(stubVerifier{claims: &auth.Claims{UserID: 2}}), "/me", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "worker@example.com", w.Body.String())

	w, _ = get(build(stubVerifier{claims: &auth.Claims{UserID: 1}}), "/admin", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w, _ := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w, msg := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests", msg)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 1, 20*time.Millisecond))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":40000"
		w, _ := serve(r, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	// 其它客户端不受影响
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))

	// 空闲桶被清理后重新拿到 burst
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
}

func TestConcurrencyLimit(t *testing.T) {
	entered, release := make(chan struct{}), make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() {
		w, _ := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
		done <- w.Code
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w, _ := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	w, msg := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "request timeout", msg)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w, _ := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w, _ = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestAccessLogLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/ok?password=hunter2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	q := entries[0].ContextMap()["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["password"])

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Contains(t, entries[1].ContextMap()["errors"], "db down")
}

func TestMetricsUsesInjectedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/items/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reqTotal.WithLabelValues("/items/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reqTotal.WithLabelValues("unmatched", "GET", "404")))

	// 同一个 registry 重复注册会 panic，不同 registry 互不影响
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}

func TestTracingPassesContext(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(tracing.Noop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	w, _ := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovered(t *testing.T) {
	r := gin.New()
	r.Use(gin.CustomRecovery(Recovered))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w, msg := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", msg)
}
