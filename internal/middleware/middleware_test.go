package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "warmup-service/internal/pkg/errors"
	"warmup-service/internal/pkg/jwt"
	"warmup-service/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubValidator struct {
	claims *jwt.Claims
	err    error
}

func (s stubValidator) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	if token != "good" {
		return nil, xerrors.NewAuth(xerrors.CodeSessionExpired, errors.New("bad token"))
	}
	return s.claims, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/t", append(handlers, func(c *gin.Context) {
		uid, _ := GetUID(c)
		c.String(http.StatusOK, uid)
	})...)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	claims := &jwt.Claims{UID: "u1", Role: "user"}
	claims.ID = "jti-1"
	m := NewAuthMiddleware(stubValidator{claims: claims})

	t.Run("MissingToken", func(t *testing.T) {
		w := do(newRouter(m.Auth()), httptest.NewRequest(http.MethodGet, "/t", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := do(newRouter(m.Auth()), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := do(newRouter(m.Auth()), req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", w.Body.String())
	})

	t.Run("AdminOnlyRejectsUser", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := do(newRouter(m.AdminOnly()...), req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequestIDAndCORS(t *testing.T) {
	r := newRouter(RequestID(), CORSMiddleware([]string{"https://admin.acme.com"}))

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Origin", "https://admin.acme.com")
	w := do(r, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "https://admin.acme.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("X-Request-ID", "abc")
	w = do(r, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	r := newRouter(rl.Handler())

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(r, httptest.NewRequest(http.MethodGet, "/t", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMetricsAndRecovery(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()), MetricsMiddleware(m))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	do(r, httptest.NewRequest(http.MethodGet, "/ok/1", nil))
	do(r, httptest.NewRequest(http.MethodGet, "/ok/2", nil))
	families, err := m.Registry.Gather()
	assert.NoError(t, err)

	var served float64
	for _, family := range families {
		if family.GetName() != "warmup_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["path"] == "/ok/:id" && labels["status_code"] == "200" {
				served += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, served)

	series, err := testutil.GatherAndCount(m.Registry, "warmup_http_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, series)
}
