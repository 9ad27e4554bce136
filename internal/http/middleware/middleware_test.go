package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/asset-escrow/internal/interface/http/response"
	"github.com/ignatzorin/asset-escrow/internal/logger"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/asset-escrow/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Discard()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenManager("middleware-test-secret-middleware", time.Hour)
	userID := uuid.New()

	r := gin.New()
	r.Use(AuthMiddleware(tokens))
	r.GET("/me", func(c *gin.Context) {
		id, _ := c.Get(ContextUserIDKey)
		c.String(http.StatusOK, id.(uuid.UUID).String())
	})

	valid, _, err := tokens.GenerateAccess(userID)
	require.NoError(t, err)
	foreign, _, err := service.NewTokenManager("another-secret-another-secret-xx", time.Hour).GenerateAccess(userID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{name: "no header", header: "", code: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + foreign, code: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + valid, code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			} else {
				assert.Equal(t, string(apperror.ErrCodeUnauthorized), decode(t, w).Error.Code)
			}
		})
	}
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/transactions/:id", UUIDValidator("id"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/transactions/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/transactions/not-a-uuid", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			c.Set(ContextUserIDKey, uuid.MustParse(id))
		}
		c.Next()
	})
	r.Use(RateLimitMiddleware(2, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first, second := uuid.NewString(), uuid.NewString()
	do := func(user string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("X-User-ID", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do(first).Code)
	assert.Equal(t, http.StatusOK, do(first).Code)

	w := do(first)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, w).Error.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// лимит считается отдельно для каждого пользователя
	assert.Equal(t, http.StatusOK, do(second).Code)
}

func TestErrorHandler(t *testing.T) {
	hook := logtest.NewLocal(logger.Log)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperror.ErrTransactionNotFound)
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/missing", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperror.ErrCodeNotFound), decode(t, w).Error.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("unexpected") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(apperror.ErrCodeInternal), decode(t, w).Error.Code)
}
