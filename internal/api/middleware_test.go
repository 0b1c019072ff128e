package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/api"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	w := serve(router, req)
	assert.Equal(t, "abc-123", w.Header().Get(api.RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(api.RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(api.RequestIDHeader, strings.Repeat("x", 65))
	w = serve(router, req)
	assert.Len(t, w.Header().Get(api.RequestIDHeader), 36)
}

func TestCORSMiddleware(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization"},
		MaxAge:         600,
	}
	router := gin.New()
	router.Use(api.CORSMiddleware(cfg))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(router, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(router, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w = serve(router, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(api.RateLimitMiddleware(0.001, 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	for _, production := range []bool{false, true} {
		router := gin.New()
		router.Use(api.SecurityHeadersMiddleware(production))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, production, w.Header().Get("Strict-Transport-Security") != "")
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(api.ErrorHandlerMiddleware())
	router.GET("/workflow", func(c *gin.Context) {
		_ = c.Error(workflow.NewError(workflow.CodeConcurrentModification, "stale"))
	})
	router.GET("/api", func(c *gin.Context) {
		_ = c.Error(api.WrapError(errors.New("boom"), http.StatusBadGateway, "upstream failed"))
	})
	router.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	cases := map[string]struct {
		status  int
		message string
	}{
		"/workflow": {http.StatusConflict, string(workflow.CodeConcurrentModification)},
		"/api":      {http.StatusBadGateway, "upstream failed"},
		"/plain":    {http.StatusInternalServerError, "internal server error"},
	}
	for path, want := range cases {
		w := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want.status, w.Code, path)

		var body api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, want.message, body.Message, path)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, api.StatusFor(workflow.CodeNotFound))
	assert.Equal(t, http.StatusBadRequest, api.StatusFor(workflow.CodeInvalidTransition))
	assert.Equal(t, http.StatusBadRequest, api.StatusFor(workflow.CodePreconditionFailed))
	assert.Equal(t, http.StatusBadRequest, api.StatusFor(workflow.CodeImmutableInCurrentState))
	assert.Equal(t, http.StatusConflict, api.StatusFor(workflow.CodeConcurrentModification))
	assert.Equal(t, http.StatusInternalServerError, api.StatusFor(workflow.CodeInfrastructureFailure))
}

func TestRequestLogMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(api.RequestIDMiddleware(), api.RequestLogMiddleware(logger))
	router.GET("/records/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(router, httptest.NewRequest(http.MethodGet, "/records/42", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/records/42", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.NotEmpty(t, entry.Data["request_id"])
}

func TestNewLoggerFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := api.NewLoggerFromConfig(&config.LogConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("service", "override").Info("hello")
	logger.Info("world")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "override", first["service"])
	assert.Equal(t, api.ServiceName, second["service"])
	assert.Equal(t, "world", second["msg"])
}
