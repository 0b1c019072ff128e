package container_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/container"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
	cfg.Events.Enabled = true
	cfg.Events.PollInterval = 10 * time.Millisecond
	return cfg
}

func TestContainerServesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctr, err := container.NewContainer(testConfig(), "")
	require.NoError(t, err)
	require.NoError(t, ctr.Start())
	defer ctr.Close()

	router := ctr.Router()
	body := `{"tenant_id":"t","project_id":"p","fiscal_year":2025,"name":"FY25","approver_id":"boss"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(body))
	req.Header.Set(auth.UserIDHeader, "pm")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// 权限判定写入审计日志
	logs, err := ctr.AuditLogService().ByUser(context.Background(), "pm")
	require.NoError(t, err)
	require.Len(t, logs, 1)

	// 没有 webhook 时事件直接标记为已投递
	assert.Eventually(t, func() bool {
		var pending int64
		ctr.DB().Table("events").Where("status = ?", "pending").Count(&pending)
		return pending == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestContainerReloadsLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	write := func(level string) {
		content := "database:\n  driver: sqlite\n  path: \":memory:\"\nlog:\n  level: " + level + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("info")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	ctr, err := container.NewContainer(cfg, path)
	require.NoError(t, err)
	require.NoError(t, ctr.Start())
	defer ctr.Close()

	assert.Equal(t, logrus.InfoLevel, ctr.Logger().GetLevel())
	write("debug")
	assert.Eventually(t, func() bool {
		return ctr.Logger().GetLevel() == logrus.DebugLevel
	}, 3*time.Second, 50*time.Millisecond)
}

func TestContainerCloseWithoutStart(t *testing.T) {
	ctr, err := container.NewContainer(testConfig(), "")
	require.NoError(t, err)
	assert.NoError(t, ctr.Close())
}
