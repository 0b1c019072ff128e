package database_test

import (
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	db, err := database.Connect(sqliteConfig())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{"wbs_elements", "forecasts", "project_budgets", "change_history", "events", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex("change_history", "idx_history_changed"))

	// 迁移可重复执行
	assert.NoError(t, database.Migrate(db))
}

func TestConnectUnsupportedDriver(t *testing.T) {
	_, err := database.Connect(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	dsn := database.BuildDSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret", DBName: "sched", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=sched sslmode=disable", dsn)
}

func TestGetPoolConfigDefaults(t *testing.T) {
	pool := database.GetPoolConfig(config.DatabaseConfig{MaxOpenConns: 42})
	assert.Equal(t, 42, pool.MaxOpenConns)
	assert.Equal(t, 10, pool.MaxIdleConns)
	assert.Equal(t, 3600, pool.ConnMaxLifetime)
}

func TestCheckHealth(t *testing.T) {
	assert.False(t, database.CheckHealth(nil))

	db, err := database.ConnectWithRetry(sqliteConfig(), 2, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, database.CheckHealth(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.False(t, database.CheckHealth(db))
}
