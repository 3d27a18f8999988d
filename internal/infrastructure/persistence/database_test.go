package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendorhub/console/internal/infrastructure/config"
	"github.com/vendorhub/console/internal/infrastructure/telemetry"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"
)

func testDatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		DBName:          "vendor_console",
		SSLMode:         "disable",
		MaxOpenConns:    7,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 30,
	}
}

// newMockDatabase opens a Database over a sqlmock connection with pings monitored
func newMockDatabase(t *testing.T, opts ...DatabaseOption) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	opts = append([]DatabaseOption{WithPreparedStatements(false)}, opts...)
	db, err := Open(dialector, testDatabaseConfig(), opts...)
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestOpen_AppliesPoolSettings(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t, WithLogger(zaptest.NewLogger(t), gormlogger.Warn))
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 7, stats.MaxOpenConnections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PingFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing().WillReturnError(assert.AnError)
	_, err = Open(postgres.New(postgres.Config{Conn: mockDB}), testDatabaseConfig(), WithPreparedStatements(false))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to ping database")
	assert.NotContains(t, err.Error(), "failed to connect to database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PingsOnce(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing()
	_, err = Open(postgres.New(postgres.Config{Conn: mockDB}), testDatabaseConfig(), WithPreparedStatements(false))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_RegistersTracingWhenEnabled(t *testing.T) {
	tracing := telemetry.DefaultDBTracingConfig()
	tracing.Enabled = true
	db, _, mockDB := newMockDatabase(t, WithTracing(tracing), WithStatementLogging(false, time.Second))
	defer mockDB.Close()

	_, registered := db.DB.Plugins["otelgorm"]
	assert.True(t, registered)
}

func TestDatabase_Ping(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(assert.AnError)
	assert.Error(t, db.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
