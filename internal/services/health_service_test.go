package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"metabulo/internal/shared/testutil"
)

func TestHealthService_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "", "sqlite", nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(db *MockDatabaseChecker)
		wantStatus string
		wantMsg    string
	}{
		{
			name: "ready",
			setup: func(db *MockDatabaseChecker) {
				db.On("Ping", mock.Anything).Return(nil)
				db.On("MigrationVersion", mock.Anything).Return(int64(1), nil)
			},
			wantStatus: "ready",
			wantMsg:    "sqlite schema version 1",
		},
		{
			name: "ping fails",
			setup: func(db *MockDatabaseChecker) {
				db.On("Ping", mock.Anything).Return(errors.New("connection refused"))
			},
			wantStatus: "not_ready",
			wantMsg:    "database unreachable: connection refused",
		},
		{
			name: "schema missing",
			setup: func(db *MockDatabaseChecker) {
				db.On("Ping", mock.Anything).Return(nil)
				db.On("MigrationVersion", mock.Anything).Return(int64(0), nil)
			},
			wantStatus: "not_ready",
			wantMsg:    "schema not initialized, run create-tables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			db := &MockDatabaseChecker{}
			tt.setup(db)

			hs := NewHealthService("1.2.3", "", "sqlite", db, logger)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			database, ok := status.Services["database"].(ServiceHealth)
			assert.True(t, ok)
			assert.Equal(t, tt.wantMsg, database.Message)
			db.AssertExpectations(t)
		})
	}
}

func TestHealthService_ReadinessWithoutDatabase(t *testing.T) {
	hs := NewHealthService("1.2.3", "", "sqlite", nil, nil)
	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.2.3", "2026-01-01T00:00:00Z", "postgres", nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "postgres", version["database"])
	assert.Equal(t, "2026-01-01T00:00:00Z", version["build_time"])
}
