package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"metabulo/internal/storage"
	"metabulo/pkg/contracts/domain"
)

// MockCSVStore is a mock for the CSVStore interface
type MockCSVStore struct {
	mock.Mock
}

func (m *MockCSVStore) CreateCSVFile(ctx context.Context, file *domain.CSVFile) error {
	return m.Called(ctx, file).Error(0)
}

func (m *MockCSVStore) GetCSVFile(ctx context.Context, id string) (*domain.CSVFile, error) {
	args := m.Called(ctx, id)
	file, _ := args.Get(0).(*domain.CSVFile)
	return file, args.Error(1)
}

func (m *MockCSVStore) ListCSVFiles(ctx context.Context, opts storage.ListOptions) ([]domain.CSVFileSummary, error) {
	args := m.Called(ctx, opts)
	files, _ := args.Get(0).([]domain.CSVFileSummary)
	return files, args.Error(1)
}

func (m *MockCSVStore) DeleteCSVFile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCSVStore) UpdateRowType(ctx context.Context, id string, index int, rowType domain.RowType) error {
	return m.Called(ctx, id, index, rowType).Error(0)
}

func (m *MockCSVStore) UpdateColumnType(ctx context.Context, id string, index int, columnType domain.ColumnType) error {
	return m.Called(ctx, id, index, columnType).Error(0)
}

func (m *MockCSVStore) SaveValidatedTable(ctx context.Context, v *domain.ValidatedTable) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockCSVStore) GetValidatedTable(ctx context.Context, id string) (*domain.ValidatedTable, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ValidatedTable)
	return v, args.Error(1)
}

func (m *MockCSVStore) UpdateProcessingStep(ctx context.Context, id string, step domain.ProcessingStep) error {
	return m.Called(ctx, id, step).Error(0)
}

// MockDatabaseChecker is a mock for the DatabaseChecker interface
type MockDatabaseChecker struct {
	mock.Mock
}

func (m *MockDatabaseChecker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabaseChecker) MigrationVersion(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
