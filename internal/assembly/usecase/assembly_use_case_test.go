package usecase

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medstock/internal/domain"
	"medstock/internal/dto"
	apperrors "medstock/internal/errors"
)

type mockAssemblyService struct {
	createFunc func(ctx context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error)
	deleteFunc func(ctx context.Context, id int, cascade bool) error
	listFunc   func(ctx context.Context) ([]domain.AssemblySummary, error)
}

func (m *mockAssemblyService) CreateAssembly(ctx context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error) {
	return m.createFunc(ctx, input)
}

func (m *mockAssemblyService) DeleteAssembly(ctx context.Context, id int, cascade bool) error {
	return m.deleteFunc(ctx, id, cascade)
}

func (m *mockAssemblyService) ListAssemblies(ctx context.Context) ([]domain.AssemblySummary, error) {
	return m.listFunc(ctx)
}

func TestCreateAssembly_ZeroQtyDefaultsToOne(t *testing.T) {
	var captured dto.AssemblyInput
	mock := &mockAssemblyService{
		createFunc: func(_ context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error) {
			captured = input
			return &dto.AssemblyResult{ID: 1}, nil
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	_, err := uc.CreateAssembly(context.Background(), dto.AssemblyInput{DeviceRef: "5"})
	require.NoError(t, err)
	assert.Equal(t, 1, captured.Qty)
}

func TestCreateAssembly_NegativeQtyRejected(t *testing.T) {
	mock := &mockAssemblyService{
		createFunc: func(_ context.Context, _ dto.AssemblyInput) (*dto.AssemblyResult, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	_, err := uc.CreateAssembly(context.Background(), dto.AssemblyInput{DeviceRef: "5", Qty: -1})
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "qty", ve.Details[0].Field)
}

func TestCreateAssembly_InvalidLinesCollectAllDetails(t *testing.T) {
	mock := &mockAssemblyService{
		createFunc: func(_ context.Context, _ dto.AssemblyInput) (*dto.AssemblyResult, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	_, err := uc.CreateAssembly(context.Background(), dto.AssemblyInput{
		DeviceRef: "5",
		Qty:       1,
		Lines: []dto.AssemblyLineInput{
			{MaterialID: 0, Qty: 2},
			{MaterialID: 3, Qty: 0},
		},
	})
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 2)
	assert.Equal(t, "lines[0].materialId", ve.Details[0].Field)
	assert.Equal(t, "lines[1].qty", ve.Details[1].Field)
}

func TestCreateAssembly_RetriesDeadlockThenSucceeds(t *testing.T) {
	calls := 0
	mock := &mockAssemblyService{
		createFunc: func(_ context.Context, _ dto.AssemblyInput) (*dto.AssemblyResult, error) {
			calls++
			if calls == 1 {
				return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
			}
			return &dto.AssemblyResult{ID: 8}, nil
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	result, err := uc.CreateAssembly(context.Background(), dto.AssemblyInput{DeviceRef: "5", Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, 8, result.ID)
	assert.Equal(t, 2, calls)
}

func TestCreateAssembly_DeadlockRetriesExhausted(t *testing.T) {
	calls := 0
	mock := &mockAssemblyService{
		createFunc: func(_ context.Context, _ dto.AssemblyInput) (*dto.AssemblyResult, error) {
			calls++
			return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	_, err := uc.CreateAssembly(context.Background(), dto.AssemblyInput{DeviceRef: "5", Qty: 1})
	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, calls)
}

func TestCreateAssembly_NonDeadlockErrorNotRetried(t *testing.T) {
	calls := 0
	mock := &mockAssemblyService{
		createFunc: func(_ context.Context, _ dto.AssemblyInput) (*dto.AssemblyResult, error) {
			calls++
			return nil, apperrors.NewConflictError("insufficient stock for material id 3")
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	_, err := uc.CreateAssembly(context.Background(), dto.AssemblyInput{DeviceRef: "5", Qty: 1})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestDeleteAssembly_PassesThrough(t *testing.T) {
	mock := &mockAssemblyService{
		deleteFunc: func(_ context.Context, id int, cascade bool) error {
			assert.Equal(t, 12, id)
			assert.True(t, cascade)
			return nil
		},
	}

	uc := NewAssemblyUseCase(mock, zap.NewNop(), 3)
	require.NoError(t, uc.DeleteAssembly(context.Background(), 12, true))
}
