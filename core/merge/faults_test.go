package merge

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultInjectionRollsBackAndCleansUp(t *testing.T) {
	ok := sqlmock.NewResult(0, 0)

	tests := []struct {
		name    string
		faults  FaultInjectionConfig
		wantErr error
		// expect registers the statements that run before the fault fires,
		// plus the failure-path cleanup when the staging table exists.
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name:    "BeforeStagingCreate",
			faults:  FaultInjectionConfig{BeforeStagingCreate: true},
			wantErr: ErrStagingCreate,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
				// Nothing was created, so no cleanup statement runs.
			},
		},
		{
			name:    "BeforeStagingLoad",
			faults:  FaultInjectionConfig{BeforeStagingLoad: true},
			wantErr: ErrStagingLoad,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(sqlCreate).WillReturnResult(ok)
				mock.ExpectRollback()
				mock.ExpectExec(sqlCleanup).WillReturnResult(ok)
			},
		},
		{
			name:    "BeforeReconcile",
			faults:  FaultInjectionConfig{BeforeReconcile: true},
			wantErr: ErrReconcile,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(sqlCreate).WillReturnResult(ok)
				mock.ExpectExec(sqlLoad2).WillReturnResult(ok)
				mock.ExpectRollback()
				mock.ExpectExec(sqlCleanup).WillReturnResult(ok)
			},
		},
		{
			name:    "BeforeStagingDrop",
			faults:  FaultInjectionConfig{BeforeStagingDrop: true},
			wantErr: ErrStagingDrop,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(sqlCreate).WillReturnResult(ok)
				mock.ExpectExec(sqlLoad2).WillReturnResult(ok)
				mock.ExpectExec(sqlDelete).WillReturnResult(ok)
				mock.ExpectExec(sqlInsert).WillReturnResult(ok)
				mock.ExpectRollback()
				mock.ExpectExec(sqlCleanup).WillReturnResult(ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, mock := setupMockEngine(t, WithFaultInjection(tt.faults))
			tt.expect(mock)

			_, err := engine.Replace(context.Background(), targetTable(), twoRecords(),
				WithStagingName(stagingName))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInjectedFault)
			assert.NoError(t, mock.ExpectationsWereMet())
			assert.Empty(t, engine.Registry().Names())
		})
	}
}

func TestStatementFailureTriggersCleanup(t *testing.T) {
	engine, _, mock := setupMockEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec(sqlCreate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(sqlLoad2).WillReturnError(assert.AnError)
	mock.ExpectRollback()
	mock.ExpectExec(sqlCleanup).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := engine.Replace(context.Background(), targetTable(), twoRecords(),
		WithStagingName(stagingName))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStagingLoad)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, engine.Registry().Names())
}

func TestCleanupFailureDoesNotMaskOriginalError(t *testing.T) {
	engine, _, mock := setupMockEngine(t,
		WithFaultInjection(FaultInjectionConfig{BeforeReconcile: true}))

	mock.ExpectBegin()
	mock.ExpectExec(sqlCreate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(sqlLoad2).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()
	mock.ExpectExec(sqlCleanup).WillReturnError(assert.AnError)

	_, err := engine.Replace(context.Background(), targetTable(), twoRecords(),
		WithStagingName(stagingName))
	require.Error(t, err)
	// The injected reconcile failure survives; the cleanup error is swallowed.
	assert.ErrorIs(t, err, ErrReconcile)
	assert.ErrorIs(t, err, ErrInjectedFault)
	assert.NotErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
	// The registry entry is removed even though the physical drop failed.
	assert.Empty(t, engine.Registry().Names())
}
