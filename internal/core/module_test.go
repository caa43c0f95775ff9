package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestModuleService_Enable_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewModuleService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	err := svc.Enable(ctx, "tenant-1", "inventory")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestModuleService_Enable_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewModuleService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.Enable(ctx, "tenant-1", "inventory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enable module inventory")
	db.AssertExpectations(t)
}

func TestModuleService_Disable_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewModuleService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := svc.Disable(ctx, "tenant-1", "crm")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}

func TestModuleService_ListByTenant_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewModuleService(db)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)

	scan := func(code string) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*string)) = "id-" + code
			*(dest[1].(*string)) = "tenant-1"
			*(dest[2].(*string)) = code
			*(dest[3].(*string)) = ModuleEnabled
			*(dest[4].(*time.Time)) = now
			*(dest[5].(*time.Time)) = now
			return nil
		}
	}
	rows := newMockRows(scan("accounting"), scan("inventory"))
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	mods, err := svc.ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "accounting", mods[0].Code)
	assert.Equal(t, "inventory", mods[1].Code)
	db.AssertExpectations(t)
}

func TestModuleService_ListByTenant_Empty(t *testing.T) {
	db := &mockDB{}
	svc := NewModuleService(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(newEmptyMockRows(), nil)

	mods, err := svc.ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, mods)
	db.AssertExpectations(t)
}
