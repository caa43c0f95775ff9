package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biasharahq/platform/internal/api/request"
	"github.com/biasharahq/platform/internal/crypto"
	"github.com/biasharahq/platform/internal/model"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func TestNewTenantService(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))

	require.NotNil(t, svc)
	assert.Equal(t, db, svc.db)
}

// ---------- Create ----------

func TestTenantService_Create_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	tenant := &model.Tenant{Name: "Mama Mboga Ltd"}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	err := svc.Create(ctx, tenant)
	require.NoError(t, err)
	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, model.WorkspaceStartup, tenant.WorkspaceType)
	assert.Equal(t, model.ProvisioningNotProvisioned, tenant.ProvisioningStatus)
	assert.False(t, tenant.CreatedAt.IsZero())
	db.AssertExpectations(t)
}

func TestTenantService_Create_KeepsCallerFields(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	tenant := &model.Tenant{
		ID:            "tenant-1",
		Name:          "Acme SACCO",
		WorkspaceType: model.WorkspaceSACCO,
		Engine:        "cbs",
	}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	err := svc.Create(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", tenant.ID)
	assert.Equal(t, model.WorkspaceSACCO, tenant.WorkspaceType)
	db.AssertExpectations(t)
}

func TestTenantService_Create_InsertError(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("unique violation"))

	err := svc.Create(ctx, &model.Tenant{Name: "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert tenant")
	db.AssertExpectations(t)
}

// ---------- Get ----------

func TestTenantService_Get_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)

	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "tenant-1"
		*(dest[1].(*string)) = "Mama Mboga Ltd"
		*(dest[2].(*string)) = model.WorkspaceSME
		*(dest[3].(*string)) = "erpnext"
		*(dest[4].(*string)) = ""
		*(dest[5].(*string)) = ""
		*(dest[6].(*string)) = ""
		*(dest[7].(*string)) = model.ProvisioningProvisioned
		*(dest[8].(**string)) = nil
		*(dest[9].(*[]string)) = []string{"demo_data"}
		*(dest[10].(*time.Time)) = now
		*(dest[11].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.Get(ctx, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "tenant-1", result.ID)
	assert.Equal(t, model.WorkspaceSME, result.WorkspaceType)
	assert.Equal(t, "erpnext", result.Engine)
	assert.Equal(t, []string{"demo_data"}, result.ProvisioningSkips)
	db.AssertExpectations(t)
}

func TestTenantService_Get_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.Get(ctx, "nonexistent")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}

// ---------- List ----------

func TestTenantService_List_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)

	scan := func(id, name string) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*string)) = id
			*(dest[1].(*string)) = name
			*(dest[2].(*string)) = model.WorkspaceStartup
			*(dest[3].(*string)) = "erpnext"
			*(dest[4].(*string)) = ""
			*(dest[5].(*string)) = ""
			*(dest[6].(*string)) = ""
			*(dest[7].(*string)) = model.ProvisioningNotProvisioned
			*(dest[8].(**string)) = nil
			*(dest[9].(*[]string)) = nil
			*(dest[10].(*time.Time)) = now
			*(dest[11].(*time.Time)) = now
			return nil
		}
	}
	rows := newMockRows(scan("tenant-1", "One"), scan("tenant-2", "Two"))
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	result, hasMore, err := svc.List(ctx, request.ListParams{Limit: 50})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, result, 2)
	assert.Equal(t, "tenant-1", result[0].ID)
	assert.Equal(t, "tenant-2", result[1].ID)
	db.AssertExpectations(t)
}

func TestTenantService_List_QueryError(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil, errors.New("connection lost"))

	result, _, err := svc.List(ctx, request.ListParams{Limit: 50})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "list tenants")
	db.AssertExpectations(t)
}

func TestTenantService_List_RowsErr(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	rows := newEmptyMockRows()
	rows.err = errors.New("iteration failed")
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	result, _, err := svc.List(ctx, request.ListParams{Limit: 50})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "iterate tenants")
	db.AssertExpectations(t)
}

// ---------- SetEngine ----------

func TestTenantService_SetEngine_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"cbs", "tenant-1"}).Return(pgconn.CommandTag{}, nil)

	err := svc.SetEngine(ctx, "tenant-1", "cbs")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestTenantService_SetEngine_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.SetEngine(ctx, "tenant-1", "cbs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set tenant")
	db.AssertExpectations(t)
}

// ---------- SetEngineCredentials ----------

func TestTenantService_SetEngineCredentials_EncryptsBeforeStore(t *testing.T) {
	db := &mockDB{}
	key := testKey(t)
	svc := NewTenantService(db, key)
	ctx := context.Background()

	var stored []any
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]any) }).
		Return(pgconn.CommandTag{}, nil)

	err := svc.SetEngineCredentials(ctx, "tenant-1", "https://erp.example.com", "api-key", "api-secret")
	require.NoError(t, err)
	require.Len(t, stored, 4)

	// Ciphertext round-trips and never equals the plaintext.
	keyEnc := stored[1].(string)
	assert.NotEqual(t, "api-key", keyEnc)
	plain, err := crypto.Decrypt(keyEnc, key)
	require.NoError(t, err)
	assert.Equal(t, "api-key", string(plain))
	db.AssertExpectations(t)
}

func TestTenantService_SetEngineCredentials_EmptyClears(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"", "", "", "tenant-1"}).Return(pgconn.CommandTag{}, nil)

	err := svc.SetEngineCredentials(ctx, "tenant-1", "", "", "")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

// ---------- SetProvisioningStatus ----------

func TestTenantService_SetProvisioningStatus_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	msg := "doctype Company: status 500"
	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{model.ProvisioningFailed, &msg, "tenant-1"}).
		Return(pgconn.CommandTag{}, nil)

	err := svc.SetProvisioningStatus(ctx, "tenant-1", model.ProvisioningFailed, &msg)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestTenantService_SetProvisioningStatus_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.SetProvisioningStatus(ctx, "tenant-1", model.ProvisioningProvisioned, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provisioning status")
	db.AssertExpectations(t)
}

// ---------- BeginProvisioning ----------

func TestTenantService_BeginProvisioning_Claims(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "provisioning_status <> $1")
	}), []any{model.ProvisioningInProgress, "tenant-1"}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	started, err := svc.BeginProvisioning(ctx, "tenant-1")
	require.NoError(t, err)
	assert.True(t, started)
	db.AssertExpectations(t)
}

func TestTenantService_BeginProvisioning_AlreadyHeld(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	// The conditional UPDATE matches no row when another run holds the
	// status.
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	started, err := svc.BeginProvisioning(ctx, "tenant-1")
	require.NoError(t, err)
	assert.False(t, started)
	db.AssertExpectations(t)
}

// ---------- AddProvisioningSkip ----------

func TestTenantService_AddProvisioningSkip_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTenantService(db, testKey(t))
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"demo_data", "tenant-1"}).Return(pgconn.CommandTag{}, nil)

	err := svc.AddProvisioningSkip(ctx, "tenant-1", "demo_data")
	require.NoError(t, err)
	db.AssertExpectations(t)
}
