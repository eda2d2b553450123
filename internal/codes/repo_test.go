package codes

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

func setupCodesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, table := range []string{"payment_codes_basic", "payment_codes_remote"} {
		stmt := `
CREATE TABLE IF NOT EXISTS ` + table + ` (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  payment_snapshot TEXT NOT NULL,
  expires_at DATETIME NOT NULL,
  used_at DATETIME,
  created_at DATETIME
);`
		require.NoError(t, gdb.Exec(stmt).Error)
	}

	return gdb
}

func seedCode(t *testing.T, gdb *gorm.DB, ns enums.CodeNamespace, code string, expiresAt time.Time, usedAt *time.Time) {
	t.Helper()

	record := &models.PaymentCode{
		ID:        uuid.New(),
		Code:      code,
		Snapshot:  json.RawMessage(`{"total_amount":1200}`),
		ExpiresAt: expiresAt,
		UsedAt:    usedAt,
	}
	require.NoError(t, gdb.Table(ns.Table()).Create(record).Error)
}

func TestFindRedeemableScopedToNamespace(t *testing.T) {
	gdb := setupCodesTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seedCode(t, gdb, enums.CodeNamespaceBasic, "48213", now.Add(time.Hour), nil)

	record, err := repo.FindRedeemable(ctx, enums.CodeNamespaceBasic, "48213", now)
	require.NoError(t, err)
	assert.Equal(t, "48213", record.Code)

	// the same string must never resolve through the other table
	_, err = repo.FindRedeemable(ctx, enums.CodeNamespaceRemote, "48213", now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindRedeemableExpiryBoundary(t *testing.T) {
	gdb := setupCodesTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	expiry := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seedCode(t, gdb, enums.CodeNamespaceBasic, "48213", expiry, nil)

	// expires_at == now is already expired
	_, err := repo.FindRedeemable(ctx, enums.CodeNamespaceBasic, "48213", expiry)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	record, err := repo.FindRedeemable(ctx, enums.CodeNamespaceBasic, "48213", expiry.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, "48213", record.Code)
}

func TestFindReturnsUsedAndExpiredRows(t *testing.T) {
	gdb := setupCodesTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	usedAt := now.Add(-time.Hour)
	seedCode(t, gdb, enums.CodeNamespaceRemote, "482133", now.Add(-time.Minute), &usedAt)

	record, err := repo.Find(ctx, enums.CodeNamespaceRemote, "482133")
	require.NoError(t, err)
	require.NotNil(t, record.UsedAt)
}

func TestConsumeFlipsUsedAtExactlyOnce(t *testing.T) {
	gdb := setupCodesTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seedCode(t, gdb, enums.CodeNamespaceBasic, "48213", now.Add(time.Hour), nil)

	ok, err := repo.Consume(ctx, enums.CodeNamespaceBasic, "48213", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, enums.CodeNamespaceBasic, "48213", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "second consume of the same code must see zero rows")

	record, err := repo.Find(ctx, enums.CodeNamespaceBasic, "48213")
	require.NoError(t, err)
	require.NotNil(t, record.UsedAt)
	assert.True(t, record.UsedAt.Equal(now))
}
