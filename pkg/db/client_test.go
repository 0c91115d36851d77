package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testRow struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

type testPair struct {
	ID    int
	Left  string `gorm:"uniqueIndex:test_pairs_left_right_idx"`
	Right string `gorm:"uniqueIndex:test_pairs_left_right_idx"`
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.DBConfig{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())}
	client, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&testRow{}))
	return client
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testRow{Name: "committed"}).Error
	}))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testRow{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&testRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, config.DBDriverSQLite, client.Driver())
}

func TestIsUniqueViolationOnSQLite(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.DB().WithContext(ctx).Create(&testRow{Name: "Alfa"}).Error)
	err := client.DB().WithContext(ctx).Create(&testRow{Name: "Alfa"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(errors.New("other"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestIsUniqueViolationMessages(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "sectors_name_key_idx"`), "sectors_name_key_idx"))
	assert.False(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "other"`), "sectors_name_key_idx"))

	composite := errors.New("UNIQUE constraint failed: reservations.person_cpf, reservations.meal_date")
	assert.False(t, IsUniqueViolation(composite, "reservations_person_date_idx"))
	assert.True(t, IsUniqueViolation(composite, "reservations_person_date_idx", "reservations.person_cpf, reservations.meal_date"))
	assert.True(t, IsUniqueViolation(composite))
}

func TestIsUniqueViolationOnSQLiteCompositeIndex(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.DB().AutoMigrate(&testPair{}))

	require.NoError(t, client.DB().WithContext(ctx).Create(&testPair{Left: "a", Right: "b"}).Error)
	err := client.DB().WithContext(ctx).Create(&testPair{Left: "a", Right: "b"}).Error
	require.Error(t, err)

	// SQLite names the columns, not the index.
	assert.True(t, IsUniqueViolation(err, "test_pairs_left_right_idx", "test_pairs.left, test_pairs.right"))
	assert.False(t, IsUniqueViolation(err, "some_other_idx"))
}

func TestPingAndNotFound(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))

	var row testRow
	err := client.DB().First(&row, "name = ?", "missing").Error
	assert.True(t, IsNotFound(err))
}
