package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/supplysetu/internal/models"
)

func setupMockGorm(t *testing.T) (sqlmock.Sqlmock, *Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return mock, NewGorm(gdb)
}

func TestGorm_GetFound(t *testing.T) {
	mock, s := setupMockGorm(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "phone_number", "role", "is_verified", "created_at", "updated_at"}).
		AddRow("u-1", "1122334455", "vendor", true, now, now)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(rows)

	user, err := s.Users.Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "1122334455", user.PhoneNumber)
	assert.True(t, user.IsVerified)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_GetNotFound(t *testing.T) {
	mock, s := setupMockGorm(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := s.Users.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, user)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_DeleteReportsExistence(t *testing.T) {
	mock, s := setupMockGorm(t)

	mock.ExpectExec(`DELETE FROM "products"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "products"`).WillReturnResult(sqlmock.NewResult(0, 0))

	existed, err := s.Products.Delete(context.Background(), "p-1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Products.Delete(context.Background(), "p-1")
	require.NoError(t, err)
	assert.False(t, existed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindByForeignKey(t *testing.T) {
	mock, s := setupMockGorm(t)

	rows := sqlmock.NewRows([]string{"id", "vendor_id", "status"}).
		AddRow("o-1", "v-1", "pending").
		AddRow("o-2", "v-1", "accepted")
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE "vendor_id" = \$1 ORDER BY created_at`).
		WithArgs("v-1").
		WillReturnRows(rows)

	orders, err := s.Orders.Find(context.Background(), "vendor_id", "v-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o-1", orders[0].ID)
	assert.Equal(t, "accepted", orders[1].Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindUnknownFieldSkipsQuery(t *testing.T) {
	mock, s := setupMockGorm(t)

	_, err := s.Orders.Find(context.Background(), "total_amount; DROP TABLE orders", 1)
	assert.ErrorIs(t, err, ErrUnknownField)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_UpdateMissingRollsBack(t *testing.T) {
	mock, s := setupMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "vendors"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := s.Vendors.Update(context.Background(), "missing", func(v *models.Vendor) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
