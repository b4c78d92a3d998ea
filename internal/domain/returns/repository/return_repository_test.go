package repository

import (
	"context"
	"testing"
	"time"

	orderModel "shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/returns/model"
	baseModel "shop_backend/pkg/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestHasActiveForOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReturnRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "return_requests" WHERE \(?order_id = \$1 AND status IN \(\$2,\$3,\$4,\$5,\$6,\$7\)`).
		WithArgs("o1", "Requested", "Approved", "InTransit", "Received", "Inspecting", "RefundProcessing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	open, err := repo.HasActiveForOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, open)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndUpdate_StaleStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReturnRepository(db)

	now := time.Now()
	rr := &model.ReturnRequest{
		BaseModel:   baseModel.BaseModel{ID: "r1"},
		OrderID:     "o1",
		UserID:      "u1",
		ReturnCode:  "RT20260402ABCDEF12",
		Reason:      "broken",
		RequestDate: now,
		Status:      orderModel.ReturnStatusApproved,
	}

	mock.ExpectExec(`UPDATE "return_requests" SET .*"status"=.* WHERE status = .*"id" = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.CompareAndUpdate(context.Background(), rr, orderModel.ReturnStatusRequested)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
