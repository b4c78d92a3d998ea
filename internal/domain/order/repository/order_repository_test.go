package repository

import (
	"context"
	"testing"
	"time"

	"shop_backend/internal/domain/order/model"
	"shop_backend/pkg/apperr"
	baseModel "shop_backend/pkg/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
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

func placedOrder() *model.Order {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Order{
		BaseModel:      baseModel.BaseModel{ID: "0b8f5a52-3c1e-4e8e-9f55-0d7f3c9a1b01"},
		OrderNo:        model.NewOrderNo(now),
		UserID:         "u1",
		OrderDate:      now,
		Status:         model.OrderStatusPlaced,
		Subtotal:       decimal.RequireFromString("339.92"),
		ShippingFee:    decimal.RequireFromString("29.90"),
		ShippingMethod: model.ShippingStandard,
		TotalAmount:    decimal.RequireFromString("369.82"),
		Items: []model.OrderItem{
			{ProductID: "p1", ProductName: "Lipstick", UnitPrice: decimal.RequireFromString("85.00"), Quantity: 2},
			{ProductID: "p2", ProductName: "Serum", UnitPrice: decimal.RequireFromString("169.92"), Quantity: 1},
		},
	}
}

func TestCreate_InsertsOrderWithItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	order := placedOrder()

	mock.ExpectQuery(`INSERT INTO "orders" .*"status".*"return_status"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.ID))
	mock.ExpectQuery(`INSERT INTO "order_items" .*"order_id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i1").AddRow("i2"))

	require.NoError(t, repo.Create(context.Background(), order))
	assert.Equal(t, model.ReturnStatusNone, order.ReturnStatus)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnStatusZeroValueWritesNone(t *testing.T) {
	v, err := model.ReturnStatusNone.Value()
	require.NoError(t, err)
	assert.Equal(t, "None", v)
}

func TestGetByID(t *testing.T) {
	cols := []string{"id", "order_no", "user_id", "status", "return_status", "subtotal", "total_amount"}
	itemCols := []string{"id", "order_id", "product_id", "product_name", "unit_price", "quantity"}

	t.Run("loads items", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 AND "orders"."deleted_at" IS NULL`).
			WithArgs("o1", 1).
			WillReturnRows(sqlmock.NewRows(cols).AddRow("o1", "N1", "u1", "Delivered", "Requested", "200.00", "229.90"))
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"."order_id" = \$1`).
			WithArgs("o1").
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow("i1", "o1", "p1", "Lipstick", "100.00", 2))

		order, err := repo.GetByID(context.Background(), "o1")
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusDelivered, order.Status)
		assert.Equal(t, model.ReturnStatusRequested, order.ReturnStatus)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "orders"`).WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetByID(context.Background(), "o404")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateWhereStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
	}{
		{"status matches", 1},
		{"status moved on", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewOrderRepository(db)

			mock.ExpectExec(`UPDATE "orders" SET .*"status"=.* WHERE \(id = \$\d+ AND status = \$\d+\) AND "orders"."deleted_at" IS NULL`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			rows, err := repo.UpdateWhereStatus(context.Background(), "o1", model.OrderStatusPlaced, map[string]interface{}{
				"status":         model.OrderStatusCancelled,
				"cancelled_date": time.Now(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.affected, rows)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
