package repository

import (
	"context"
	"testing"
	"time"

	"shop_backend/internal/domain/cart/model"

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

func TestUpsert_TargetsMatchingPartialIndex(t *testing.T) {
	cols := []string{"id", "created_at", "updated_at", "deleted_at", "user_id", "product_id", "variant_id", "quantity"}
	now := time.Now()

	t.Run("without variant", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCartRepository(db)

		mock.ExpectQuery(`INSERT INTO "cart_items" .* ON CONFLICT \("user_id","product_id"\)\s+WHERE variant_id IS NULL\s+DO UPDATE SET "quantity"=cart_items.quantity \+ EXCLUDED.quantity.* RETURNING \*`).
			WillReturnRows(sqlmock.NewRows(cols).AddRow("existing", now, now, nil, "u1", "p1", nil, 5))

		item := &model.CartItem{UserID: "u1", ProductID: "p1", Quantity: 3}
		require.NoError(t, repo.Upsert(context.Background(), item))
		assert.Equal(t, "existing", item.ID)
		assert.Equal(t, 5, item.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with variant", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCartRepository(db)
		variant := "v1"

		mock.ExpectQuery(`ON CONFLICT \("user_id","product_id","variant_id"\)\s+WHERE variant_id IS NOT NULL\s+DO UPDATE`).
			WillReturnRows(sqlmock.NewRows(cols).AddRow("new-row", now, now, nil, "u1", "p1", "v1", 2))

		item := &model.CartItem{UserID: "u1", ProductID: "p1", VariantID: &variant, Quantity: 2}
		require.NoError(t, repo.Upsert(context.Background(), item))
		assert.Equal(t, 2, item.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteByIDs_IsHardDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec(`DELETE FROM "cart_items" WHERE id IN`).WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteByIDs(context.Background(), []string{"a", "b"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
