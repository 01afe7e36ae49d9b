package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/models"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stocks ...int) (models.Product, []models.ProductVariant) {
	t.Helper()
	product := models.Product{
		Slug:      uuid.NewString(),
		Name:      name,
		BasePrice: 100000,
		IsActive:  true,
	}
	for i, stock := range stocks {
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:   uuid.NewString()[:8],
			Label: name + "-" + string(rune('A'+i)),
			Price: 100000,
			Stock: stock,
		})
	}
	require.NoError(t, db.Create(&product).Error)
	return product, product.Variants
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) models.Coupon {
	t.Helper()
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var variant models.ProductVariant
	require.NoError(t, db.First(&variant, "id = ?", id).Error)
	return variant.Stock
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }

// MockOrderPublisher records published events.
type MockOrderPublisher struct {
	mock.Mock
}

func (m *MockOrderPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOrderPublisher) Close() error {
	return m.Called().Error(0)
}
