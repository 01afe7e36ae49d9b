package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:     "routes-test-secret",
		TokenTTLHours: 1,
		Currency:      "VND",
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	Register(app, db, cfg, services.NopOrderPublisher{})
	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) user(t *testing.T, email string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Name: "User " + email, Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, role, e.cfg.TokenExpires())
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) product(t *testing.T, active bool, stocks ...int) (models.Product, []models.ProductVariant) {
	t.Helper()
	product := models.Product{Slug: "p-" + uuid.NewString()[:8], Name: "Linen Shirt", BasePrice: 100000, IsActive: active}
	for i, stock := range stocks {
		product.Variants = append(product.Variants, models.ProductVariant{
			Label: fmt.Sprintf("Size %d", i),
			Price: 100000,
			Stock: stock,
		})
	}
	require.NoError(t, e.db.Create(&product).Error)
	return product, product.Variants
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	payload := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp.StatusCode, payload
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var variant models.ProductVariant
	require.NoError(t, e.db.First(&variant, "id = ?", id).Error)
	return variant.Stock
}

func checkoutBody(productID, variantID uuid.UUID, quantity int) fiber.Map {
	return fiber.Map{
		"customer_name":    "Tran Thi B",
		"customer_email":   "b@example.com",
		"customer_phone":   "0911111111",
		"shipping_address": "12 Hai Ba Trung, Ha Noi",
		"payment_method":   "cod",
		"shipping_fee":     30000,
		"discount_amount":  0,
		"coupon_code":      nil,
		"total_amount":     0,
		"items": []fiber.Map{{
			"product_id": productID.String(),
			"variant_id": variantID.String(),
			"quantity":   quantity,
			"price":      100000,
		}},
	}
}

func TestCheckoutGuest(t *testing.T) {
	env := newTestEnv(t)
	product, variants := env.product(t, true, 10)

	status, body := env.do(t, http.MethodPost, "/api/orders/checkout", checkoutBody(product.ID, variants[0].ID, 2), "")

	require.Equal(t, fiber.StatusCreated, status, body)
	id, err := uuid.Parse(body["id"].(string))
	require.NoError(t, err)
	assert.Len(t, body, 1)
	assert.Equal(t, 8, env.stock(t, variants[0].ID))

	var order models.Order
	require.NoError(t, env.db.Preload("Items").First(&order, "id = ?", id).Error)
	assert.Nil(t, order.UserID)
	assert.Equal(t, int64(230000), order.Total)
	assert.Len(t, order.Items, 1)
}

func TestCheckoutFailuresAreBadRequests(t *testing.T) {
	env := newTestEnv(t)
	product, variants := env.product(t, true, 1)
	require.NoError(t, env.db.Create(&models.Coupon{
		Code: "SAVE10", DiscountType: models.DiscountPercentage, Value: 10, MinSpend: 500000,
	}).Error)

	status, body := env.do(t, http.MethodPost, "/api/orders/checkout", checkoutBody(product.ID, variants[0].ID, 2), "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, true, body["error"])
	assert.Contains(t, body["message"], variants[0].ID.String())

	withCoupon := checkoutBody(product.ID, variants[0].ID, 1)
	withCoupon["coupon_code"] = "SAVE10"
	status, body = env.do(t, http.MethodPost, "/api/orders/checkout", withCoupon, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, services.ErrCouponMinSpendNotMet.Error(), body["message"])

	bad := checkoutBody(product.ID, variants[0].ID, 1)
	bad["payment_method"] = "cheque"
	status, body = env.do(t, http.MethodPost, "/api/orders/checkout", bad, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "payment_method")

	status, _ = env.do(t, http.MethodPost, "/api/orders/checkout", checkoutBody(product.ID, variants[0].ID, 1), "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	assert.Equal(t, 1, env.stock(t, variants[0].ID))
	var orders int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestCustomerOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	product, variants := env.product(t, true, 5)
	user, token := env.user(t, "buyer@example.com", models.RoleCustomer)
	_, otherToken := env.user(t, "other@example.com", models.RoleCustomer)

	status, body := env.do(t, http.MethodPost, "/api/orders/checkout", checkoutBody(product.ID, variants[0].ID, 1), token)
	require.Equal(t, fiber.StatusCreated, status, body)
	orderID := body["id"].(string)

	var order models.Order
	require.NoError(t, env.db.First(&order, "id = ?", orderID).Error)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)

	status, body = env.do(t, http.MethodGet, "/api/orders", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = env.do(t, http.MethodGet, "/api/orders/"+orderID, nil, otherToken)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/orders", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = env.do(t, http.MethodPost, "/api/orders/"+orderID+"/cancel", nil, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "cancelled", body["data"].(map[string]any)["status"])

	status, _ = env.do(t, http.MethodPost, "/api/orders/"+orderID+"/cancel", nil, token)
	assert.Equal(t, fiber.StatusConflict, status)

	// cancelling does not restock
	assert.Equal(t, 4, env.stock(t, variants[0].ID))
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	register := fiber.Map{"name": "Le Van C", "email": "C@Example.com", "phone": "0922", "password": "secret123"}
	status, body := env.do(t, http.MethodPost, "/api/auth/register", register, "")
	require.Equal(t, fiber.StatusCreated, status, body)
	token := body["token"].(string)
	assert.Equal(t, "c@example.com", body["user"].(map[string]any)["email"])
	assert.NotContains(t, body["user"], "password_hash")

	status, _ = env.do(t, http.MethodPost, "/api/auth/register", register, "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/register", fiber.Map{"name": "X", "email": "x@example.com", "password": "123"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "customer", body["data"].(map[string]any)["role"])

	status, body = env.do(t, http.MethodPut, "/api/auth/me", fiber.Map{"name": "Le Van D"}, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Le Van D", body["data"].(map[string]any)["name"])

	status, _ = env.do(t, http.MethodPut, "/api/auth/password", fiber.Map{"current_password": "wrong", "new_password": "another123"}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, "/api/auth/password", fiber.Map{"current_password": "secret123", "new_password": "another123"}, token)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "c@example.com", "password": "secret123"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, body = env.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "c@example.com", "password": "another123"}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = env.do(t, http.MethodPost, "/api/admin/auth/login", fiber.Map{"email": "c@example.com", "password": "another123"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	require.NoError(t, database.SeedAdmin(env.db, "root@example.com", "rootpass1"))
	status, body = env.do(t, http.MethodPost, "/api/admin/auth/login", fiber.Map{"email": "root@example.com", "password": "rootpass1"}, "")
	require.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/api/admin/dashboard", nil, body["token"].(string))
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	_, customer := env.user(t, "cust@example.com", models.RoleCustomer)

	for _, path := range []string{"/api/admin/dashboard", "/api/admin/users", "/api/admin/orders", "/api/admin/coupons"} {
		status, body := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, true, body["error"])

		status, _ = env.do(t, http.MethodGet, path, nil, customer)
		assert.Equal(t, fiber.StatusForbidden, status, path)
	}
}

func TestAdminCouponsAndPreview(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@example.com", models.RoleAdmin)

	coupon := fiber.Map{"code": " spring15 ", "discount_type": "percentage", "value": 15, "min_spend": 200000, "usage_limit": 10}
	status, body := env.do(t, http.MethodPost, "/api/admin/coupons", coupon, admin)
	require.Equal(t, fiber.StatusCreated, status, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "SPRING15", created["code"])

	status, _ = env.do(t, http.MethodPost, "/api/admin/coupons", coupon, admin)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, "/api/admin/coupons", fiber.Map{"code": "BAD", "discount_type": "percentage", "value": 120}, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/api/coupons/validate", fiber.Map{"code": "SPRING15", "subtotal": 300000}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(45000), body["data"].(map[string]any)["discount"])

	status, body = env.do(t, http.MethodPost, "/api/coupons/validate", fiber.Map{"code": "SPRING15", "subtotal": 100000}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, services.ErrCouponMinSpendNotMet.Error(), body["message"])

	id := created["id"].(string)
	status, body = env.do(t, http.MethodPut, "/api/admin/coupons/"+id, fiber.Map{"code": "spring20", "discount_type": "fixed", "value": 20000}, admin)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "SPRING20", body["data"].(map[string]any)["code"])

	require.NoError(t, env.db.Model(&models.Coupon{}).Where("id = ?", id).Update("usage_count", 3).Error)
	status, body = env.do(t, http.MethodPut, "/api/admin/coupons/"+id,
		fiber.Map{"code": "SPRING20", "discount_type": "fixed", "value": 20000, "usage_limit": 2}, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "usage_limit")
	status, body = env.do(t, http.MethodPut, "/api/admin/coupons/"+id,
		fiber.Map{"code": "SPRING20", "discount_type": "fixed", "value": 20000, "usage_limit": 3}, admin)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(3), body["data"].(map[string]any)["usage_count"])

	status, _ = env.do(t, http.MethodDelete, "/api/admin/coupons/"+id, nil, admin)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = env.do(t, http.MethodGet, "/api/admin/coupons/"+id, nil, admin)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestProductCatalogAndInventory(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@example.com", models.RoleAdmin)

	status, body := env.do(t, http.MethodPost, "/api/admin/categories", fiber.Map{"name": "Áo Sơ Mi"}, admin)
	require.Equal(t, fiber.StatusCreated, status, body)
	category := body["data"].(map[string]any)
	assert.Equal(t, "ao-so-mi", category["slug"])

	status, body = env.do(t, http.MethodPost, "/api/admin/products", fiber.Map{
		"name":        "Oxford Shirt",
		"base_price":  350000,
		"category_id": category["id"],
		"variants": []fiber.Map{
			{"sku": "OX-S", "label": "S", "price": 350000, "stock": 3},
			{"sku": "OX-M", "label": "M", "price": 360000, "stock": 9},
		},
		"media": []fiber.Map{{"url": "https://cdn.example.com/ox.jpg", "display_order": 1}},
	}, admin)
	require.Equal(t, fiber.StatusCreated, status, body)
	product := body["data"].(map[string]any)
	productID := product["id"].(string)
	assert.Equal(t, "oxford-shirt", product["slug"])
	assert.Equal(t, true, product["is_active"])

	env.product(t, false, 1)

	status, body = env.do(t, http.MethodGet, "/api/products?sort=price_desc", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["total_items"])

	status, _ = env.do(t, http.MethodGet, "/api/products?sort=cheapest", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/admin/products", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, body = env.do(t, http.MethodGet, "/api/products/slug/oxford-shirt", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	variants := body["data"].(map[string]any)["variants"].([]any)
	require.Len(t, variants, 2)
	small := variants[0].(map[string]any)
	smallID := small["id"].(string)

	status, _ = env.do(t, http.MethodPatch, "/api/admin/variants/"+smallID+"/stock", fiber.Map{"stock": -1}, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, body = env.do(t, http.MethodPatch, "/api/admin/variants/"+smallID+"/stock", fiber.Map{"stock": 42}, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(42), body["data"].(map[string]any)["stock"])

	// update keeps the listed variant and drops the other
	status, body = env.do(t, http.MethodPut, "/api/admin/products/"+productID, fiber.Map{
		"name":       "Oxford Shirt",
		"base_price": 340000,
		"variants":   []fiber.Map{{"id": smallID, "sku": "OX-S", "label": "S", "price": 340000, "stock": 42}},
	}, admin)
	require.Equal(t, fiber.StatusOK, status, body)

	var count int64
	require.NoError(t, env.db.Model(&models.ProductVariant{}).Where("product_id = ?", productID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	var media int64
	require.NoError(t, env.db.Model(&models.ProductMedia{}).Where("product_id = ?", productID).Count(&media).Error)
	assert.Zero(t, media)

	status, body = env.do(t, http.MethodGet, "/api/admin/dashboard", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	// the inactive product's single variant has stock 1
	assert.Equal(t, float64(1), body["data"].(map[string]any)["low_stock_variants"])
}

func TestProductUpdateKeepsLiveStock(t *testing.T) {
	env := newTestEnv(t)
	product, variants := env.product(t, true, 10)
	_, admin := env.user(t, "admin@example.com", models.RoleAdmin)

	status, body := env.do(t, http.MethodPost, "/api/orders/checkout", checkoutBody(product.ID, variants[0].ID, 2), "")
	require.Equal(t, fiber.StatusCreated, status, body)
	require.Equal(t, 8, env.stock(t, variants[0].ID))

	status, body = env.do(t, http.MethodPut, "/api/admin/products/"+product.ID.String(), fiber.Map{
		"name":       "Renamed",
		"base_price": 100000,
		"variants":   []fiber.Map{{"id": variants[0].ID.String(), "label": "Size S", "price": 120000}},
	}, admin)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, 8, env.stock(t, variants[0].ID))

	// a stale stock value in the payload is ignored as well
	status, body = env.do(t, http.MethodPut, "/api/admin/products/"+product.ID.String(), fiber.Map{
		"name":       "Renamed",
		"base_price": 100000,
		"variants": []fiber.Map{
			{"id": variants[0].ID.String(), "label": "Size S", "price": 120000, "stock": 10},
			{"label": "Size XL", "price": 130000, "stock": 4},
		},
	}, admin)
	require.Equal(t, fiber.StatusOK, status, body)

	var stored []models.ProductVariant
	require.NoError(t, env.db.Where("product_id = ?", product.ID).Order("price asc").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, "Size S", stored[0].Label)
	assert.Equal(t, int64(120000), stored[0].Price)
	assert.Equal(t, 8, stored[0].Stock)
	assert.Equal(t, "Size XL", stored[1].Label)
	assert.Equal(t, 4, stored[1].Stock)

	returned := body["data"].(map[string]any)["variants"].([]any)
	require.Len(t, returned, 2)
	assert.Equal(t, float64(8), returned[0].(map[string]any)["stock"])
}

func TestReviewsKeepRatingInSync(t *testing.T) {
	env := newTestEnv(t)
	product, _ := env.product(t, true)
	_, alice := env.user(t, "alice@example.com", models.RoleCustomer)
	_, bob := env.user(t, "bob@example.com", models.RoleCustomer)
	path := "/api/products/" + product.ID.String() + "/reviews"

	status, _ := env.do(t, http.MethodPost, path, fiber.Map{"rating": 6}, alice)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := env.do(t, http.MethodPost, path, fiber.Map{"rating": 5, "content": "great"}, alice)
	require.Equal(t, fiber.StatusCreated, status, body)
	reviewID := body["data"].(map[string]any)["id"].(string)

	status, _ = env.do(t, http.MethodPost, path, fiber.Map{"rating": 1}, alice)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, path, fiber.Map{"rating": 2}, bob)
	require.Equal(t, fiber.StatusCreated, status)

	var stored models.Product
	require.NoError(t, env.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 3.5, stored.RatingAverage)
	assert.Equal(t, 2, stored.RatingCount)

	status, _ = env.do(t, http.MethodDelete, "/api/reviews/"+reviewID, nil, bob)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.do(t, http.MethodDelete, "/api/reviews/"+reviewID, nil, alice)
	assert.Equal(t, fiber.StatusNoContent, status)

	require.NoError(t, env.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 2.0, stored.RatingAverage)
	assert.Equal(t, 1, stored.RatingCount)

	status, body = env.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestCommentsAndReplies(t *testing.T) {
	env := newTestEnv(t)
	product, _ := env.product(t, true)
	other, _ := env.product(t, true)
	_, admin := env.user(t, "admin@example.com", models.RoleAdmin)
	_, customer := env.user(t, "cust@example.com", models.RoleCustomer)
	path := "/api/products/" + product.ID.String() + "/comments"

	status, _ := env.do(t, http.MethodPost, path, fiber.Map{"content": "Is it cotton?"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := env.do(t, http.MethodPost, path, fiber.Map{"content": "Is it cotton?", "author_name": "Guest"}, "")
	require.Equal(t, fiber.StatusCreated, status, body)
	parentID := body["data"].(map[string]any)["id"].(string)

	status, body = env.do(t, http.MethodPost, path, fiber.Map{"content": "Yes, 100%", "parent_id": parentID}, customer)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "User cust@example.com", body["data"].(map[string]any)["author_name"])

	status, _ = env.do(t, http.MethodPost, "/api/products/"+other.ID.String()+"/comments",
		fiber.Map{"content": "wrong thread", "author_name": "Guest", "parent_id": parentID}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	threads := body["data"].([]any)
	require.Len(t, threads, 1)
	assert.Len(t, threads[0].(map[string]any)["replies"], 1)

	status, _ = env.do(t, http.MethodDelete, "/api/comments/"+parentID, nil, customer)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.do(t, http.MethodDelete, "/api/comments/"+parentID, nil, admin)
	assert.Equal(t, fiber.StatusNoContent, status)

	var remaining int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestWishlistIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	product, _ := env.product(t, true, 2)
	_, token := env.user(t, "fan@example.com", models.RoleCustomer)

	for i := 0; i < 2; i++ {
		status, body := env.do(t, http.MethodPost, "/api/wishlist", fiber.Map{"product_id": product.ID.String()}, token)
		require.Equal(t, fiber.StatusCreated, status, body)
	}

	status, body := env.do(t, http.MethodGet, "/api/wishlist", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = env.do(t, http.MethodDelete, "/api/wishlist/"+product.ID.String(), nil, token)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = env.do(t, http.MethodGet, "/api/wishlist", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestAdminOrderManagement(t *testing.T) {
	env := newTestEnv(t)
	product, variants := env.product(t, true, 10)
	_, admin := env.user(t, "admin@example.com", models.RoleAdmin)

	status, body := env.do(t, http.MethodPost, "/api/orders/checkout", checkoutBody(product.ID, variants[0].ID, 1), "")
	require.Equal(t, fiber.StatusCreated, status, body)
	orderID := body["id"].(string)

	status, body = env.do(t, http.MethodGet, "/api/admin/orders?search=B@EXAMPLE", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = env.do(t, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", fiber.Map{"status": "lost"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPatch, "/api/admin/orders/"+orderID+"/status",
		fiber.Map{"status": "shipping", "payment_status": "paid"}, admin)
	require.Equal(t, fiber.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "shipping", data["status"])
	assert.Equal(t, "paid", data["payment_status"])

	status, body = env.do(t, http.MethodGet, "/api/admin/orders/recent", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = env.do(t, http.MethodGet, "/api/admin/dashboard", nil, admin)
	require.Equal(t, fiber.StatusOK, status)
	stats := body["data"].(map[string]any)
	assert.Equal(t, float64(130000), stats["total_revenue"])
	assert.Equal(t, float64(1), stats["orders_by_status"].(map[string]any)["shipping"])
}

func TestUnknownOrderIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@example.com", models.RoleAdmin)

	status, body := env.do(t, http.MethodGet, "/api/admin/orders/"+uuid.NewString(), nil, admin)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "order not found", body["message"])

	status, _ = env.do(t, http.MethodGet, "/api/admin/orders/not-a-uuid", nil, admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
