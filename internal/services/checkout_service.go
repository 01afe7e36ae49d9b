package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

// CheckoutItem is one line of a checkout payload. Price is the unit price the
// customer saw and is stored as the order-time snapshot.
type CheckoutItem struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	Price     int64
}

// CheckoutInput is the validated shape of a checkout request.
// DiscountAmount and TotalAmount are accepted from the client for
// compatibility but never used: both are recomputed here.
type CheckoutInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	Note            string
	PaymentMethod   models.PaymentMethod
	ShippingFee     int64
	DiscountAmount  int64
	TotalAmount     int64
	CouponCode      string
	Items           []CheckoutItem
}

// Validate checks the input constraints that need no database access.
func (in CheckoutInput) Validate() error {
	if len(in.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	var subtotal int64
	for i, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return invalid(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if item.Quantity < 1 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if item.Price < 0 {
			return invalid(fmt.Sprintf("items[%d].price", i), "must not be negative")
		}
		if item.Price > math.MaxInt64/int64(item.Quantity) {
			return invalid(fmt.Sprintf("items[%d]", i), "price times quantity is too large")
		}
		line := item.Price * int64(item.Quantity)
		if subtotal > math.MaxInt64-line {
			return invalid("items", "order subtotal is too large")
		}
		subtotal += line
	}
	if !in.PaymentMethod.Valid() {
		return invalid("payment_method", "unsupported payment method %q", in.PaymentMethod)
	}
	if in.ShippingFee < 0 {
		return invalid("shipping_fee", "must not be negative")
	}
	if subtotal > math.MaxInt64-in.ShippingFee {
		return invalid("shipping_fee", "order total is too large")
	}
	if in.DiscountAmount < 0 {
		return invalid("discount_amount", "must not be negative")
	}
	if in.TotalAmount < 0 {
		return invalid("total_amount", "must not be negative")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return invalid("customer_name", "is required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return invalid("customer_phone", "is required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return invalid("shipping_address", "is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.CustomerEmail)); err != nil {
		return invalid("customer_email", "is not a valid email address")
	}
	return nil
}

// Subtotal is Σ(price × quantity) over the items. Call it on validated input only.
func (in CheckoutInput) Subtotal() int64 {
	var subtotal int64
	for _, item := range in.Items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// CheckoutService places orders.
type CheckoutService struct {
	db       *gorm.DB
	events   OrderEventPublisher
	currency string
	now      func() time.Time
}

// NewCheckoutService constructs CheckoutService. A nil publisher disables events.
func NewCheckoutService(db *gorm.DB, events OrderEventPublisher, currency string) *CheckoutService {
	if events == nil {
		events = NopOrderPublisher{}
	}
	return &CheckoutService{db: db, events: events, currency: currency, now: time.Now}
}

// PlaceOrder validates the payload, applies the coupon, decrements stock and
// persists the order in a single transaction. Either every write lands or none.
// userID is nil for guest checkout.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID *uuid.UUID, in CheckoutInput) (*models.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	subtotal := in.Subtotal()

	order := &models.Order{
		OrderNumber:     newOrderNumber(now),
		UserID:          userID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Note:            strings.TrimSpace(in.Note),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.OrderStatusPending,
		Subtotal:        subtotal,
		ShippingFee:     in.ShippingFee,
		Currency:        s.currency,
		PlacedAt:        now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon *models.Coupon
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			found, err := findCoupon(tx, code)
			if err != nil {
				return err
			}
			if err := CheckCouponEligibility(found, subtotal, now); err != nil {
				return err
			}
			coupon = found
			order.CouponID = &coupon.ID
			order.CouponCode = coupon.Code
			order.Discount = CouponDiscount(coupon, subtotal)
		}

		products, err := loadProducts(tx, in.Items)
		if err != nil {
			return err
		}

		for _, item := range in.Items {
			product := products[item.ProductID]
			line := models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   item.Price,
				LineTotal:   item.Price * int64(item.Quantity),
			}

			if item.VariantID != nil {
				variant, err := reserveStock(tx, item.ProductID, *item.VariantID, item.Quantity)
				if err != nil {
					return err
				}
				variantID := variant.ID
				line.VariantID = &variantID
				line.VariantLabel = variant.Label
			}

			order.Items = append(order.Items, line)
		}

		order.Total = order.Subtotal + order.ShippingFee - order.Discount
		if order.Total < 0 {
			order.Total = 0
		}

		if err := tx.Create(order).Error; err != nil {
			return &PersistenceError{Op: "create order", Err: err}
		}

		if coupon != nil {
			return redeemCoupon(tx, coupon)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Checkout] order %s (%s) placed: %d items, total %s",
		order.OrderNumber, order.ID, len(order.Items), FormatPrice(order.Total, order.Currency))

	if err := s.events.PublishOrderPlaced(ctx, NewOrderPlacedEvent(order)); err != nil {
		log.Printf("[Checkout] order %s committed but event publish failed: %v", order.ID, err)
	}

	return order, nil
}

func loadProducts(tx *gorm.DB, items []CheckoutItem) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, &PersistenceError{Op: "load products", Err: err}
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	return byID, nil
}

// reserveStock decrements the variant stock only if enough remains. The guard
// lives in the UPDATE itself, so concurrent checkouts cannot drive it negative.
func reserveStock(tx *gorm.DB, productID, variantID uuid.UUID, quantity int) (*models.ProductVariant, error) {
	res := tx.Model(&models.ProductVariant{}).
		Where("id = ? AND product_id = ? AND stock >= ?", variantID, productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return nil, &PersistenceError{Op: "decrement stock", Err: res.Error}
	}

	var variant models.ProductVariant
	if err := tx.Where("id = ? AND product_id = ?", variantID, productID).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVariantNotFound, variantID)
		}
		return nil, &PersistenceError{Op: "load variant", Err: err}
	}

	if res.RowsAffected == 0 {
		return nil, &InsufficientStockError{
			VariantID: variantID,
			Label:     variant.Label,
			Requested: quantity,
			Available: variant.Stock,
		}
	}
	return &variant, nil
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
