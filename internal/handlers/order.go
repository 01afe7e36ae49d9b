package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

const notifyTimeout = 15 * time.Second

// OrderHandler manages checkout and the customer's own orders.
type OrderHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, checkout *services.CheckoutService, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{db: db, checkout: checkout, telegram: telegram}
}

type checkoutItemRequest struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	Price     int64   `json:"price"`
}

type checkoutRequest struct {
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email"`
	CustomerPhone   string                `json:"customer_phone"`
	ShippingAddress string                `json:"shipping_address"`
	Note            string                `json:"note"`
	PaymentMethod   string                `json:"payment_method"`
	ShippingFee     int64                 `json:"shipping_fee"`
	DiscountAmount  int64                 `json:"discount_amount"`
	CouponCode      *string               `json:"coupon_code"`
	TotalAmount     int64                 `json:"total_amount"`
	Items           []checkoutItemRequest `json:"items"`
}

func (r checkoutRequest) toInput() (services.CheckoutInput, error) {
	in := services.CheckoutInput{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		Note:            r.Note,
		PaymentMethod:   models.PaymentMethod(r.PaymentMethod),
		ShippingFee:     r.ShippingFee,
		DiscountAmount:  r.DiscountAmount,
		TotalAmount:     r.TotalAmount,
	}
	if r.CouponCode != nil {
		in.CouponCode = *r.CouponCode
	}

	for _, item := range r.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return in, &services.ValidationError{Field: "product_id", Message: "must be a valid id"}
		}
		line := services.CheckoutItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.VariantID != nil && *item.VariantID != "" {
			variantID, err := uuid.Parse(*item.VariantID)
			if err != nil {
				return in, &services.ValidationError{Field: "variant_id", Message: "must be a valid id"}
			}
			line.VariantID = &variantID
		}
		in.Items = append(in.Items, line)
	}
	return in, nil
}

// Checkout places an order for a guest or the authenticated user.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return err
	}

	var owner *uuid.UUID
	if userID, ok := middleware.GetCurrentUserID(c); ok {
		owner = &userID
	}

	order, err := h.checkout.PlaceOrder(c.UserContext(), owner, input)
	if err != nil {
		return err
	}

	if h.telegram.Enabled() {
		go h.notifyNewOrder(*order)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": order.ID})
}

func (h *OrderHandler) notifyNewOrder(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := h.telegram.NotifyNewOrder(ctx, &order); err != nil {
		log.Printf("[Order] Telegram notification failed for %s: %v", order.OrderNumber, err)
		return
	}
	log.Printf("[Order] Telegram notification sent for order %s", order.OrderNumber)
}

// ListOrders returns orders for authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CancelOrder lets the owner cancel an order that is still pending.
// Stock is not returned; admins adjust inventory explicitly.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	res := h.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "only pending orders can be cancelled")
	}

	order.Status = models.OrderStatusCancelled
	log.Printf("[Order] order %s cancelled by owner %s", order.OrderNumber, userID)

	if h.telegram.Enabled() {
		go func(order models.Order) {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := h.telegram.NotifyStatusChange(ctx, &order, "customer"); err != nil {
				log.Printf("[Order] Telegram notification failed for %s: %v", order.OrderNumber, err)
			}
		}(order)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
