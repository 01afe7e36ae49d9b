package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// LowStockThreshold is the stock level at or below which a variant counts as low.
const LowStockThreshold = 5

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
	now      func() time.Time
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, telegram *services.TelegramService) *AdminHandler {
	return &AdminHandler{db: db, telegram: telegram, now: time.Now}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	// Revenue excludes cancelled orders.
	var totalRevenue int64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	now := h.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todayRevenue int64
	if err := h.db.Model(&models.Order{}).
		Where("status != ? AND placed_at >= ? AND placed_at < ?",
			models.OrderStatusCancelled, startOfDay, startOfDay.AddDate(0, 0, 1)).
		Select("COALESCE(SUM(total), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	var lowStock int64
	if err := h.db.Model(&models.ProductVariant{}).
		Where("stock <= ?", LowStockThreshold).
		Count(&lowStock).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":        totalUsers,
			"total_orders":       totalOrders,
			"total_revenue":      totalRevenue,
			"today_revenue":      todayRevenue,
			"orders_by_status":   ordersByStatus,
			"low_stock_variants": lowStock,
		},
	})
}

// ListAllOrders returns all orders with pagination, filtering, and user info.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		query = query.Where("status = ?", status)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(order_number) LIKE ? OR LOWER(customer_email) LIKE ? OR LOWER(customer_name) LIKE ?",
			q, q, q,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
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

// GetOrder returns any order by id.
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.db.Preload("Items").Preload("User").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type orderStatusRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
}

// UpdateOrderStatus changes the fulfilment and/or payment status of an order.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	if req.Status != nil {
		status := models.OrderStatus(*req.Status)
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		updates["status"] = status
	}
	if req.PaymentStatus != nil {
		paymentStatus := models.PaymentStatus(*req.PaymentStatus)
		if !paymentStatus.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payment_status")
		}
		updates["payment_status"] = paymentStatus
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "status or payment_status is required")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		return err
	}

	actor := "admin"
	if identity, ok := middleware.GetIdentity(c); ok {
		actor = identity.UserID.String()
	}
	log.Printf("[Admin] order %s -> status=%s payment=%s by %s", order.OrderNumber, order.Status, order.PaymentStatus, actor)

	if h.telegram.Enabled() {
		go func(order models.Order) {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := h.telegram.NotifyStatusChange(ctx, &order, actor); err != nil {
				log.Printf("[Admin] Telegram notification failed for %s: %v", order.OrderNumber, err)
			}
		}(order)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListAllUsers returns all registered users with pagination and search.
func (h *AdminHandler) ListAllUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", q, q, q)
	}

	if role := c.Query("role"); role != "" {
		parsed, err := models.ParseRole(role)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid role")
		}
		query = query.Where("role = ?", parsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	type userStats struct {
		UserID     string
		OrderCount int64
		TotalSpent int64
	}

	var stats []userStats
	if err := h.db.Model(&models.Order{}).
		Select("user_id, count(*) as order_count, COALESCE(SUM(total), 0) as total_spent").
		Where("user_id IS NOT NULL AND status != ?", models.OrderStatusCancelled).
		Group("user_id").
		Scan(&stats).Error; err != nil {
		return err
	}

	statsMap := make(map[string]userStats, len(stats))
	for _, s := range stats {
		statsMap[s.UserID] = s
	}

	type userResponse struct {
		models.User
		OrderCount int64 `json:"order_count"`
		TotalSpent int64 `json:"total_spent"`
	}

	result := make([]userResponse, len(users))
	for i, u := range users {
		result[i] = userResponse{User: u}
		if s, ok := statsMap[u.ID.String()]; ok {
			result[i].OrderCount = s.OrderCount
			result[i].TotalSpent = s.TotalSpent
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result,
		"pagination": pg.Meta(total),
	})
}

// RecentOrders returns the most recent 5 orders for the dashboard.
func (h *AdminHandler) RecentOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := h.db.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(5).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}
