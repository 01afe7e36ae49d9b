package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// CouponHandler serves coupon previews and the admin coupon CRUD.
type CouponHandler struct {
	db      *gorm.DB
	coupons *services.CouponService
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB, coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{db: db, coupons: coupons}
}

type validateCouponRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

// ValidateCoupon reports the discount a code would grant, without redeeming it.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	quote, err := h.coupons.Preview(c.UserContext(), req.Code, req.Subtotal)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": quote})
}

type couponRequest struct {
	Code         string     `json:"code"`
	Description  string     `json:"description"`
	DiscountType string     `json:"discount_type"`
	Value        int64      `json:"value"`
	ExpiresAt    *time.Time `json:"expires_at"`
	UsageLimit   *int       `json:"usage_limit"`
	MinSpend     int64      `json:"min_spend"`
}

func (r couponRequest) apply(coupon *models.Coupon) error {
	coupon.Code = services.NormalizeCouponCode(r.Code)
	coupon.Description = strings.TrimSpace(r.Description)
	coupon.DiscountType = models.DiscountType(r.DiscountType)
	coupon.Value = r.Value
	coupon.ExpiresAt = r.ExpiresAt
	coupon.UsageLimit = r.UsageLimit
	coupon.MinSpend = r.MinSpend
	return services.ValidateCouponDefinition(coupon)
}

// ListCoupons returns paginated coupons, newest first.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Coupon{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("code LIKE ?", "%"+services.NormalizeCouponCode(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var coupons []models.Coupon
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       coupons,
		"pagination": pg.Meta(total),
	})
}

// GetCoupon returns a coupon by id.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	coupon, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

// CreateCoupon persists a new coupon. Codes are stored upper-case.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var coupon models.Coupon
	if err := req.apply(&coupon); err != nil {
		return err
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "coupon code already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// UpdateCoupon rewrites a coupon definition. The usage counter is kept, and
// usage_limit may not drop below it.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	coupon, err := h.load(c)
	if err != nil {
		return err
	}

	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.apply(coupon); err != nil {
		return err
	}
	if coupon.UsageLimit != nil && *coupon.UsageLimit < coupon.UsageCount {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("usage_limit must be at least the current usage count (%d)", coupon.UsageCount))
	}

	if err := h.db.Model(coupon).Select(
		"code", "description", "discount_type", "value", "expires_at", "usage_limit", "min_spend",
	).Updates(coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "coupon code already exists")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

// DeleteCoupon removes a coupon. Orders keep the code they were placed with.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Delete(&models.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "coupon not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CouponHandler) load(c *fiber.Ctx) (*models.Coupon, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return nil, err
	}
	return &coupon, nil
}
