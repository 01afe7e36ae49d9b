package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

// NormalizeCouponCode is applied when coupons are created or renamed.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckCouponEligibility applies the expiry, usage-limit and minimum-spend rules.
// It performs no writes.
func CheckCouponEligibility(coupon *models.Coupon, subtotal int64, now time.Time) error {
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return ErrCouponExpired
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return ErrCouponExhausted
	}
	if coupon.MinSpend > 0 && subtotal < coupon.MinSpend {
		return ErrCouponMinSpendNotMet
	}
	return nil
}

// CouponDiscount returns the discount the coupon grants on subtotal, never more than subtotal.
func CouponDiscount(coupon *models.Coupon, subtotal int64) int64 {
	if subtotal <= 0 || coupon.Value <= 0 {
		return 0
	}

	var discount int64
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		percent := coupon.Value
		if percent > 100 {
			percent = 100
		}
		discount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(percent)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case models.DiscountFixed:
		discount = coupon.Value
	}

	if discount > subtotal {
		return subtotal
	}
	return discount
}

// ValidateCouponDefinition checks an admin-submitted coupon.
func ValidateCouponDefinition(coupon *models.Coupon) error {
	if coupon.Code == "" {
		return invalid("code", "is required")
	}
	if !coupon.DiscountType.Valid() {
		return invalid("discount_type", "must be percentage or fixed")
	}
	if coupon.DiscountType == models.DiscountPercentage && (coupon.Value < 1 || coupon.Value > 100) {
		return invalid("value", "percentage must be between 1 and 100")
	}
	if coupon.DiscountType == models.DiscountFixed && coupon.Value <= 0 {
		return invalid("value", "must be positive")
	}
	if coupon.MinSpend < 0 {
		return invalid("min_spend", "must not be negative")
	}
	if coupon.UsageLimit != nil && *coupon.UsageLimit < 0 {
		return invalid("usage_limit", "must not be negative")
	}
	return nil
}

// CouponQuote is the outcome of a successful coupon preview.
type CouponQuote struct {
	Code         string              `json:"code"`
	DiscountType models.DiscountType `json:"discount_type"`
	Value        int64               `json:"value"`
	Subtotal     int64               `json:"subtotal"`
	Discount     int64               `json:"discount"`
}

// CouponService answers coupon lookups outside of checkout.
type CouponService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db, now: time.Now}
}

// Preview evaluates code against subtotal with the checkout rules, without redeeming it.
func (s *CouponService) Preview(ctx context.Context, code string, subtotal int64) (*CouponQuote, error) {
	if subtotal < 0 {
		return nil, invalid("subtotal", "must not be negative")
	}

	coupon, err := findCoupon(s.db.WithContext(ctx), code)
	if err != nil {
		return nil, err
	}
	if err := CheckCouponEligibility(coupon, subtotal, s.now()); err != nil {
		return nil, err
	}

	return &CouponQuote{
		Code:         coupon.Code,
		DiscountType: coupon.DiscountType,
		Value:        coupon.Value,
		Subtotal:     subtotal,
		Discount:     CouponDiscount(coupon, subtotal),
	}, nil
}

func findCoupon(db *gorm.DB, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}

	var coupon models.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, &PersistenceError{Op: "load coupon", Err: err}
	}
	return &coupon, nil
}

// redeemCoupon bumps the usage counter only while it is still under the limit,
// so two concurrent orders cannot both take the last use.
func redeemCoupon(tx *gorm.DB, coupon *models.Coupon) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", coupon.ID).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return &PersistenceError{Op: "redeem coupon", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrCouponExhausted
	}
	return nil
}
