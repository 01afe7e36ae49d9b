package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon is a discount code with eligibility rules applied at checkout.
// A nil ExpiresAt or UsageLimit means unbounded; a zero MinSpend means none.
type Coupon struct {
	BaseModel
	Code         string       `gorm:"uniqueIndex;not null" json:"code"`
	Description  string       `json:"description"`
	DiscountType DiscountType `gorm:"type:varchar(16)" json:"discount_type"`
	Value        int64        `json:"value"`
	ExpiresAt    *time.Time   `json:"expires_at"`
	UsageLimit   *int         `json:"usage_limit"`
	UsageCount   int          `gorm:"not null;default:0" json:"usage_count"`
	MinSpend     int64        `json:"min_spend"`
}
